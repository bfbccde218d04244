package detail

import (
	"context"
	"strings"

	"proptech/portal/internal/models"
)

// AgentDirectory returns the public contact card of a user.
type AgentDirectory interface {
	Contact(ctx context.Context, userID string) (*models.User, error)
}

// Agent is the "listed by" block of the overlay. When the lookup fails the
// block still renders with the fallback name and no avatar.
type Agent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Phone     string `json:"phoneNumber,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (o *Overlay) fetchAgent(ctx context.Context, agentID string) *Agent {
	if agentID == "" {
		return nil
	}
	a := &Agent{ID: agentID, FirstName: "Agent"}
	if o.agents == nil {
		return a
	}
	u, err := o.agents.Contact(ctx, agentID)
	if err != nil {
		o.log.Debug("agent contact unavailable", "agent_id", agentID, "error", err)
		return a
	}
	a.Name = u.FullName
	a.AvatarURL = u.AvatarURL
	a.Phone = u.PhoneNumber
	a.Email = u.Email
	if first, _, _ := strings.Cut(strings.TrimSpace(u.FullName), " "); first != "" {
		a.FirstName = first
	}
	return a
}
