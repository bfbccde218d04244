package session

import (
	"context"
	"encoding/json"
	"fmt"

	"proptech/portal/internal/models"
	"proptech/portal/internal/storage"
)

// Storage keys of a browser session.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyTokenType    = "tokenType"
	KeyUser         = "user"
)

// Session is the persisted login: tokens plus the cached identity.
type Session struct {
	AccessToken  string             `json:"-"`
	RefreshToken string             `json:"-"`
	User         models.SessionUser `json:"user"`
}

// Store persists the session of one browser session.
type Store interface {
	// Load returns nil when nobody is logged in.
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

type storageStore struct {
	st storage.Storage
	ns string
}

// NewStore keeps the session under the browser session's namespace of st.
func NewStore(st storage.Storage, browserSessionID string) Store {
	return &storageStore{st: st, ns: storage.SessionNamespace(browserSessionID)}
}

func (s *storageStore) Load(ctx context.Context) (*Session, error) {
	access, ok, err := s.st.Get(ctx, s.ns, KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("load access token: %w", err)
	}
	if !ok || access == "" {
		return nil, nil
	}
	refresh, _, err := s.st.Get(ctx, s.ns, KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	rawUser, _, err := s.st.Get(ctx, s.ns, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	sess := &Session{AccessToken: access, RefreshToken: refresh}
	if rawUser != "" {
		if err := json.Unmarshal([]byte(rawUser), &sess.User); err != nil {
			// A corrupt identity cannot be trusted; behave as logged out.
			return nil, nil
		}
	}
	return sess, nil
}

func (s *storageStore) Save(ctx context.Context, sess *Session) error {
	rawUser, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.st.SetMany(ctx, s.ns, map[string]string{
		KeyAccessToken:  sess.AccessToken,
		KeyRefreshToken: sess.RefreshToken,
		KeyTokenType:    "Bearer",
		KeyUser:         string(rawUser),
	})
}

func (s *storageStore) Clear(ctx context.Context) error {
	return s.st.Delete(ctx, s.ns, KeyAccessToken, KeyRefreshToken, KeyTokenType, KeyUser)
}
