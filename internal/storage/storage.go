// Package storage is the browser "local storage" of a portal session: a
// string key/value store partitioned into namespaces.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by drivers used after Close.
var ErrClosed = errors.New("storage closed")

// Storage is a namespaced string key/value store. SetMany is atomic per
// call: readers observe either none or all of its writes.
type Storage interface {
	// Get returns the value of key in ns and whether it exists.
	Get(ctx context.Context, ns, key string) (string, bool, error)
	// SetMany writes all values to ns in one atomic step.
	SetMany(ctx context.Context, ns string, values map[string]string) error
	// Delete removes keys from ns. Missing keys are ignored.
	Delete(ctx context.Context, ns string, keys ...string) error
}

// Namespaces used by the portal.
const (
	// SessionNamespacePrefix prefixes the storage of one browser session.
	SessionNamespacePrefix = "session:"
	// UserNamespacePrefix prefixes storage shared by every session of a user.
	UserNamespacePrefix = "user:"
)

func SessionNamespace(sessionID string) string {
	return SessionNamespacePrefix + sessionID
}

func UserNamespace(userID string) string {
	return UserNamespacePrefix + userID
}
