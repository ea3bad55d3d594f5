// Package identity resolves the persistent local user identity.
package identity

import (
	"fmt"
	"sync"

	"github.com/parlorchat/parlor/pkg/protocol"
)

// Store persists the local identity between sessions.
type Store interface {
	// Load returns the stored identity, or nil when none exists.
	Load() (*protocol.User, error)

	// Create mints a new identity, persists it, and returns it.
	Create() (*protocol.User, error)
}

// Resolver loads or creates the identity once per session. Resolve is safe
// for concurrent use: callers racing before persistence completes still
// observe a single identity.
type Resolver struct {
	store Store

	mu   sync.Mutex
	user *protocol.User
}

// NewResolver creates a Resolver backed by store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the session identity, minting and persisting one on first
// use when nothing is stored.
func (r *Resolver) Resolve() (protocol.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.user != nil {
		return *r.user, nil
	}

	user, err := r.store.Load()
	if err != nil {
		return protocol.User{}, fmt.Errorf("failed to load identity: %w", err)
	}
	if user == nil {
		user, err = r.store.Create()
		if err != nil {
			return protocol.User{}, fmt.Errorf("failed to create identity: %w", err)
		}
	}

	r.user = user
	return *user, nil
}
