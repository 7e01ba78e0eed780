// Package middleware wraps a ports.SessionStore with at-rest protections.
// Coaching transcripts carry unreleased strategy and the occasional personal
// detail, so deployments that persist to shared disks or Redis can layer
// encryption and masking between the session manager and the raw store.
package middleware

import "github.com/cairnlabs/cairn/pkg/ports"

// Middleware allows wrapping a SessionStore to add behavior.
type Middleware func(ports.SessionStore) ports.SessionStore

// Chain applies the middlewares so that the first listed is the first to see
// a Save. Chain(store, Redaction, Encryption) redacts, then encrypts, then
// writes.
func Chain(store ports.SessionStore, mws ...Middleware) ports.SessionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
