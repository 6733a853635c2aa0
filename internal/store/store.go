// Package store provides the ephemeral keyed storage used for pending
// verification codes and consumed reset-token IDs. The interface keeps the
// services decoupled from the mechanism: the in-memory implementation is
// fine for a single instance, a shared cache can be swapped in for more.
package store

import "time"

// KV is a key-value store with per-entry expiry. Set overwrites any
// existing entry for the key.
type KV interface {
	Set(key, value string, ttl time.Duration)
	// Get returns the stored value and its expiry instant. Entries past
	// their expiry are still returned until swept, so callers can
	// distinguish "expired" from "never existed".
	Get(key string) (value string, expiresAt time.Time, ok bool)
	Delete(key string)
}
