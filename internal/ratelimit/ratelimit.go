// Package ratelimit implements the per-client request limits applied to API routes.
package ratelimit

import (
	"context" // Store calls
	"time"    // Window lengths

	"github.com/redis/go-redis/v9" // Shared counters
)

// Tier is a named window/threshold pair
type Tier struct {
	Name    string        // Key namespace and log field
	Window  time.Duration // Fixed window length
	Max     int           // Requests allowed per window
	Message string        // Body of the 429 response
}

// Limit tiers
var (
	Auth    = Tier{Name: "auth", Window: 15 * time.Minute, Max: 5, Message: "Too many authentication attempts, please try again later"}
	Payment = Tier{Name: "payment", Window: time.Hour, Max: 10, Message: "Too many payment requests, please try again later"}
	Admin   = Tier{Name: "admin", Window: 15 * time.Minute, Max: 200, Message: "Too many admin requests, please slow down"}
	General = Tier{Name: "general", Window: 15 * time.Minute, Max: 100, Message: "Too many requests, please try again later"}
	Strict  = Tier{Name: "strict", Window: time.Hour, Max: 3, Message: "Too many submissions, please try again later"}
)

// Tiers lists every configured tier
func Tiers() []Tier {
	return []Tier{Auth, Payment, Admin, General, Strict}
}

// Decision is the outcome of counting one request
type Decision struct {
	Allowed    bool          // Request may proceed
	Limit      int           // Tier maximum
	Remaining  int           // Requests left in the window
	RetryAfter time.Duration // Zero when allowed
}

// Store counts requests for a client key within a single tier
type Store interface {
	Take(ctx context.Context, key string) (Decision, error)
}

// NewStore returns a Redis backed store when a client is available and an in-process one otherwise
func NewStore(rdb *redis.Client, tier Tier) Store {
	if rdb != nil {
		return NewRedisStore(rdb, tier) // Shared across instances
	}
	return NewMemoryStore(tier) // Single instance fallback
}
