// Package request carries the ambient call context for engine operations:
// the "as of" date rates are resolved against, the acting user recorded on
// approvals and audit events, and the caller's locale. It replaces the
// implicit global state the engine must never rely on.
package request

import (
	"time"

	"github.com/google/uuid"
)

// Context is the explicit per-call context passed into every engine
// operation
type Context struct {
	AsOf       time.Time
	ActingUser uuid.UUID
	Locale     string
}

// New creates a request context for the given user, effective now
func New(actingUser uuid.UUID) Context {
	return Context{
		AsOf:       time.Now(),
		ActingUser: actingUser,
		Locale:     "en-US",
	}
}

// AsOfOrNow returns the as-of date, defaulting to the current time when the
// caller left it unset
func (c Context) AsOfOrNow() time.Time {
	if c.AsOf.IsZero() {
		return time.Now()
	}
	return c.AsOf
}
