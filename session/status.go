package session

import "github.com/jrsteele09/foodwaste-zero/identity"

// Status is the core's confirmed belief about the held token.
type Status int

const (
	// Initializing is the only start state, before the persisted token is read.
	Initializing Status = iota
	// Validating means a run is confirming a token. Always transient.
	Validating
	Authenticated
	Anonymous
)

func (s Status) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Validating:
		return "validating"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Settled reports whether the status is a confirmed outcome.
func (s Status) Settled() bool {
	return s == Authenticated || s == Anonymous
}

// Snapshot is a consistent read of the session. The token itself is never
// part of it.
type Snapshot struct {
	Status Status
	User   *identity.UserProfile // set only when Authenticated
}

func (s Snapshot) IsAuthenticated() bool {
	return s.Status == Authenticated
}
