package domain

import "time"

// ClientStatus tracks the lifecycle of an exchange client slot.
type ClientStatus int

const (
	// ClientUninitialized means no construction attempt has been made yet.
	ClientUninitialized ClientStatus = iota
	// ClientReady means a working client is cached.
	ClientReady
	// ClientFailed means the last construction attempt failed and the
	// slot is cooling down.
	ClientFailed
)

func (s ClientStatus) String() string {
	switch s {
	case ClientReady:
		return "ready"
	case ClientFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// ClientState is the registry's record for one exchange.
type ClientState struct {
	Status   ClientStatus
	FailedAt time.Time
}

// InCooldown reports whether a failed slot is still cooling down at
// now, and how long remains.
func (s ClientState) InCooldown(now time.Time, cooldown time.Duration) (bool, time.Duration) {
	if s.Status != ClientFailed {
		return false, 0
	}
	remaining := cooldown - now.Sub(s.FailedAt)
	if remaining <= 0 {
		return false, 0
	}
	return true, remaining
}
