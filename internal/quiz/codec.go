package quiz

import (
	"encoding/json"

	"fintrex-quiz/internal/domain"
)

// Marshal encodes the full session for the durable store.
func (s *Session) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Restore decodes a persisted blob back into a session. A missing or
// malformed blob yields a fresh NotStarted session rather than an error:
// persisted state is best-effort and must never wedge the caller. A blob
// claiming InProgress without questions is treated the same way.
func Restore(nic string, blob []byte) Session {
	if len(blob) == 0 {
		return New(nic)
	}
	var s Session
	if err := json.Unmarshal(blob, &s); err != nil {
		return New(nic)
	}
	switch s.Phase {
	case domain.PhaseInProgress:
		// A live session must have a cursor inside the question slice and
		// one recorded answer per question already passed.
		if len(s.Questions) == 0 ||
			s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) ||
			len(s.Answers) != s.CurrentIndex {
			return New(nic)
		}
	case domain.PhaseExpired, domain.PhaseCompleted, domain.PhaseNotStarted:
	default:
		return New(nic)
	}
	s.NIC = nic
	return s
}
