package quiz

import (
	"math/rand"
	"time"

	"fintrex-quiz/internal/domain"
)

// Session is one player's quiz attempt. All mutation goes through the
// methods below so the phase transitions stay monotonic:
// NotStarted -> InProgress -> {Expired, Completed}, and Reset is the only
// way back. Elapsed time is derived from the fixed StartedAt timestamp,
// never from a running countdown, so a suspended and resumed process sees
// a consistent remaining time.
type Session struct {
	NIC          string            `json:"nic"`
	Questions    []domain.Question `json:"questions"`
	CurrentIndex int               `json:"currentIndex"`
	Answers      []domain.Answer   `json:"answers"`
	Score        int               `json:"score"`
	StartedAt    int64             `json:"startedAtEpochMs"`
	DurationSec  int               `json:"durationSec"`
	Phase        domain.Phase      `json:"phase"`
	Selected     string            `json:"selected,omitempty"`
}

// New returns a fresh NotStarted session for the given player.
func New(nic string) Session {
	return Session{NIC: nic, Phase: domain.PhaseNotStarted}
}

// Start samples count distinct questions from the bank, shuffles each
// question's options independently, and begins the countdown. A bank
// smaller than count plays the whole bank in random order.
func (s *Session) Start(bank domain.Bank, count, durationSec int, rng *rand.Rand, now time.Time) error {
	if len(bank.Questions) == 0 {
		return domain.ErrEmptyBank
	}
	// Terminal sessions stay terminal until an explicit Reset.
	if s.Phase != domain.PhaseNotStarted {
		return domain.ErrInvalidState
	}

	picked := sampleQuestions(bank.Questions, count, rng)
	for i := range picked {
		picked[i].Options = shuffled(picked[i].Options, rng)
	}

	s.Questions = picked
	s.CurrentIndex = 0
	s.Answers = nil
	s.Score = 0
	s.StartedAt = now.UnixMilli()
	s.DurationSec = durationSec
	s.Phase = domain.PhaseInProgress
	s.Selected = ""
	return nil
}

// Current returns the question at the cursor.
func (s *Session) Current() (domain.Question, bool) {
	if s.Phase != domain.PhaseInProgress || s.CurrentIndex >= len(s.Questions) {
		return domain.Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// Select stores the pending option so a reload mid-question keeps the
// player's choice. It does not advance the session.
func (s *Session) Select(option string) error {
	if s.Phase != domain.PhaseInProgress {
		return domain.ErrInvalidState
	}
	s.Selected = option
	return nil
}

// Submit records the answer for the current question, scoring it against
// the bank answer, and advances the cursor. The final question's submission
// completes the session. Exactly one successful call is possible per index;
// anything outside InProgress fails with ErrInvalidState.
func (s *Session) Submit(option string, now time.Time) (bool, error) {
	if s.Phase != domain.PhaseInProgress {
		return false, domain.ErrInvalidState
	}
	if option == "" {
		return false, domain.ErrNoSelection
	}

	q := s.Questions[s.CurrentIndex]
	correct := option == q.Answer

	s.Answers = append(s.Answers, domain.Answer{
		Question: q.Text,
		Selected: option,
		Correct:  q.Answer,
	})
	if correct {
		s.Score++
	}

	if s.CurrentIndex+1 == len(s.Questions) {
		s.Phase = domain.PhaseCompleted
	} else {
		s.CurrentIndex++
	}
	s.Selected = ""
	return correct, nil
}

// Remaining derives the seconds left from the fixed start timestamp,
// clamped at zero.
func (s *Session) Remaining(now time.Time) int {
	elapsed := int((now.UnixMilli() - s.StartedAt) / 1000)
	remaining := s.DurationSec - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Tick re-evaluates the countdown. It returns the remaining seconds and
// whether this call fired the expiry transition. Safe at any cadence:
// repeated calls after expiry never re-fire, and terminal phases are
// untouched.
func (s *Session) Tick(now time.Time) (int, bool) {
	if s.Phase != domain.PhaseInProgress {
		return 0, false
	}
	remaining := s.Remaining(now)
	if remaining == 0 {
		s.Phase = domain.PhaseExpired
		s.Selected = ""
		return 0, true
	}
	return remaining, false
}

// Reset clears the session back to NotStarted defaults.
func (s *Session) Reset() {
	*s = New(s.NIC)
}

// sampleQuestions draws up to count questions uniformly without replacement.
func sampleQuestions(pool []domain.Question, count int, rng *rand.Rand) []domain.Question {
	order := rng.Perm(len(pool))
	if count > len(pool) {
		count = len(pool)
	}
	picked := make([]domain.Question, 0, count)
	for _, idx := range order[:count] {
		picked = append(picked, pool[idx])
	}
	return picked
}

func shuffled(options []string, rng *rand.Rand) []string {
	out := make([]string, len(options))
	copy(out, options)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
