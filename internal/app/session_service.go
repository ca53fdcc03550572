package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"fintrex-quiz/internal/domain"
	"fintrex-quiz/internal/quiz"
)

// SessionSettings carries the tunable quiz parameters.
type SessionSettings struct {
	BankID      string
	Questions   int
	DurationSec int
}

// SessionService owns the live quiz sessions. Every mutation is written
// back to the SessionStore so a reconnecting client resumes exactly where
// it left off. Finished sessions report their score to the player store
// fire-and-forget: delivery failure is logged, never surfaced to the
// player's local transition into the review screen.
type SessionService struct {
	store    SessionStore
	banks    BankRepository
	players  PlayerRepository
	settings SessionSettings

	mu   sync.Mutex
	rng  *rand.Rand
	live map[string]*quiz.Session
}

func NewSessionService(store SessionStore, banks BankRepository, players PlayerRepository, settings SessionSettings) *SessionService {
	return NewSessionServiceWithRand(store, banks, players, settings, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSessionServiceWithRand allows a seeded source for deterministic tests.
func NewSessionServiceWithRand(store SessionStore, banks BankRepository, players PlayerRepository, settings SessionSettings, rng *rand.Rand) *SessionService {
	return &SessionService{
		store:    store,
		banks:    banks,
		players:  players,
		settings: settings,
		rng:      rng,
		live:     make(map[string]*quiz.Session),
	}
}

// Resume returns the player's session, restoring it from the durable store
// on first touch. A malformed or missing blob yields a fresh NotStarted
// session; a terminal blob is returned as-is and never resumed as live play.
func (s *SessionService) Resume(ctx context.Context, nic string) (quiz.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.resumeLocked(ctx, nic)
	if err != nil {
		return quiz.Session{}, err
	}
	return *sess, nil
}

func (s *SessionService) resumeLocked(ctx context.Context, nic string) (*quiz.Session, error) {
	if sess, ok := s.live[nic]; ok {
		return sess, nil
	}
	blob, found, err := s.store.Load(ctx, nic)
	if err != nil {
		return nil, err
	}
	var sess quiz.Session
	if found {
		sess = quiz.Restore(nic, blob)
	} else {
		sess = quiz.New(nic)
	}
	s.live[nic] = &sess
	return &sess, nil
}

// Start begins a new attempt for the player.
func (s *SessionService) Start(ctx context.Context, nic string, now time.Time) (quiz.Session, error) {
	bank, err := s.banks.GetBank(ctx, s.settings.BankID)
	if err != nil {
		return quiz.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.resumeLocked(ctx, nic)
	if err != nil {
		return quiz.Session{}, err
	}
	if err := sess.Start(bank, s.settings.Questions, s.settings.DurationSec, s.rng, now); err != nil {
		return quiz.Session{}, err
	}
	s.persistLocked(ctx, sess)
	return *sess, nil
}

// Select stores the player's pending option without advancing.
func (s *SessionService) Select(ctx context.Context, nic, option string) (quiz.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.resumeLocked(ctx, nic)
	if err != nil {
		return quiz.Session{}, err
	}
	if err := sess.Select(option); err != nil {
		return quiz.Session{}, err
	}
	s.persistLocked(ctx, sess)
	return *sess, nil
}

// Submit records an answer. Completing the final question reports the score.
func (s *SessionService) Submit(ctx context.Context, nic, option string, now time.Time) (quiz.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.resumeLocked(ctx, nic)
	if err != nil {
		return quiz.Session{}, false, err
	}
	correct, err := sess.Submit(option, now)
	if err != nil {
		return quiz.Session{}, false, err
	}
	s.persistLocked(ctx, sess)
	if sess.Phase == domain.PhaseCompleted {
		s.reportLocked(ctx, sess)
	}
	return *sess, correct, nil
}

// Tick advances the countdown. The caller drives it on its own cadence and
// stops once the session leaves InProgress.
func (s *SessionService) Tick(ctx context.Context, nic string, now time.Time) (quiz.Session, int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.resumeLocked(ctx, nic)
	if err != nil {
		return quiz.Session{}, 0, false, err
	}
	remaining, fired := sess.Tick(now)
	if fired {
		s.persistLocked(ctx, sess)
		s.reportLocked(ctx, sess)
	}
	return *sess, remaining, fired, nil
}

// Logout discards the persisted blob and forgets the live session.
func (s *SessionService) Logout(ctx context.Context, nic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, nic)
	return s.store.Clear(ctx, nic)
}

func (s *SessionService) persistLocked(ctx context.Context, sess *quiz.Session) {
	blob, err := sess.Marshal()
	if err != nil {
		log.Error().Err(err).Str("nic", sess.NIC).Msg("encode session")
		return
	}
	if err := s.store.Save(ctx, sess.NIC, blob); err != nil {
		log.Error().Err(err).Str("nic", sess.NIC).Msg("persist session")
	}
}

// reportLocked delivers the final score at-least-once. Failures are logged
// and swallowed so the local terminal transition is never blocked; the
// player store's Played flag makes redelivery safe.
func (s *SessionService) reportLocked(ctx context.Context, sess *quiz.Session) {
	if _, err := s.players.RecordResult(ctx, sess.NIC, sess.Score); err != nil {
		log.Warn().Err(err).Str("nic", sess.NIC).Int("score", sess.Score).Msg("record result")
	}
}
