package quiz

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"fintrex-quiz/internal/domain"
)

func testBank(n int) domain.Bank {
	bank := domain.Bank{ID: "default"}
	letters := []string{"A", "B", "C", "D"}
	for i := 0; i < n; i++ {
		q := domain.Question{
			Text:    "question " + string(rune('a'+i)),
			Options: append([]string(nil), letters...),
			Answer:  letters[i%len(letters)],
		}
		bank.Questions = append(bank.Questions, q)
	}
	return bank
}

func startedSession(t *testing.T, bankSize, count int) Session {
	t.Helper()
	s := New("123456789V")
	rng := rand.New(rand.NewSource(42))
	if err := s.Start(testBank(bankSize), count, 360, rng, time.UnixMilli(0)); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	return s
}

func TestStartSamplesWithoutReplacement(t *testing.T) {
	s := startedSession(t, 25, 10)

	if len(s.Questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(s.Questions))
	}
	seen := map[string]bool{}
	for _, q := range s.Questions {
		if seen[q.Text] {
			t.Fatalf("duplicate question %q in selection", q.Text)
		}
		seen[q.Text] = true
	}
	if s.Phase != domain.PhaseInProgress || s.CurrentIndex != 0 || s.Score != 0 {
		t.Fatalf("unexpected initial state %+v", s)
	}
}

func TestStartShufflesOptionsAsPermutation(t *testing.T) {
	s := startedSession(t, 25, 10)

	for _, q := range s.Questions {
		if len(q.Options) != 4 {
			t.Fatalf("expected 4 options, got %d", len(q.Options))
		}
		counts := map[string]int{}
		for _, opt := range q.Options {
			counts[opt]++
		}
		for _, want := range []string{"A", "B", "C", "D"} {
			if counts[want] != 1 {
				t.Fatalf("options %v are not a permutation of the source", q.Options)
			}
		}
	}
}

func TestStartIsReproducibleWithSeededSource(t *testing.T) {
	bank := testBank(25)
	a := New("123456789V")
	b := New("123456789V")
	now := time.UnixMilli(1000)

	if err := a.Start(bank, 10, 360, rand.New(rand.NewSource(7)), now); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := b.Start(bank, 10, 360, rand.New(rand.NewSource(7)), now); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !reflect.DeepEqual(a.Questions, b.Questions) {
		t.Fatalf("same seed produced different selections")
	}
}

func TestStartRejectsEmptyBank(t *testing.T) {
	s := New("123456789V")
	err := s.Start(domain.Bank{}, 10, 360, rand.New(rand.NewSource(1)), time.Now())
	if !errors.Is(err, domain.ErrEmptyBank) {
		t.Fatalf("expected empty bank error, got %v", err)
	}
	if s.Phase != domain.PhaseNotStarted {
		t.Fatalf("failed start must not change phase, got %s", s.Phase)
	}
}

func TestSmallBankPlaysWholeBank(t *testing.T) {
	s := startedSession(t, 3, 10)
	if len(s.Questions) != 3 {
		t.Fatalf("expected whole bank of 3, got %d", len(s.Questions))
	}
}

func TestSubmitScoresAndAdvances(t *testing.T) {
	s := startedSession(t, 25, 10)
	q := s.Questions[0]

	correct, err := s.Submit(q.Answer, time.UnixMilli(5000))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !correct || s.Score != 1 || s.CurrentIndex != 1 {
		t.Fatalf("expected correct answer to advance, got score=%d index=%d", s.Score, s.CurrentIndex)
	}
	if len(s.Answers) != 1 || s.Answers[0].Selected != q.Answer {
		t.Fatalf("answer not recorded: %+v", s.Answers)
	}

	wrong := ""
	for _, opt := range s.Questions[1].Options {
		if opt != s.Questions[1].Answer {
			wrong = opt
			break
		}
	}
	correct, err = s.Submit(wrong, time.UnixMilli(6000))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if correct || s.Score != 1 || s.CurrentIndex != 2 {
		t.Fatalf("wrong answer must advance without scoring, got score=%d index=%d", s.Score, s.CurrentIndex)
	}
}

func TestSubmitRequiresSelection(t *testing.T) {
	s := startedSession(t, 25, 10)
	if _, err := s.Submit("", time.Now()); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected no-selection error, got %v", err)
	}
	if s.CurrentIndex != 0 || len(s.Answers) != 0 {
		t.Fatalf("failed submit mutated session: %+v", s)
	}
}

func TestSingleQuestionBankCompletes(t *testing.T) {
	bank := domain.Bank{ID: "default", Questions: []domain.Question{{
		Text:    "pick B",
		Options: []string{"A", "B", "C", "D"},
		Answer:  "B",
	}}}
	s := New("123456789V")
	if err := s.Start(bank, 10, 360, rand.New(rand.NewSource(3)), time.UnixMilli(0)); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	correct, err := s.Submit("B", time.UnixMilli(1000))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !correct || s.Score != 1 || s.Phase != domain.PhaseCompleted {
		t.Fatalf("expected completed with score 1, got %+v", s)
	}

	// The session is terminal; a late submission must be rejected untouched.
	if _, err := s.Submit("A", time.UnixMilli(2000)); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if s.Score != 1 || len(s.Answers) != 1 {
		t.Fatalf("late submit mutated session: %+v", s)
	}
}

func TestTickExpiresExactlyOnce(t *testing.T) {
	s := New("123456789V")
	rng := rand.New(rand.NewSource(9))
	if err := s.Start(testBank(25), 10, 360, rng, time.UnixMilli(0)); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	remaining, fired := s.Tick(time.UnixMilli(359000))
	if fired || remaining != 1 {
		t.Fatalf("expected 1s left, got remaining=%d fired=%v", remaining, fired)
	}

	remaining, fired = s.Tick(time.UnixMilli(360000))
	if !fired || remaining != 0 || s.Phase != domain.PhaseExpired {
		t.Fatalf("expected expiry at deadline, got remaining=%d fired=%v phase=%s", remaining, fired, s.Phase)
	}

	scoreBefore, answersBefore := s.Score, len(s.Answers)
	if _, fired = s.Tick(time.UnixMilli(400000)); fired {
		t.Fatalf("expiry fired twice")
	}
	if s.Score != scoreBefore || len(s.Answers) != answersBefore || s.Phase != domain.PhaseExpired {
		t.Fatalf("tick after expiry mutated session")
	}
}

func TestTickDerivesFromStartNotCadence(t *testing.T) {
	s := startedSession(t, 25, 10)

	// A huge gap (process suspended) lands on the same answer a 1s cadence would.
	remaining, _ := s.Tick(time.UnixMilli(200000))
	if remaining != 160 {
		t.Fatalf("expected 160s left after 200s, got %d", remaining)
	}
}

func TestTickIgnoresCompletedSession(t *testing.T) {
	s := startedSession(t, 1, 1)
	if _, err := s.Submit(s.Questions[0].Answer, time.UnixMilli(1000)); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if s.Phase != domain.PhaseCompleted {
		t.Fatalf("expected completed, got %s", s.Phase)
	}
	if _, fired := s.Tick(time.UnixMilli(999000)); fired {
		t.Fatalf("tick must not expire a completed session")
	}
	if s.Phase != domain.PhaseCompleted {
		t.Fatalf("tick regressed phase to %s", s.Phase)
	}
}

func TestSelectPersistsPendingOption(t *testing.T) {
	s := startedSession(t, 25, 10)
	if err := s.Select(s.Questions[0].Options[2]); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if s.Selected != s.Questions[0].Options[2] {
		t.Fatalf("selection not stored")
	}
	if _, err := s.Submit(s.Selected, time.UnixMilli(1000)); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if s.Selected != "" {
		t.Fatalf("submit must clear the pending selection")
	}

	done := startedSession(t, 1, 1)
	if _, err := done.Submit(done.Questions[0].Answer, time.UnixMilli(1000)); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := done.Select("A"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state selecting on terminal session, got %v", err)
	}
}

func TestRoundTripInProgress(t *testing.T) {
	s := startedSession(t, 25, 10)
	if _, err := s.Submit(s.Questions[0].Answer, time.UnixMilli(3000)); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := s.Select(s.Questions[1].Options[0]); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	blob, err := s.Marshal()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	restored := Restore(s.NIC, blob)
	if !reflect.DeepEqual(s, restored) {
		t.Fatalf("round-trip mismatch:\n got %+v\nwant %+v", restored, s)
	}
}

func TestRestoreMalformedBlobYieldsFresh(t *testing.T) {
	question := `{"question":"pick B","options":["A","B"],"answer":"B"}`
	for _, blob := range [][]byte{
		nil,
		[]byte("{"),
		[]byte(`{"phase":"LIMBO"}`),
		[]byte(`{"phase":"IN_PROGRESS"}`),
		// Cursor outside the question slice must not be resumed as live:
		// the next submission would index past the end.
		[]byte(`{"phase":"IN_PROGRESS","currentIndex":5,"questions":[` + question + `]}`),
		[]byte(`{"phase":"IN_PROGRESS","currentIndex":-1,"questions":[` + question + `]}`),
		// One answer must be on record per question already passed.
		[]byte(`{"phase":"IN_PROGRESS","currentIndex":0,"questions":[` + question + `],"answers":[{"question":"pick B","selected":"A","correct":"B"}]}`),
	} {
		s := Restore("123456789V", blob)
		if s.Phase != domain.PhaseNotStarted || s.NIC != "123456789V" {
			t.Fatalf("expected fresh session for blob %q, got %+v", blob, s)
		}
	}
}

func TestRestoreKeepsTerminalPhase(t *testing.T) {
	s := startedSession(t, 25, 10)
	s.Tick(time.UnixMilli(360000))

	blob, err := s.Marshal()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	restored := Restore(s.NIC, blob)
	if restored.Phase != domain.PhaseExpired {
		t.Fatalf("terminal phase lost on restore: %s", restored.Phase)
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := startedSession(t, 25, 10)
	if _, err := s.Submit(s.Questions[0].Answer, time.UnixMilli(1000)); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	s.Reset()
	if s.Phase != domain.PhaseNotStarted || s.Score != 0 || len(s.Questions) != 0 || len(s.Answers) != 0 {
		t.Fatalf("reset left state behind: %+v", s)
	}
	if s.NIC != "123456789V" {
		t.Fatalf("reset must keep the owner, got %q", s.NIC)
	}
}
