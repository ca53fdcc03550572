package domain

import "time"

// Question is a single multiple-choice entry from the question bank.
// Answer always equals one of Options.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// Bank is the pool of candidate questions a session samples from.
type Bank struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// Phase is the lifecycle stage of a quiz session. Transitions are
// monotonic: NotStarted -> InProgress -> {Expired, Completed}, with an
// explicit reset as the only way back to NotStarted.
type Phase string

const (
	PhaseNotStarted Phase = "NOT_STARTED"
	PhaseInProgress Phase = "IN_PROGRESS"
	PhaseExpired    Phase = "EXPIRED"
	PhaseCompleted  Phase = "COMPLETED"
)

// Terminal reports whether the phase admits no further play.
func (p Phase) Terminal() bool {
	return p == PhaseExpired || p == PhaseCompleted
}

// Answer records one submitted answer for the review screen.
type Answer struct {
	Question string `json:"question"`
	Selected string `json:"selected"`
	Correct  string `json:"correct"`
}

// Status classifies a finished player.
type Status string

const (
	StatusWon  Status = "WON"
	StatusLost Status = "LOST"
)

// Player is the backend record for one participant. NIC and Mobile are
// unique across all players; Played flips to true exactly once when the
// result is recorded.
type Player struct {
	NIC       string    `json:"nic"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	Score     int       `json:"score"`
	Status    Status    `json:"status"`
	Played    bool      `json:"played"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
