package domain

import "time"

// Question is an immutable catalog entry for a coding challenge.
type Question struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Topic       string            `json:"topic"`
	Difficulty  string            `json:"difficulty"`
	Constraints []string          `json:"constraints,omitempty"`
	Templates   map[string]string `json:"templates,omitempty"` // language -> starter code
}

// Submission is one entry in a participant's append-only submission log.
// Timed-out questions are recorded with an empty Code.
type Submission struct {
	Code          string    `json:"code"`
	Language      string    `json:"language"`
	SubmittedAt   time.Time `json:"submittedAt"`
	QuestionTitle string    `json:"questionTitle"`
}

// ParticipantProgress is a read-only view of one participant's cursor into
// the question sequence. The submission log grows by exactly one entry per
// index advance, so len(Submissions) == CurrentIndex always holds.
type ParticipantProgress struct {
	CurrentIndex int          `json:"currentIndex"`
	Score        int          `json:"score"`
	Submissions  []Submission `json:"submissions"`
	Done         bool         `json:"done"`
}

// LobbyState is broadcast to a room on any roster or lobby change.
type LobbyState struct {
	Admin        string   `json:"admin"`
	Participants []string `json:"participants"`
	LobbyOpen    bool     `json:"lobby"`
}

// LeaderboardEntry is one rank-ordered row of a finished challenge.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// ChallengeResult carries the leaderboard sent when a challenge ends.
// A partial finisher receives a single personal row; the whole room
// receives the full board once every active participant is done.
type ChallengeResult struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	FinalScores map[string]int     `json:"finalScores"`
}

// QuestionResult reports the score delta for a single graded question.
type QuestionResult struct {
	Question Question       `json:"question"`
	Results  map[string]int `json:"results"`
	Scores   map[string]int `json:"scores"`
}

// RoomSnapshot is returned on join so late (re)joiners can resynchronize.
// CurrentQuestion and SecondsRemaining are set only when the joiner has an
// in-flight question in an active challenge.
type RoomSnapshot struct {
	RoomID           string    `json:"roomId"`
	Admin            string    `json:"admin"`
	Participants     []string  `json:"participants"`
	LobbyOpen        bool      `json:"lobby"`
	CurrentQuestion  *Question `json:"currentQuestion,omitempty"`
	SecondsRemaining int       `json:"secondsRemaining,omitempty"`
}

// SubmitReceipt is the synchronous response of the REST submit facade.
type SubmitReceipt struct {
	Message        string `json:"message"`
	Score          int    `json:"score"`
	QuestionNumber int    `json:"questionNumber"`
	TotalQuestions int    `json:"totalQuestions"`
}
