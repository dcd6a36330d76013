package app

// Event names mirror the socket protocol spoken by clients.
const (
	EventLobbyState      = "lobby_state"
	EventQuestion        = "question"
	EventNextQuestion    = "next_question"
	EventTimer           = "timer"
	EventQuestionResults = "question_results"
	EventChallengeEnded  = "challenge_ended"
	EventChallengeError  = "challenge_error"
)

// Event is an outbound notification envelope.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Notifier delivers outbound events to a whole room or a single
// participant. Delivery is best-effort and must never block the caller;
// a failed delivery does not roll back room state.
type Notifier interface {
	ToRoom(roomID string, event Event)
	ToParticipant(roomID, userID string, event Event)
}

// NopNotifier discards every event. Useful for tests of pure state logic.
type NopNotifier struct{}

func (NopNotifier) ToRoom(string, Event)                {}
func (NopNotifier) ToParticipant(string, string, Event) {}
