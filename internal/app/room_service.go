package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"livecoder-service/internal/domain"
)

// RoomRegistry abstracts how live rooms are stored (in-memory, Redis-backed).
type RoomRegistry interface {
	// Create registers a room under the given id, returning the existing
	// room when the id is already taken.
	Create(roomID string) *Room
	Get(roomID string) (*Room, bool)
	DeleteIfEmpty(roomID string)
}

// QuestionRepository serves the question catalog (from cache/backing store).
type QuestionRepository interface {
	Catalog(ctx context.Context) ([]domain.Question, error)
}

// Scorer grades a submitted artifact against a question. Implementations
// must be pure, deterministic, and bounded to [0, 10].
type Scorer interface {
	Score(q domain.Question, code, language string) int
}

// RoomService drives a room from lobby through an active challenge to
// completion. It reacts to join/leave/start/submit/timeout events, owns the
// per-participant countdowns, and emits notifications through the Notifier.
type RoomService struct {
	rooms           RoomRegistry
	questions       QuestionRepository
	scorer          Scorer
	notifier        Notifier
	timers          *TimerManager
	questionSeconds int
	now             func() time.Time
}

func NewRoomService(rooms RoomRegistry, questions QuestionRepository, scorer Scorer, notifier Notifier, questionSeconds int) *RoomService {
	return NewRoomServiceWithTimers(rooms, questions, scorer, notifier, questionSeconds, NewTimerManager())
}

// NewRoomServiceWithTimers lets tests inject a fast-ticking timer manager.
func NewRoomServiceWithTimers(rooms RoomRegistry, questions QuestionRepository, scorer Scorer, notifier Notifier, questionSeconds int, timers *TimerManager) *RoomService {
	if questionSeconds <= 0 {
		questionSeconds = 300
	}
	return &RoomService{
		rooms:           rooms,
		questions:       questions,
		scorer:          scorer,
		notifier:        notifier,
		timers:          timers,
		questionSeconds: questionSeconds,
		now:             time.Now,
	}
}

// CreateRoom registers a new room and returns its id. Creation is the only
// way a room id comes into existence; joining an unknown id always fails.
func (s *RoomService) CreateRoom(roomID string) string {
	if roomID == "" {
		roomID = uuid.NewString()
	}
	s.rooms.Create(roomID)
	return roomID
}

// RoomExists is a read-only existence query.
func (s *RoomService) RoomExists(roomID string) bool {
	_, ok := s.rooms.Get(roomID)
	return ok
}

// Join adds the participant to the room roster, electing them admin when the
// seat is vacant. A participant rejoining an active challenge is resynced
// with their current question and a fresh countdown; anyone else arriving
// mid-challenge spectates.
func (s *RoomService) Join(_ context.Context, roomID, userID string) (domain.RoomSnapshot, error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.RoomSnapshot{}, domain.ErrUnknownRoom
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	room.joinLocked(userID)
	snapshot := room.snapshotLocked()

	if room.activeLocked() {
		if p, ok := room.progress[userID]; ok && !p.done {
			p.departed = false
			if p.index < len(room.questions) {
				q := room.questions[p.index]
				snapshot.CurrentQuestion = &q
				key := timerKey(roomID, userID)
				if remaining, live := s.timers.Remaining(key); live {
					snapshot.SecondsRemaining = remaining
				} else {
					snapshot.SecondsRemaining = s.questionSeconds
					s.scheduleQuestionTimer(roomID, userID, p.index)
				}
				s.notifier.ToParticipant(roomID, userID, Event{Type: EventQuestion, Payload: q})
			}
		}
	}

	s.notifier.ToRoom(roomID, Event{Type: EventLobbyState, Payload: room.lobbyStateLocked()})
	return snapshot, nil
}

// Leave removes the participant, re-elects the admin if needed, cancels the
// departer's countdown, and garbage-collects the room once empty. A departer
// mid-challenge keeps an inert progress record for the final leaderboard but
// drops out of the completion quorum.
func (s *RoomService) Leave(_ context.Context, roomID, userID string) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return
	}

	room.mu.Lock()
	room.leaveLocked(userID)
	s.timers.Cancel(timerKey(roomID, userID))

	if p, ok := room.progress[userID]; ok && room.activeLocked() && !p.done {
		p.departed = true
		// The departure may have emptied the set of still-running
		// participants; re-evaluate completion so the room cannot hang.
		if room.allActiveDoneLocked() {
			s.completeLocked(room)
		}
	}

	empty := len(room.roster) == 0
	if !empty {
		s.notifier.ToRoom(roomID, Event{Type: EventLobbyState, Payload: room.lobbyStateLocked()})
	} else {
		for member := range room.progress {
			s.timers.Cancel(timerKey(roomID, member))
		}
	}
	room.mu.Unlock()

	if empty {
		s.rooms.DeleteIfEmpty(roomID)
	}
}

// StartChallenge transitions the room from lobby to active. Only the current
// admin may start; a failed start leaves the room untouched.
func (s *RoomService) StartChallenge(ctx context.Context, roomID, userID, topic, difficulty string) error {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.ErrUnknownRoom
	}

	// Catalog I/O stays outside the room lock; a failed load mutates nothing.
	catalog, err := s.questions.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("load question catalog: %w", err)
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.lobbyOpen {
		return domain.ErrChallengeActive
	}
	if room.admin != userID {
		return domain.ErrNotAdmin
	}

	selected := domain.SelectQuestions(catalog, topic, difficulty)
	if len(selected) == 0 {
		// This failure blocks everyone waiting in the lobby, so it is the
		// one error that goes to the whole room.
		s.notifier.ToRoom(roomID, Event{Type: EventChallengeError, Payload: map[string]string{
			"message": domain.ErrNoQuestionsAvailable.Error(),
		}})
		return domain.ErrNoQuestionsAvailable
	}

	room.startLocked(selected)
	s.notifier.ToRoom(roomID, Event{Type: EventLobbyState, Payload: room.lobbyStateLocked()})

	for _, member := range room.startRoster {
		s.notifier.ToParticipant(roomID, member, Event{Type: EventQuestion, Payload: selected[0]})
		s.scheduleQuestionTimer(roomID, member, 0)
	}
	return nil
}

// Submit grades the participant's current question and advances their cursor.
func (s *RoomService) Submit(_ context.Context, roomID, userID, code, language string) (domain.SubmitReceipt, error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.SubmitReceipt{}, domain.ErrUnknownRoom
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.activeLocked() {
		return domain.SubmitReceipt{}, domain.ErrNoActiveChallenge
	}
	p, ok := room.progress[userID]
	if !ok || p.departed {
		// A departer is out of the room until they rejoin; their inert
		// progress record does not entitle them to keep advancing.
		return domain.SubmitReceipt{}, domain.ErrUnknownParticipant
	}
	if p.done {
		return domain.SubmitReceipt{}, domain.ErrNoActiveChallenge
	}

	questionNumber := p.index + 1
	delta := s.advanceLocked(room, userID, p, code, language, false)
	return domain.SubmitReceipt{
		Message:        "Code submitted successfully!",
		Score:          delta,
		QuestionNumber: questionNumber,
		TotalQuestions: len(room.questions),
	}, nil
}

// handleExpiry is the timeout path: identical to a submit with an empty
// artifact and a forced zero score. The captured index guards against a
// submit that raced the expiry and already advanced the participant.
func (s *RoomService) handleExpiry(roomID, userID string, index int) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.activeLocked() {
		return
	}
	p, ok := room.progress[userID]
	if !ok || p.done || p.departed || p.index != index {
		return
	}
	s.advanceLocked(room, userID, p, "", "", true)
}

// advanceLocked implements the single advancement path shared by submit and
// timeout: record the submission, apply the score delta, notify the
// participant, and either hand them the next question with a fresh countdown
// or mark them done and evaluate room completion.
func (s *RoomService) advanceLocked(room *Room, userID string, p *progress, code, language string, timedOut bool) int {
	if p.index >= len(room.questions) {
		return 0
	}
	question := room.questions[p.index]

	p.submissions = append(p.submissions, domain.Submission{
		Code:          code,
		Language:      language,
		SubmittedAt:   s.now(),
		QuestionTitle: question.Title,
	})

	delta := 0
	if !timedOut {
		delta = s.scorer.Score(question, code, language)
	}
	p.score += delta

	s.notifier.ToParticipant(room.id, userID, Event{Type: EventQuestionResults, Payload: domain.QuestionResult{
		Question: question,
		Results:  map[string]int{userID: delta},
		Scores:   map[string]int{userID: p.score},
	}})

	p.index++
	key := timerKey(room.id, userID)
	if p.index < len(room.questions) {
		s.timers.Cancel(key)
		s.notifier.ToParticipant(room.id, userID, Event{Type: EventNextQuestion, Payload: room.questions[p.index]})
		s.scheduleQuestionTimer(room.id, userID, p.index)
		return delta
	}

	p.done = true
	s.timers.Cancel(key)
	if room.allActiveDoneLocked() {
		s.completeLocked(room)
	} else {
		s.notifier.ToParticipant(room.id, userID, Event{Type: EventChallengeEnded, Payload: domain.ChallengeResult{
			Leaderboard: []domain.LeaderboardEntry{{Rank: 1, Username: userID, Score: p.score}},
			FinalScores: map[string]int{userID: p.score},
		}})
	}
	return delta
}

func (s *RoomService) completeLocked(room *Room) {
	room.completed = true
	s.notifier.ToRoom(room.id, Event{Type: EventChallengeEnded, Payload: room.leaderboardLocked()})
}

func (s *RoomService) scheduleQuestionTimer(roomID, userID string, index int) {
	key := timerKey(roomID, userID)
	s.timers.Schedule(key, s.questionSeconds,
		func(remaining int) {
			s.notifier.ToParticipant(roomID, userID, Event{Type: EventTimer, Payload: remaining})
		},
		func() {
			s.handleExpiry(roomID, userID, index)
		},
	)
}

func timerKey(roomID, userID string) string {
	return roomID + "/" + userID
}
