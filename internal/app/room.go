package app

import (
	"sort"
	"sync"

	"livecoder-service/internal/domain"
)

// Room is the per-session aggregate: admin identity, lobby flag,
// insertion-ordered roster, and (once a challenge starts) the question
// sequence plus per-participant progress. Its mutex is the serialization
// boundary for every event touching the room; different rooms never share
// state and proceed fully in parallel.
type Room struct {
	id string

	mu          sync.Mutex
	admin       string
	lobbyOpen   bool
	roster      []string
	questions   []domain.Question
	progress    map[string]*progress
	startRoster []string // roster order at challenge start, used for tie-breaks
	completed   bool
}

// progress tracks one participant's cursor through the question sequence.
// The submissions log grows by exactly one entry per index advance, so
// len(submissions) == index holds at all times.
type progress struct {
	index       int
	score       int
	submissions []domain.Submission
	done        bool
	departed    bool
}

// NewRoom is exported for registry implementations that seed rooms.
func NewRoom(id string) *Room {
	return &Room{
		id:        id,
		lobbyOpen: true,
		progress:  make(map[string]*progress),
	}
}

func (r *Room) ID() string { return r.id }

// ProgressSnapshot exposes a copy of one participant's progress record.
func (r *Room) ProgressSnapshot(userID string) (domain.ParticipantProgress, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.progress[userID]
	if !ok {
		return domain.ParticipantProgress{}, false
	}
	return domain.ParticipantProgress{
		CurrentIndex: p.index,
		Score:        p.score,
		Submissions:  append([]domain.Submission(nil), p.submissions...),
		Done:         p.done,
	}, true
}

// IsEmpty reports whether the room has no connected participants.
func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.roster) == 0
}

func (r *Room) activeLocked() bool {
	return !r.lobbyOpen && !r.completed
}

func (r *Room) joinLocked(userID string) {
	for _, member := range r.roster {
		if member == userID {
			return
		}
	}
	r.roster = append(r.roster, userID)
	if r.admin == "" {
		r.admin = userID
	}
}

// leaveLocked removes the participant and, when the departer was admin,
// promotes the next roster member in insertion order.
func (r *Room) leaveLocked(userID string) {
	for i, member := range r.roster {
		if member == userID {
			r.roster = append(r.roster[:i], r.roster[i+1:]...)
			break
		}
	}
	if r.admin == userID {
		r.admin = ""
		if len(r.roster) > 0 {
			r.admin = r.roster[0]
		}
	}
}

// startLocked assigns the question sequence, closes the lobby, and creates a
// zeroed progress record for every current roster member. Callers validate
// admin identity and non-empty questions first; this mutates only on success.
func (r *Room) startLocked(questions []domain.Question) {
	r.questions = questions
	r.lobbyOpen = false
	r.startRoster = append([]string(nil), r.roster...)
	for _, member := range r.roster {
		r.progress[member] = &progress{}
	}
}

// allActiveDoneLocked reports whether every participant still in the
// completion quorum (present at start, not departed) has finished.
func (r *Room) allActiveDoneLocked() bool {
	if len(r.progress) == 0 {
		return false
	}
	for _, p := range r.progress {
		if !p.departed && !p.done {
			return false
		}
	}
	return true
}

// leaderboardLocked ranks every progress record (departed included) by score
// descending; ties keep the challenge-start roster order. Ranks are 1-based.
func (r *Room) leaderboardLocked() domain.ChallengeResult {
	entries := make([]domain.LeaderboardEntry, 0, len(r.startRoster))
	for _, member := range r.startRoster {
		p, ok := r.progress[member]
		if !ok {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{Username: member, Score: p.score})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	finalScores := make(map[string]int, len(entries))
	for i := range entries {
		entries[i].Rank = i + 1
		finalScores[entries[i].Username] = entries[i].Score
	}
	return domain.ChallengeResult{Leaderboard: entries, FinalScores: finalScores}
}

func (r *Room) lobbyStateLocked() domain.LobbyState {
	return domain.LobbyState{
		Admin:        r.admin,
		Participants: append([]string(nil), r.roster...),
		LobbyOpen:    r.lobbyOpen,
	}
}

func (r *Room) snapshotLocked() domain.RoomSnapshot {
	return domain.RoomSnapshot{
		RoomID:       r.id,
		Admin:        r.admin,
		Participants: append([]string(nil), r.roster...),
		LobbyOpen:    r.lobbyOpen,
	}
}
