package domain

import "errors"

var (
	// ErrUnknownRoom is returned when an event targets a room id with no registry entry.
	ErrUnknownRoom = errors.New("unknown room")
	// ErrNotAdmin is returned when a non-admin tries to start a challenge.
	ErrNotAdmin = errors.New("only the room admin can start a challenge")
	// ErrNoQuestionsAvailable indicates the topic/difficulty filter matched nothing.
	ErrNoQuestionsAvailable = errors.New("no questions found for the selected topic and difficulty")
	// ErrNoActiveChallenge is returned when submitting against a room still in lobby or already completed.
	ErrNoActiveChallenge = errors.New("no active challenge for this room")
	// ErrChallengeActive is returned when starting a challenge in a room that already left the lobby.
	ErrChallengeActive = errors.New("challenge already started for this room")
	// ErrUnknownParticipant indicates the event references a participant without a progress record.
	ErrUnknownParticipant = errors.New("participant not found in room")
)
