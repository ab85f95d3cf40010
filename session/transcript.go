package session

import (
	"sync"
	"time"
)

// Speakers recorded in a transcript
const (
	SpeakerUser   = "user"
	SpeakerSystem = "system"
)

// Turn is one line of a conversation
type Turn struct {
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	Act     string    `json:"act,omitempty"`
	At      time.Time `json:"at"`
}

// Transcript keeps the most recent turns of a conversation. Once full, the
// oldest turn is dropped for each new one.
type Transcript struct {
	turns    []Turn
	maxTurns int
	dropped  int
	mu       sync.Mutex
}

// NewTranscript creates a transcript holding at most maxTurns turns
func NewTranscript(maxTurns int) *Transcript {
	if maxTurns <= 0 {
		maxTurns = 1
	}
	return &Transcript{
		turns:    make([]Turn, 0),
		maxTurns: maxTurns,
	}
}

// MaxTurns returns the transcript capacity
func (t *Transcript) MaxTurns() int {
	return t.maxTurns
}

// Append records a turn
func (t *Transcript) Append(turn Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if turn.At.IsZero() {
		turn.At = time.Now()
	}
	if len(t.turns) == t.maxTurns {
		copy(t.turns, t.turns[1:])
		t.turns = t.turns[:len(t.turns)-1]
		t.dropped++
	}
	t.turns = append(t.turns, turn)
}

// Turns returns a copy of the recorded turns, oldest first
func (t *Transcript) Turns() []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Clear empties the transcript
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.turns = make([]Turn, 0)
	t.dropped = 0
}

// Len returns the number of turns held
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.turns)
}

// Dropped returns how many turns were evicted since the last Clear
func (t *Transcript) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}
