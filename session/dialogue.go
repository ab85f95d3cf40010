// Package session runs conversations for connected users: one Dialogue per
// user, websocket client sessions and the Manager that owns them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/room4-2/tablefinder/dialog"
	"github.com/room4-2/tablefinder/messages"
)

// ErrClassification wraps classifier failures. The conversation is left
// unchanged when it is returned.
var ErrClassification = errors.New("failed to classify utterance")

// Assistant bundles what every Dialogue shares.
type Assistant struct {
	Machine    *dialog.Machine
	Classifier dialog.Classifier
	Phrasing   *messages.Registry
	Style      messages.Style
}

// Exchange is the outcome of one user utterance
type Exchange struct {
	Act   dialog.Act
	Reply dialog.Reply
	Lines []string
	State dialog.State
}

// Dialogue is one user's conversation. It is safe for concurrent use;
// utterances are applied one at a time.
type Dialogue struct {
	ID           string
	CreatedAt    time.Time
	LastActivity time.Time

	assistant    *Assistant
	conversation dialog.Conversation
	transcript   *Transcript
	logger       *zap.Logger
	mu           sync.Mutex
}

// NewDialogue creates a conversation in the welcome state
func NewDialogue(id string, assistant *Assistant, maxTurns int, logger *zap.Logger) *Dialogue {
	if logger == nil {
		logger = zap.NewNop()
	}
	conversation, _ := assistant.Machine.Start()
	now := time.Now()
	return &Dialogue{
		ID:           id,
		CreatedAt:    now,
		LastActivity: now,
		assistant:    assistant,
		conversation: conversation,
		transcript:   NewTranscript(maxTurns),
		logger:       logger.With(zap.String("session", shortID(id))),
	}
}

// Welcome returns the opening lines and records them
func (d *Dialogue) Welcome() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.welcomeLocked()
}

func (d *Dialogue) welcomeLocked() []string {
	_, reply := d.assistant.Machine.Start()
	lines := d.assistant.Phrasing.RenderReply(reply, d.assistant.Style)
	d.recordSystem(lines)
	return lines
}

// Handle classifies utterance and advances the conversation
func (d *Dialogue) Handle(ctx context.Context, utterance string) (Exchange, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.LastActivity = time.Now()

	act, err := d.assistant.Classifier.Classify(ctx, utterance)
	if err != nil {
		d.logger.Error("❌ Classification failed", zap.Error(err))
		return Exchange{State: d.conversation.State}, fmt.Errorf("%w: %w", ErrClassification, err)
	}
	d.transcript.Append(Turn{Speaker: SpeakerUser, Text: utterance, Act: act.String()})

	next, reply, err := d.assistant.Machine.Advance(d.conversation, act, utterance)
	if err != nil {
		d.logger.Error("❌ Dialog step failed", zap.String("act", act.String()), zap.Error(err))
		return Exchange{Act: act, State: d.conversation.State}, err
	}

	d.logger.Debug("💬 Turn handled",
		zap.String("act", act.String()),
		zap.Stringer("from", d.conversation.State),
		zap.Stringer("to", next.State),
		zap.Int("messages", len(reply.Messages)),
	)
	d.conversation = next

	lines := d.assistant.Phrasing.RenderReply(reply, d.assistant.Style)
	d.recordSystem(lines)
	return Exchange{Act: act, Reply: reply, Lines: lines, State: next.State}, nil
}

// Restart discards the conversation and its transcript and returns the
// welcome lines
func (d *Dialogue) Restart() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	conversation, _ := d.assistant.Machine.Start()
	d.conversation = conversation
	d.LastActivity = time.Now()
	d.transcript.Clear()

	d.logger.Info("🔄 Conversation restarted")
	return d.welcomeLocked()
}

// RestartAllowed reports whether Restart may be offered to the user
func (d *Dialogue) RestartAllowed() bool {
	return d.assistant.Machine.RestartAllowed()
}

// Conversation returns the current conversation
func (d *Dialogue) Conversation() dialog.Conversation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conversation
}

// Transcript returns the recorded turns
func (d *Dialogue) Transcript() []Turn {
	return d.transcript.Turns()
}

// Done reports whether the conversation has ended
func (d *Dialogue) Done() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conversation.Done()
}

// IdleSince returns the time of the last handled utterance
func (d *Dialogue) IdleSince() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.LastActivity
}

func (d *Dialogue) recordSystem(lines []string) {
	for _, line := range lines {
		d.transcript.Append(Turn{Speaker: SpeakerSystem, Text: line})
	}
}

// Snapshot is the conversation summary mirrored to Redis
type Snapshot struct {
	State       string `json:"state"`
	Area        string `json:"area"`
	Cuisine     string `json:"food"`
	PriceRange  string `json:"pricerange"`
	Requirement string `json:"requirement"`
	Chosen      string `json:"chosen,omitempty"`
	Turns       int    `json:"turns"`
	Dropped     int    `json:"dropped_turns,omitempty"`
}

// Snapshot summarises the conversation
func (d *Dialogue) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	c := d.conversation
	s := Snapshot{
		State:       c.State.String(),
		Area:        c.Preferences.Area.String(),
		Cuisine:     c.Preferences.Cuisine.String(),
		PriceRange:  c.Preferences.PriceRange.String(),
		Requirement: c.Preferences.Requirement.String(),
		Turns:       d.transcript.Len(),
		Dropped:     d.transcript.Dropped(),
	}
	if c.Chosen != nil {
		s.Chosen = c.Chosen.Name
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
