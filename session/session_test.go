package session

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/room4-2/tablefinder/classifier"
	"github.com/room4-2/tablefinder/config"
	"github.com/room4-2/tablefinder/dialog"
	"github.com/room4-2/tablefinder/messages"
	"github.com/room4-2/tablefinder/restaurant"
)

var testCatalogue = []restaurant.Restaurant{
	{Name: "la margherita", Area: "west", Cuisine: "italian", PriceRange: "cheap",
		Phone: "01223 315232", Address: "15 magdalene street city centre", Postcode: "c.b 3",
		Quality: "good food", Crowdedness: "not busy", LengthOfStay: "long stay"},
	{Name: "royal spice", Area: "north", Cuisine: "indian", PriceRange: "cheap",
		Phone: "01733 553355", Address: "victoria avenue chesterton", Postcode: "c.b 4",
		Quality: "good food", Crowdedness: "busy", LengthOfStay: "long stay"},
}

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, string) (dialog.Act, error) {
	return dialog.ActNull, errors.New("model offline")
}

func newTestAssistant(t *testing.T) *Assistant {
	t.Helper()
	rules, err := restaurant.DefaultRules()
	require.NoError(t, err)
	keywords, err := classifier.DefaultKeywordRules()
	require.NoError(t, err)
	phrasing, err := messages.NewRegistry()
	require.NoError(t, err)

	return &Assistant{
		Machine:    dialog.NewMachine(testCatalogue, rules, dialog.Options{}),
		Classifier: classifier.AsClassifier(classifier.NewKeyword(keywords, "inform")),
		Phrasing:   phrasing,
		Style:      messages.Style{Formal: true},
	}
}

func newTestManager(t *testing.T, maxSessions int) *Manager {
	t.Helper()
	cfg := &config.Config{
		MaxSessions:        maxSessions,
		SessionTimeout:     time.Minute,
		MaxTranscriptTurns: 50,
	}
	m, err := NewManager(cfg, newTestAssistant(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(m.Shutdown)
	return m
}

func TestTranscriptKeepsMostRecentTurns(t *testing.T) {
	tr := NewTranscript(2)
	tr.Append(Turn{Speaker: SpeakerUser, Text: "one"})
	tr.Append(Turn{Speaker: SpeakerSystem, Text: "two"})
	tr.Append(Turn{Speaker: SpeakerUser, Text: "three"})

	turns := tr.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "two", turns[0].Text)
	assert.Equal(t, "three", turns[1].Text)
	assert.False(t, turns[1].At.IsZero())
	assert.Equal(t, 1, tr.Dropped())

	turns[0].Text = "changed"
	assert.Equal(t, "two", tr.Turns()[0].Text)

	tr.Clear()
	assert.Zero(t, tr.Len())
	assert.Zero(t, tr.Dropped())
	assert.Equal(t, 1, NewTranscript(0).MaxTurns())
}

func TestDialogueHandle(t *testing.T) {
	d := NewDialogue("abcdef0123456789", newTestAssistant(t), 50, nil)

	welcome := d.Welcome()
	require.Len(t, welcome, 1)
	assert.Contains(t, welcome[0], "welcome to the Cambridge restaurant system")

	ex, err := d.Handle(context.Background(), "cheap italian food in the west part of town")
	require.NoError(t, err)
	assert.Equal(t, dialog.ActInform, ex.Act)
	assert.Equal(t, dialog.AskAdditionalPreferences, ex.State)
	require.Len(t, ex.Lines, 1)
	assert.Contains(t, ex.Lines[0], "additional requirements")

	ex, err = d.Handle(context.Background(), "no")
	require.NoError(t, err)
	assert.Equal(t, dialog.ActNegate, ex.Act)
	assert.Equal(t, dialog.MakeSuggestion, ex.State)
	assert.Equal(t, "la margherita is a nice restaurant in the west part of town serving italian food in the cheap price range.", ex.Lines[0])

	snap := d.Snapshot()
	assert.Equal(t, Snapshot{
		State:       "make_suggestion",
		Area:        "west",
		Cuisine:     "italian",
		PriceRange:  "cheap",
		Requirement: "any",
		Chosen:      "la margherita",
		Turns:       5,
	}, snap)

	ex, err = d.Handle(context.Background(), "thank you goodbye")
	require.NoError(t, err)
	assert.Equal(t, dialog.Exit, ex.State)
	assert.True(t, d.Done())

	transcript := d.Transcript()
	assert.Equal(t, SpeakerSystem, transcript[0].Speaker)
	assert.Equal(t, SpeakerUser, transcript[1].Speaker)
	assert.Equal(t, "inform", transcript[1].Act)
}

func TestDialogueClassifierFailureKeepsState(t *testing.T) {
	a := newTestAssistant(t)
	a.Classifier = failingClassifier{}
	d := NewDialogue("id", a, 10, zap.NewNop())

	ex, err := d.Handle(context.Background(), "north")
	assert.ErrorIs(t, err, ErrClassification)
	assert.ErrorContains(t, err, "model offline")
	assert.Equal(t, dialog.Welcome, ex.State)
	assert.Equal(t, dialog.Welcome, d.Conversation().State)
	assert.Empty(t, d.Transcript())
}

func TestDialogueRestart(t *testing.T) {
	d := NewDialogue("id", newTestAssistant(t), 10, nil)
	_, err := d.Handle(context.Background(), "i want italian food")
	require.NoError(t, err)
	require.Equal(t, dialog.AskArea, d.Conversation().State)

	lines := d.Restart()
	require.Len(t, lines, 1)
	assert.Equal(t, dialog.Welcome, d.Conversation().State)
	assert.False(t, d.Conversation().Preferences.Cuisine.IsSet())

	transcript := d.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, lines[0], transcript[0].Text)
}

func TestDialogueSnapshotCountsDroppedTurns(t *testing.T) {
	d := NewDialogue("id", newTestAssistant(t), 2, nil)
	d.Welcome()
	_, err := d.Handle(context.Background(), "i want italian food")
	require.NoError(t, err)

	snap := d.Snapshot()
	assert.Equal(t, 2, snap.Turns)
	assert.Equal(t, 1, snap.Dropped)
}

func TestDialogueRestartIsAtomic(t *testing.T) {
	d := NewDialogue("id", newTestAssistant(t), 100, nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = d.Handle(context.Background(), "i want italian food")
		}()
		go func() {
			defer wg.Done()
			lines := d.Restart()
			assert.Len(t, lines, 1)
		}()
	}
	wg.Wait()

	// A restart always leaves its welcome right after the cleared history.
	transcript := d.Transcript()
	require.NotEmpty(t, transcript)
	assert.Equal(t, SpeakerSystem, transcript[0].Speaker)
	assert.Contains(t, transcript[0].Text, "welcome to the Cambridge restaurant system")
}

func TestNewManagerRejectsIncompleteAssistant(t *testing.T) {
	_, err := NewManager(&config.Config{}, &Assistant{}, nil)
	assert.Error(t, err)
}

func TestManagerDialogues(t *testing.T) {
	m := newTestManager(t, 1)
	ctx := context.Background()

	d, created, err := m.Dialogue(ctx, "+441223000000")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := m.Dialogue(ctx, "+441223000000")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, d, again)

	_, _, err = m.Dialogue(ctx, "+441223999999")
	assert.ErrorIs(t, err, ErrMaxSessions)
	assert.Equal(t, 1, m.GetActiveSessionCount())

	_, err = d.Handle(ctx, "bye")
	require.NoError(t, err)
	fresh, created, err := m.Dialogue(ctx, "+441223000000")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotSame(t, d, fresh)

	m.RemoveDialogue(ctx, "+441223000000")
	assert.Zero(t, m.GetActiveSessionCount())
}

func TestManagerCleanupRemovesIdleDialogues(t *testing.T) {
	m := newTestManager(t, 10)
	ctx := context.Background()

	idle, _, err := m.Dialogue(ctx, "idle")
	require.NoError(t, err)
	_, _, err = m.Dialogue(ctx, "active")
	require.NoError(t, err)

	idle.mu.Lock()
	idle.LastActivity = time.Now().Add(-2 * time.Minute)
	idle.mu.Unlock()

	m.CleanupInactiveSessions(ctx)
	assert.Equal(t, 1, m.GetActiveSessionCount())

	_, created, err := m.Dialogue(ctx, "active")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestCleanupRoutineStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m := newTestManager(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.StartCleanupRoutine(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop")
	}
}

// stallingRedis accepts connections and never answers, so every Redis call
// blocks until its context times out.
func stallingRedis(t *testing.T) (addr string, accepted <-chan struct{}) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ch := make(chan struct{}, 1)
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})
	return ln.Addr().String(), ch
}

func TestManagerMirrorsOutsideTheLock(t *testing.T) {
	addr, accepted := stallingRedis(t)
	m := newTestManager(t, 10)
	m.redis = redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, created, err := m.Dialogue(context.Background(), "+441223000000")
		assert.NoError(t, err)
		assert.True(t, created)
	}()

	select {
	case <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("manager never contacted redis")
	}

	start := time.Now()
	assert.Equal(t, 1, m.GetActiveSessionCount())
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	<-done
}
