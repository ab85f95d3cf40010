package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/room4-2/tablefinder/config"
)

// ErrMaxSessions is returned when the session limit is reached
var ErrMaxSessions = errors.New("maximum sessions reached")

const (
	channelWebsocket = "websocket"
	channelSMS       = "sms"

	defaultCleanupInterval = time.Minute
	redisTimeout           = 2 * time.Second
)

// Manager owns every live conversation: websocket sessions keyed by uuid
// and SMS dialogues keyed by the sender's number.
type Manager struct {
	sessions  map[string]*ClientSession
	dialogues map[string]*Dialogue
	mu        sync.RWMutex
	redis     *redis.Client
	config    *config.Config
	assistant *Assistant
	logger    *zap.Logger
}

// NewManager creates a session manager with an optional Redis mirror
func NewManager(cfg *config.Config, assistant *Assistant, logger *zap.Logger) (*Manager, error) {
	if assistant == nil || assistant.Machine == nil || assistant.Classifier == nil || assistant.Phrasing == nil {
		return nil, fmt.Errorf("assistant is incomplete")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       0,
		})

		// Test Redis connection, continue without it when unavailable
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("⚠️ Redis unavailable, sessions stay in memory", zap.String("addr", cfg.RedisURL), zap.Error(err))
			redisClient.Close()
			redisClient = nil
		} else {
			logger.Info("✅ Connected to Redis", zap.String("addr", cfg.RedisURL))
		}
	}

	return &Manager{
		sessions:  make(map[string]*ClientSession),
		dialogues: make(map[string]*Dialogue),
		redis:     redisClient,
		config:    cfg,
		assistant: assistant,
		logger:    logger,
	}, nil
}

// CreateSession creates a new websocket chat session
func (sm *Manager) CreateSession(ctx context.Context, clientConn *websocket.Conn) (*ClientSession, error) {
	sm.mu.Lock()
	if sm.countLocked() >= sm.config.MaxSessions {
		sm.mu.Unlock()
		return nil, ErrMaxSessions
	}

	sessionID := uuid.New().String()
	dialogue := NewDialogue(sessionID, sm.assistant, sm.config.MaxTranscriptTurns, sm.logger)

	session := NewClientSession(ctx, sessionID, clientConn, dialogue, sm.logger)
	session.Debug = sm.config.Debug
	session.KeepAlive = sm.config.KeepAlivePeriod
	session.OnTurn = func(cs *ClientSession) {
		sm.mirror(context.Background(), "session:"+cs.ID, channelWebsocket, cs.Dialogue)
	}
	sm.sessions[sessionID] = session
	sm.mu.Unlock()

	sm.mirror(ctx, "session:"+sessionID, channelWebsocket, dialogue)
	return session, nil
}

// Dialogue returns the SMS conversation for key, starting a new one when
// none exists or the previous one has ended. created reports a new one.
func (sm *Manager) Dialogue(ctx context.Context, key string) (d *Dialogue, created bool, err error) {
	sm.mu.Lock()
	if existing, ok := sm.dialogues[key]; ok {
		if !existing.Done() {
			sm.mu.Unlock()
			return existing, false, nil
		}
		delete(sm.dialogues, key)
	}

	if sm.countLocked() >= sm.config.MaxSessions {
		sm.mu.Unlock()
		return nil, false, ErrMaxSessions
	}

	d = NewDialogue(key, sm.assistant, sm.config.MaxTranscriptTurns, sm.logger)
	sm.dialogues[key] = d
	sm.mu.Unlock()

	sm.mirror(ctx, "sms:"+key, channelSMS, d)
	return d, true, nil
}

// RecordTurn mirrors the SMS dialogue state after a handled message
func (sm *Manager) RecordTurn(ctx context.Context, key string) {
	sm.mu.RLock()
	d, ok := sm.dialogues[key]
	sm.mu.RUnlock()
	if ok {
		sm.mirror(ctx, "sms:"+key, channelSMS, d)
	}
}

// mirror writes the dialogue snapshot to Redis when connected
func (sm *Manager) mirror(ctx context.Context, key, channel string, d *Dialogue) {
	if sm.redis == nil {
		return
	}

	snapshot, err := sonic.MarshalString(d.Snapshot())
	if err != nil {
		sm.logger.Warn("⚠️ Failed to encode snapshot", zap.String("key", key), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), redisTimeout)
	defer cancel()

	_, err = sm.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"created_at":    d.CreatedAt.Format(time.RFC3339),
			"last_activity": d.IdleSince().Format(time.RFC3339),
			"status":        "active",
			"channel":       channel,
			"snapshot":      snapshot,
		})
		pipe.SAdd(ctx, "active_sessions", key)
		pipe.Expire(ctx, key, sm.config.SessionTimeout)
		return nil
	})
	if err != nil {
		sm.logger.Warn("⚠️ Failed to mirror session", zap.String("key", key), zap.Error(err))
	}
}

func (sm *Manager) forget(ctx context.Context, keys ...string) {
	if sm.redis == nil || len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), redisTimeout)
	defer cancel()

	members := make([]interface{}, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	_, err := sm.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.SRem(ctx, "active_sessions", members...)
		return nil
	})
	if err != nil {
		sm.logger.Warn("⚠️ Failed to forget sessions", zap.Strings("keys", keys), zap.Error(err))
	}
}

// RemoveSession cleans up and removes a websocket session
func (sm *Manager) RemoveSession(ctx context.Context, sessionID string) error {
	sm.mu.Lock()
	session, exists := sm.sessions[sessionID]
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()

	if !exists {
		return nil
	}
	session.Close()
	sm.forget(ctx, "session:"+sessionID)
	return nil
}

// RemoveDialogue drops the SMS conversation for key
func (sm *Manager) RemoveDialogue(ctx context.Context, key string) {
	sm.mu.Lock()
	_, exists := sm.dialogues[key]
	delete(sm.dialogues, key)
	sm.mu.Unlock()

	if exists {
		sm.forget(ctx, "sms:"+key)
	}
}

// GetActiveSessionCount returns the number of live conversations
func (sm *Manager) GetActiveSessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.countLocked()
}

func (sm *Manager) countLocked() int {
	return len(sm.sessions) + len(sm.dialogues)
}

// CleanupInactiveSessions removes conversations idle longer than the
// session timeout
func (sm *Manager) CleanupInactiveSessions(ctx context.Context) {
	now := time.Now()
	var (
		stale []*ClientSession
		keys  []string
	)

	sm.mu.Lock()
	for id, session := range sm.sessions {
		if now.Sub(session.IdleSince()) > sm.config.SessionTimeout {
			stale = append(stale, session)
			delete(sm.sessions, id)
			keys = append(keys, "session:"+id)
		}
	}
	for key, d := range sm.dialogues {
		if now.Sub(d.IdleSince()) > sm.config.SessionTimeout {
			delete(sm.dialogues, key)
			keys = append(keys, "sms:"+key)
		}
	}
	sm.mu.Unlock()

	for _, session := range stale {
		session.Close()
	}
	sm.forget(ctx, keys...)
	if len(keys) > 0 {
		sm.logger.Info("🧹 Removed inactive sessions", zap.Int("count", len(keys)))
	}
}

// StartCleanupRoutine runs CleanupInactiveSessions every interval until ctx
// is done. A zero interval means one minute.
func (sm *Manager) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sm.CleanupInactiveSessions(ctx)
		}
	}
}

// Shutdown closes all sessions
func (sm *Manager) Shutdown() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for id, session := range sm.sessions {
		session.Close()
		delete(sm.sessions, id)
	}
	for key := range sm.dialogues {
		delete(sm.dialogues, key)
	}

	if sm.redis != nil {
		sm.redis.Close()
	}
}
