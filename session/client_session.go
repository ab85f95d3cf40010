package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/room4-2/tablefinder/messages"
)

const (
	writeBufferSize = 256
	writeTimeout    = 10 * time.Second
	maxMessageSize  = 16 * 1024
)

// ClientSession represents a single websocket chat connection
type ClientSession struct {
	ID           string
	ClientConn   *websocket.Conn
	Dialogue     *Dialogue
	Debug        bool
	KeepAlive    time.Duration // Ping interval; zero disables pings
	CreatedAt    time.Time
	LastActivity time.Time

	// OnTurn runs after every handled utterance
	OnTurn func(cs *ClientSession)

	// Use channels for non-blocking writes
	writeChan chan any

	logger    *zap.Logger
	mu        sync.RWMutex
	closed    bool
	CloseChan chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClientSession wraps a websocket connection around a new Dialogue
func NewClientSession(ctx context.Context, id string, clientConn *websocket.Conn, dialogue *Dialogue, logger *zap.Logger) *ClientSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)

	clientConn.SetReadLimit(maxMessageSize)

	return &ClientSession{
		ID:           id,
		ClientConn:   clientConn,
		Dialogue:     dialogue,
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
		writeChan:    make(chan any, writeBufferSize),
		logger:       logger.With(zap.String("session", shortID(id))),
		CloseChan:    make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start begins the bidirectional message handling
func (cs *ClientSession) Start() {
	go cs.writePump()
	cs.queueMessage(messages.NewStatusMessage(cs.ID, messages.StatusConnected, "Session established"))
	cs.queueLines(cs.Dialogue.Welcome(), "", "")
	go cs.handleClientMessages()
}

func (cs *ClientSession) writePump() {
	defer func() {
		cs.ClientConn.SetWriteDeadline(time.Now().Add(writeTimeout))
		cs.ClientConn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		cs.ClientConn.Close()
	}()

	var keepAlive <-chan time.Time
	if cs.KeepAlive > 0 {
		ticker := time.NewTicker(cs.KeepAlive)
		defer ticker.Stop()
		keepAlive = ticker.C
	}

	for {
		select {
		case <-cs.CloseChan:
			return
		case <-keepAlive:
			if err := cs.ClientConn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				cs.logger.Debug("Keepalive ping failed", zap.Error(err))
				return
			}
		case msg := <-cs.writeChan:
			if err := cs.write(msg); err != nil {
				return
			}

			// Drain whatever queued up meanwhile
			n := len(cs.writeChan)
			for i := 0; i < n; i++ {
				select {
				case msg := <-cs.writeChan:
					if err := cs.write(msg); err != nil {
						return
					}
				default:
				}
			}
		}
	}
}

func (cs *ClientSession) write(msg any) error {
	data, err := sonic.Marshal(msg)
	if err != nil {
		cs.logger.Error("❌ Failed to encode message", zap.Error(err))
		return nil
	}
	cs.ClientConn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return cs.ClientConn.WriteMessage(websocket.TextMessage, data)
}

func (cs *ClientSession) queueMessage(msg any) {
	cs.mu.RLock()
	closed := cs.closed
	cs.mu.RUnlock()
	if closed {
		return
	}
	select {
	case cs.writeChan <- msg:
		cs.touch()
	case <-cs.CloseChan:
	default:
		cs.logger.Warn("⚠️ Write queue full, dropping message")
	}
}

func (cs *ClientSession) queueLines(lines []string, act, state string) {
	for _, line := range lines {
		if cs.Debug {
			cs.queueMessage(messages.NewDebugTextMessage(cs.ID, line, act, state))
		} else {
			cs.queueMessage(messages.NewTextMessage(cs.ID, line))
		}
	}
}

func (cs *ClientSession) touch() {
	cs.mu.Lock()
	cs.LastActivity = time.Now()
	cs.mu.Unlock()
}

// IdleSince returns the last time a message went either way
func (cs *ClientSession) IdleSince() time.Time {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.LastActivity
}

// Close ends the session and its connection
func (cs *ClientSession) Close() error {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return nil
	}
	cs.closed = true
	cs.mu.Unlock()

	cs.cancel()
	close(cs.CloseChan)

	if cs.ClientConn != nil {
		// Unblock the reader; the write pump closes the connection
		cs.ClientConn.SetReadDeadline(time.Now())
	}
	return nil
}

// IsClosed reports whether Close was called
func (cs *ClientSession) IsClosed() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.closed
}

func (cs *ClientSession) handleClientMessages() {
	defer cs.Close()

	for {
		select {
		case <-cs.CloseChan:
			return
		default:
			messageType, message, err := cs.ClientConn.ReadMessage()
			if err != nil {
				if !cs.IsClosed() && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					cs.logger.Warn("❌ WebSocket read error", zap.Error(err))
				}
				return
			}

			cs.touch()

			if messageType == websocket.BinaryMessage {
				cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Binary messages are not supported"))
				continue
			}

			var clientMsg messages.ClientMessage
			if err := sonic.Unmarshal(message, &clientMsg); err != nil {
				cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Invalid message format"))
				continue
			}

			cs.processClientMessage(&clientMsg)
		}
	}
}

func (cs *ClientSession) processClientMessage(msg *messages.ClientMessage) {
	switch msg.Type {
	case messages.TypeUtterance:
		var payload messages.UtterancePayload
		if err := sonic.Unmarshal(msg.Payload, &payload); err != nil || strings.TrimSpace(payload.Text) == "" {
			cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Invalid utterance payload"))
			return
		}
		cs.handleUtterance(payload.Text)

	case messages.TypeControl:
		var payload messages.ControlPayload
		if err := sonic.Unmarshal(msg.Payload, &payload); err != nil {
			cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Invalid control payload"))
			return
		}
		cs.handleControlMessage(&payload)

	default:
		cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Unknown message type: "+msg.Type))
	}
}

func (cs *ClientSession) handleUtterance(text string) {
	if cs.Dialogue.Done() {
		cs.queueMessage(messages.NewStatusMessage(cs.ID, messages.StatusEnded, "Conversation has ended"))
		return
	}

	cs.logger.Debug("🗣️ Utterance received", zap.String("text", text))
	exchange, err := cs.Dialogue.Handle(cs.ctx, text)
	if err != nil {
		code := messages.ErrCodeSessionFailed
		if errors.Is(err, ErrClassification) {
			code = messages.ErrCodeClassifierError
		}
		cs.queueMessage(messages.NewErrorMessage(cs.ID, code, err.Error()))
		return
	}

	cs.queueLines(exchange.Lines, exchange.Act.String(), exchange.State.String())
	cs.queueMessage(messages.NewStatusMessage(cs.ID, messages.StatusTurnComplete, ""))
	if exchange.State.Terminal() {
		cs.queueMessage(messages.NewStatusMessage(cs.ID, messages.StatusEnded, "Conversation has ended"))
	}

	if cs.OnTurn != nil {
		cs.OnTurn(cs)
	}
}

func (cs *ClientSession) handleControlMessage(payload *messages.ControlPayload) {
	switch payload.Action {
	case messages.ActionPing:
		cs.queueMessage(messages.NewStatusMessage(cs.ID, messages.StatusPong, ""))
	case messages.ActionRestart:
		if !cs.Dialogue.RestartAllowed() {
			cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeConfigError, "Restarting is disabled"))
			return
		}
		cs.queueLines(cs.Dialogue.Restart(), "", "")
		cs.queueMessage(messages.NewStatusMessage(cs.ID, messages.StatusTurnComplete, ""))
	case messages.ActionEnd:
		cs.logger.Info("👋 Client ended the session")
		cs.Close()
	default:
		cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Unknown control action: "+payload.Action))
	}
}
