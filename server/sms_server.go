package server

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/room4-2/tablefinder/config"
	"github.com/room4-2/tablefinder/messages"
	"github.com/room4-2/tablefinder/session"
)

const (
	busyReply  = "Sorry, we are helping too many people right now. Please try again in a few minutes."
	errorReply = "Sorry, something went wrong on our side. Could you say that again?"
)

// SMSServer answers the Twilio messaging webhook. Each sender number has
// its own conversation.
type SMSServer struct {
	httpServer     *http.Server
	sessionManager *session.Manager
	config         *config.Config
	logger         *zap.Logger
}

func NewSMSServer(cfg *config.Config, sessionManager *session.Manager, logger *zap.Logger) *SMSServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SMSServer{
		sessionManager: sessionManager,
		config:         cfg,
		logger:         logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/sms", s.handleSMS)
	mux.HandleFunc("/health", s.handleHealth)

	// Determine which port to use
	port := cfg.TwilioPort
	if cfg.ServerType == "twilio" {
		// When running as standalone SMS server, use the main port
		port = cfg.Port
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler serving /sms and /health
func (s *SMSServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// GetAddr returns the server's listen address
func (s *SMSServer) GetAddr() string {
	return s.httpServer.Addr
}

// Start begins listening for webhooks
func (s *SMSServer) Start() error {
	s.logger.Info("📱 SMS webhook server starting", zap.String("addr", s.httpServer.Addr))
	s.logger.Info(fmt.Sprintf("📡 SMS endpoint: http://localhost%s/sms", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *SMSServer) Shutdown(ctx context.Context) error {
	s.logger.Info("🛑 Shutting down SMS server...")
	return s.httpServer.Shutdown(ctx)
}

func (s *SMSServer) handleSMS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	from := strings.TrimSpace(r.PostForm.Get("From"))
	body := strings.TrimSpace(r.PostForm.Get("Body"))
	if from == "" {
		http.Error(w, "missing From", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	logger := s.logger.With(zap.String("from", from))

	d, created, err := s.sessionManager.Dialogue(ctx, from)
	if err != nil {
		if errors.Is(err, session.ErrMaxSessions) {
			logger.Warn("⚠️ Session limit reached")
			s.reply(w, busyReply)
			return
		}
		logger.Error("❌ Failed to open dialogue", zap.Error(err))
		s.reply(w, errorReply)
		return
	}

	var lines []string
	if created {
		logger.Info("📱 New SMS conversation")
		lines = append(lines, d.Welcome()...)
	}

	if body != "" {
		exchange, err := d.Handle(ctx, body)
		if err != nil {
			logger.Error("❌ Failed to handle SMS", zap.Error(err))
			lines = append(lines, errorReply)
		} else {
			lines = append(lines, exchange.Lines...)
		}
		s.sessionManager.RecordTurn(ctx, from)
	}

	s.reply(w, lines...)
}

func (s *SMSServer) reply(w http.ResponseWriter, lines ...string) {
	out, err := xml.Marshal(messages.NewTwiMLResponse(lines...))
	if err != nil {
		http.Error(w, "failed to encode reply", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}

func (s *SMSServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","server":"sms","sessions":%d}`, s.sessionManager.GetActiveSessionCount())
}
