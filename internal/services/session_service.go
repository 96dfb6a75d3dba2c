package services

import (
	"context"
	"fmt"
	"time"

	"pecunia-backend/internal/models"
	"pecunia-backend/internal/session"
	"pecunia-backend/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WelcomeText opens every new session.
const WelcomeText = "Hi! I'm Pecunia AI. I can help you with budgeting, investment advice, goal planning, and financial insights. What would you like to know?"

const archiveTimeout = 5 * time.Second

// SessionService handles session lifecycle and the transcript archive.
type SessionService struct {
	sessions *session.Registry
	store    store.Store
	logger   *zap.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions *session.Registry, store store.Store, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		store:    store,
		logger:   logger.Named("sessions"),
	}
}

// Start creates a session with the default profile, wires it to the archive
// and appends the welcome message.
func (s *SessionService) Start(ctx context.Context) (*models.StartSessionResponse, error) {
	sess := s.sessions.Create()
	if err := s.store.CreateTranscript(ctx, sess.ID(), sess.CreatedAt()); err != nil {
		_ = s.sessions.Delete(sess.ID())
		return nil, fmt.Errorf("failed to create transcript: %w", err)
	}
	s.attachArchive(sess)

	welcome := models.NewAssistantMessage(WelcomeText, sess.Now())
	sess.AppendMessage(welcome)

	s.logger.Info("session started", zap.Stringer("session_id", sess.ID()))
	return &models.StartSessionResponse{
		Session: toSessionResponse(sess),
		Welcome: welcome,
	}, nil
}

// attachArchive persists every appended message and marks the transcript
// ended when the session is torn down.
func (s *SessionService) attachArchive(sess *session.Session) {
	id := sess.ID()
	sess.Subscribe(func(msg models.Message) {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := s.store.AppendMessage(ctx, id, msg); err != nil {
			s.logger.Error("failed to archive message",
				zap.Stringer("session_id", id),
				zap.Stringer("message_id", msg.ID),
				zap.Error(err),
			)
		}
	})
	sess.OnClose(func(id uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := s.store.UpdateTranscriptStatus(ctx, id, models.TranscriptStatusEnded); err != nil {
			s.logger.Error("failed to mark transcript ended", zap.Stringer("session_id", id), zap.Error(err))
			return
		}
		s.logger.Info("session ended", zap.Stringer("session_id", id))
	})
}

// Get returns the dashboard view of a live session.
func (s *SessionService) Get(_ context.Context, sessionID uuid.UUID) (*models.SessionResponse, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	resp := toSessionResponse(sess)
	return &resp, nil
}

// Timeline returns the session's message log in insertion order.
func (s *SessionService) Timeline(_ context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return sess.Messages(), nil
}

// Subscribe streams future messages of a live session to fn. The returned
// channel is closed once the session is ended or evicted.
func (s *SessionService) Subscribe(_ context.Context, sessionID uuid.UUID, fn session.Subscriber) (unsubscribe func(), done <-chan struct{}, err error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return sess.Subscribe(fn), sess.Done(), nil
}

// End tears the session down. Its transcript stays in the archive.
func (s *SessionService) End(_ context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("failed to end session %s: %w", sessionID, err)
	}
	return nil
}

// EvictIdle ends every idle session inactive for longer than ttl.
func (s *SessionService) EvictIdle(ttl time.Duration) int {
	evicted := s.sessions.EvictIdle(ttl)
	if len(evicted) > 0 {
		s.logger.Info("evicted idle sessions", zap.Int("count", len(evicted)), zap.Duration("ttl", ttl))
	}
	return len(evicted)
}

// Transcript returns the archived log of a session, live or ended.
func (s *SessionService) Transcript(ctx context.Context, sessionID uuid.UUID) (*models.TranscriptResponse, error) {
	t, err := s.store.GetTranscript(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript %s: %w", sessionID, err)
	}
	msgs, err := t.DecodeMessages()
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcript messages: %w", err)
	}
	return &models.TranscriptResponse{
		SessionID: t.SessionID,
		Status:    t.Status,
		Messages:  msgs,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}, nil
}

// List returns archived transcript summaries, most recently updated first.
func (s *SessionService) List(ctx context.Context, limit, offset int) ([]models.TranscriptSummary, error) {
	summaries, err := s.store.ListTranscripts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	return summaries, nil
}

func toSessionResponse(sess *session.Session) models.SessionResponse {
	profile := sess.Profile()
	resp := models.SessionResponse{
		ID:           sess.ID(),
		Profile:      profile,
		NetWorth:     profile.NetWorth(),
		State:        string(sess.State()),
		Loading:      sess.Loading(),
		MessageCount: sess.MessageCount(),
		CreatedAt:    sess.CreatedAt(),
	}
	if err := sess.LastError(); err != nil {
		msg := err.Error()
		resp.LastError = &msg
	}
	return resp
}
