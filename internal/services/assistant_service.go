package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"pecunia-backend/internal/formatter"
	"pecunia-backend/internal/gateway"
	"pecunia-backend/internal/intent"
	"pecunia-backend/internal/models"
	"pecunia-backend/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApologyText is the single message shown when an analysis call fails.
const ApologyText = "I'm having trouble processing your request right now. Please try again in a moment!"

const (
	chatHistoryTurns = 10
	notifyTimeout    = 5 * time.Second
)

// FailureNotifier is told about every failed analysis call.
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, sessionID uuid.UUID, err *gateway.Error) error
}

// Reply is the outcome of HandleMessage. Queued replies carry no message;
// the text was buffered for the cycle already running on the session.
type Reply struct {
	Queued  bool
	Message *models.Message
}

// AssistantService routes chat messages: classify, extract, dispatch,
// format, derive actions, append.
type AssistantService struct {
	sessions *session.Registry
	gateway  gateway.Gateway
	notifier FailureNotifier // optional
	logger   *zap.Logger

	// Queued inputs are drained in the background, detached from any request.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAssistantService creates a new AssistantService. notifier may be nil.
func NewAssistantService(sessions *session.Registry, gw gateway.Gateway, notifier FailureNotifier, logger *zap.Logger) *AssistantService {
	ctx, cancel := context.WithCancel(context.Background())
	return &AssistantService{
		sessions: sessions,
		gateway:  gw,
		notifier: notifier,
		logger:   logger.Named("router"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// HandleMessage runs one request cycle for text and returns its reply. If
// the session is busy the text is queued; inputs queued during a cycle are
// answered in submission order after the reply has been returned.
// Gateway failures never surface here; they become an apology message.
func (s *AssistantService) HandleMessage(ctx context.Context, sessionID uuid.UUID, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	if !sess.BeginCycle(text) {
		s.logger.Debug("session busy, input queued",
			zap.Stringer("session_id", sessionID),
			zap.Int("pending", sess.PendingCount()),
		)
		return &Reply{Queued: true}, nil
	}

	msg := s.runCycle(ctx, sess, text)
	s.drain(sess)
	return &Reply{Message: &msg}, nil
}

// drain releases the session, or hands its queued inputs to a background
// worker that keeps the session claimed until the queue is empty.
func (s *AssistantService) drain(sess *session.Session) {
	next, ok := sess.NextPending()
	if !ok {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for ok {
			s.runCycle(s.ctx, sess, next)
			next, ok = sess.NextPending()
		}
	}()
}

// Wait blocks until every background drain has finished.
func (s *AssistantService) Wait() {
	s.wg.Wait()
}

// Close cancels the context of background drains and waits for them.
func (s *AssistantService) Close() {
	s.cancel()
	s.wg.Wait()
}

// runCycle takes the session from Classifying to Appended (or Failed) and
// returns the assistant message it appended. The caller moves it back to Idle.
// A panic anywhere in the cycle is treated as a failed analysis call.
func (s *AssistantService) runCycle(ctx context.Context, sess *session.Session, text string) (msg models.Message) {
	category := models.CategoryGeneralChat
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("request cycle panicked",
				zap.Stringer("session_id", sess.ID()),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			msg = s.fail(ctx, sess, category, &gateway.Error{Category: category, Cause: fmt.Errorf("panic: %v", r)})
		}
	}()

	history := chatHistory(sess.Messages(), chatHistoryTurns)
	sess.SetState(session.StateClassifying)
	sess.AppendMessage(models.NewUserMessage(text, sess.Now()))

	category = intent.Classify(text)
	profile := sess.Profile()
	req := gateway.Request{Category: category, Profile: profile}

	if category.NeedsExtraction() {
		sess.SetState(session.StateExtracting)
		switch category {
		case models.CategoryTravelPlanning:
			payload := intent.ExtractTravel(text, profile)
			req.Travel = &payload
		case models.CategoryGoalStrategy:
			payload := intent.ExtractGoal(text, profile, sess.Now())
			req.Goal = &payload
		}
	}
	if category == models.CategoryGeneralChat {
		req.Chat = &models.ChatPayload{
			Message:     text,
			UserContext: models.ChatContext{Profile: profile, History: history},
		}
	}

	sess.SetState(session.StateDispatching)
	result, err := s.dispatch(ctx, sess, req)
	if err != nil {
		return s.fail(ctx, sess, category, err)
	}

	sess.SetState(session.StateFormatting)
	msg = models.Message{
		ID:           uuid.New(),
		Origin:       models.OriginAssistant,
		Body:         formatter.Format(result, category),
		CreatedAt:    sess.Now(),
		TaskCategory: category.Ptr(),
		QuickActions: formatter.DeriveActions(category, result),
	}
	if raw, err := json.Marshal(result); err == nil {
		msg.RawResult = raw
	} else {
		s.logger.Warn("failed to encode raw result", zap.String("category", string(category)), zap.Error(err))
	}

	sess.AppendMessage(msg)
	sess.SetState(session.StateAppended)
	sess.SetLastError(nil)
	return msg
}

// dispatch serves profile-driven categories through the session insight cache
// so chat and dashboard share results; the rest go straight to the gateway.
func (s *AssistantService) dispatch(ctx context.Context, sess *session.Session, req gateway.Request) (models.AnalysisResult, error) {
	if !req.Category.ProfileDriven() {
		return gateway.Dispatch(ctx, s.gateway, req)
	}
	ci, err := sess.GetOrFetchInsight(ctx, req.Category, func(ctx context.Context, snapshot models.Profile) (models.AnalysisResult, error) {
		return gateway.Dispatch(ctx, s.gateway, gateway.Request{Category: req.Category, Profile: snapshot})
	})
	if err != nil {
		return nil, err
	}
	return ci.Value, nil
}

func (s *AssistantService) fail(ctx context.Context, sess *session.Session, category models.TaskCategory, err error) (msg models.Message) {
	sess.SetState(session.StateFailed)
	msg = models.NewAssistantMessage(ApologyText, sess.Now())
	defer func() {
		// A panicking subscriber or notifier must not leave the session claimed.
		if r := recover(); r != nil {
			s.logger.Error("failure handling panicked", zap.Stringer("session_id", sess.ID()), zap.Any("panic", r))
		}
	}()

	gwErr, ok := gateway.AsError(err)
	if !ok {
		gwErr = &gateway.Error{Category: category, Cause: err}
	}
	s.logger.Error("analysis call failed",
		zap.Stringer("session_id", sess.ID()),
		zap.String("category", string(gwErr.Category)),
		zap.Int("status", gwErr.StatusCode),
		zap.Error(gwErr.Cause),
	)
	sess.SetLastError(gwErr)
	sess.AppendMessage(msg)

	if s.notifier != nil {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if nerr := s.notifier.NotifyFailure(nctx, sess.ID(), gwErr); nerr != nil {
			s.logger.Warn("failed to send failure alert", zap.Error(nerr))
		}
	}
	return msg
}

// chatHistory converts the tail of the log into chat context turns.
func chatHistory(msgs []models.Message, limit int) []models.ChatTurn {
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	turns := make([]models.ChatTurn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, models.ChatTurn{Origin: m.Origin, Body: m.Body})
	}
	return turns
}
