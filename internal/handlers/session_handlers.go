package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pecunia-backend/internal/models"
	"pecunia-backend/internal/services"
	"pecunia-backend/pkg/httputil"

	"go.uber.org/zap"
)

const (
	eventBuffer    = 32
	eventHeartbeat = 15 * time.Second
)

// SessionHandlers handles HTTP requests for sessions and their chat log.
type SessionHandlers struct {
	sessions  *services.SessionService
	assistant *services.AssistantService
	logger    *zap.Logger
}

// NewSessionHandlers creates a new SessionHandlers instance.
func NewSessionHandlers(sessions *services.SessionService, assistant *services.AssistantService, logger *zap.Logger) *SessionHandlers {
	return &SessionHandlers{
		sessions:  sessions,
		assistant: assistant,
		logger:    logger.Named("session_handlers"),
	}
}

// HandleCreateSession starts a session and returns it with the welcome message.
func (h *SessionHandlers) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	resp, err := h.sessions.Start(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "start session")
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, resp)
}

// HandleGetSession returns the dashboard view of a session.
func (h *SessionHandlers) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}
	resp, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get session")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleDeleteSession ends a session.
func (h *SessionHandlers) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}
	if err := h.sessions.End(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "end session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMessages returns the session's message log in order.
func (h *SessionHandlers) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}
	msgs, err := h.sessions.Timeline(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "list messages")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, msgs)
}

// HandleSendMessage routes a user message. It answers 200 with the assistant
// reply, or 202 when the session was busy and the text was queued.
func (h *SessionHandlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.assistant.HandleMessage(r.Context(), id, req.Text)
	if err != nil {
		respondServiceError(w, h.logger, err, "handle message")
		return
	}

	resp := models.ReplyResponse{Queued: reply.Queued, Message: reply.Message}
	if reply.Queued {
		httputil.RespondJSON(w, http.StatusAccepted, resp)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleEvents streams every message appended to the session as server-sent
// events until the client disconnects or the session ends. The end of a
// session is sent as a final "end" event.
func (h *SessionHandlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	events := make(chan models.Message, eventBuffer)
	unsubscribe, sessionDone, err := h.sessions.Subscribe(r.Context(), id, func(msg models.Message) {
		select {
		case events <- msg:
		default:
			h.logger.Warn("dropping event for slow subscriber", zap.Stringer("session_id", id), zap.Stringer("message_id", msg.ID))
		}
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "subscribe")
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(eventHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sessionDone:
			// Appends happen before Close, so anything still buffered goes first.
			for {
				select {
				case msg := <-events:
					if !h.writeEvent(w, msg) {
						return
					}
				default:
					fmt.Fprintf(w, "event: end\ndata: {\"session_id\":%q}\n\n", id.String())
					flusher.Flush()
					return
				}
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case msg := <-events:
			if !h.writeEvent(w, msg) {
				return
			}
		}
	}
}

// writeEvent sends msg as a "message" event and reports whether the client
// is still reachable.
func (h *SessionHandlers) writeEvent(w http.ResponseWriter, msg models.Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode event", zap.Error(err))
		return true
	}
	if _, err := fmt.Fprintf(w, "id: %s\nevent: message\ndata: %s\n\n", msg.ID, data); err != nil {
		return false
	}
	w.(http.Flusher).Flush()
	return true
}
