package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/suiscan-ai/suiscan/internal/api/middlewares"
	"github.com/suiscan-ai/suiscan/internal/core"
	"github.com/suiscan-ai/suiscan/internal/services"
)

type ChatHandler struct {
	chats *services.ChatService
	log   *logrus.Logger
}

func NewChatHandler(chats *services.ChatService, log *logrus.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, log: log}
}

type chatRequestBody struct {
	Messages []core.ChatTurn `json:"messages"`
	ChatID   string          `json:"chatId"`
	TxDigest string          `json:"txDigest"`
	GuestID  string          `json:"guestId"`
}

// Chat handles POST /chat. The answer is streamed as plain text; X-Chat-Id and
// X-Remaining go out with the first chunk, so any error surfaced before the
// stream starts is still a clean JSON response.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var body chatRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}
	if len(body.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "Messages are required")
		return
	}

	req := services.ChatRequest{
		Messages: body.Messages,
		ChatID:   body.ChatID,
		TxDigest: body.TxDigest,
		GuestID:  body.GuestID,
	}
	if claims := middleware.SessionFromContext(r.Context()); claims != nil {
		req.UserID = claims.UserID
	}

	flusher, _ := w.(http.Flusher)
	streaming := false

	onStart := func(chatID string, remaining int) error {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Chat-Id", chatID)
		w.Header().Set("X-Remaining", strconv.Itoa(remaining))
		w.WriteHeader(http.StatusOK)
		streaming = true
		return nil
	}
	onDelta := func(chunk string) error {
		if _, err := w.Write([]byte(chunk)); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	err := h.chats.Answer(r.Context(), req, onStart, onDelta)
	if err == nil {
		return
	}

	var quotaErr *services.QuotaExceededError
	if errors.As(err, &quotaErr) {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":        "Usage limit reached",
			"requiresAuth": quotaErr.RequiresAuth,
		})
		return
	}

	h.log.WithError(err).Error("chat pipeline failed")
	if streaming {
		// Headers are gone; the best we can do is cut the stream short.
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to generate response")
}
