package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/suiscan-ai/suiscan/internal/api/middlewares"
	db "github.com/suiscan-ai/suiscan/internal/core/database"
)

const chatListLimit = 50

type ChatsHandler struct {
	dbclient db.DbClient
	log      *logrus.Logger
}

func NewChatsHandler(dbclient db.DbClient, log *logrus.Logger) *ChatsHandler {
	return &ChatsHandler{dbclient: dbclient, log: log}
}

// List handles GET /chats. Session required; newest-updated first.
func (h *ChatsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.SessionFromContext(r.Context())
	chats, err := h.dbclient.ListChatsByUser(r.Context(), claims.UserID, chatListLimit)
	if err != nil {
		h.log.WithError(err).Error("chat list failed")
		writeError(w, http.StatusInternalServerError, "Failed to load chats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"chats": chats})
}

// Delete handles DELETE /chats?id=. A chat the caller does not own looks
// exactly like a chat that does not exist.
func (h *ChatsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("id")
	if chatID == "" {
		writeError(w, http.StatusBadRequest, "Chat id is required")
		return
	}

	claims := middleware.SessionFromContext(r.Context())
	deleted, err := h.dbclient.DeleteChatOwned(r.Context(), chatID, claims.UserID)
	if err != nil {
		h.log.WithError(err).WithField("chat", chatID).Error("chat delete failed")
		writeError(w, http.StatusInternalServerError, "Failed to delete chat")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Chat not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Messages handles GET /chats/{id}/messages, ascending by creation time.
// Readable by the owning account, or by the guest whose guestId query
// parameter matches the chat's guest identifier.
func (h *ChatsHandler) Messages(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "id")

	chat, err := h.dbclient.GetChat(r.Context(), chatID)
	if err != nil {
		h.log.WithError(err).WithField("chat", chatID).Error("chat lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to load chat")
		return
	}
	if chat == nil {
		writeError(w, http.StatusNotFound, "Chat not found")
		return
	}

	claims := middleware.SessionFromContext(r.Context())
	switch {
	case chat.UserID != "":
		if claims == nil || claims.UserID != chat.UserID {
			writeError(w, http.StatusNotFound, "Chat not found")
			return
		}
	default:
		if r.URL.Query().Get("guestId") != chat.GuestID {
			writeError(w, http.StatusNotFound, "Chat not found")
			return
		}
	}

	messages, err := h.dbclient.ListMessagesByChat(r.Context(), chatID)
	if err != nil {
		h.log.WithError(err).WithField("chat", chatID).Error("message list failed")
		writeError(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}
