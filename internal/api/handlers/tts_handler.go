package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/suiscan-ai/suiscan/internal/core"
	"github.com/suiscan-ai/suiscan/internal/core/tts"
)

type TtsHandler struct {
	speech core.SpeechSynthesizer
	log    *logrus.Logger
}

func NewTtsHandler(speech core.SpeechSynthesizer, log *logrus.Logger) *TtsHandler {
	return &TtsHandler{speech: speech, log: log}
}

type ttsRequest struct {
	Text string `json:"text"`
}

// Synthesize handles POST /tts: redact unspeakable tokens, then stream the
// rendered audio straight through.
func (h *TtsHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}
	text := tts.PrepareTextForSpeech(req.Text)
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	if err := h.speech.Synthesize(r.Context(), text, w); err != nil {
		h.log.WithError(err).Error("speech synthesis failed")
		// The audio stream may be partially written; nothing to salvage.
	}
}
