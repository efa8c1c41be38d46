package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/suiscan-ai/suiscan/internal/core/suiclient"
	"github.com/suiscan-ai/suiscan/internal/services"
)

const addressListingLimit = 20

type TransactionHandler struct {
	txs *services.TransactionService
	log *logrus.Logger
}

func NewTransactionHandler(txs *services.TransactionService, log *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{txs: txs, log: log}
}

// Lookup handles GET /transaction?digest=|address=. Exactly one of the two
// parameters selects the mode.
func (h *TransactionHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	digest := r.URL.Query().Get("digest")
	address := r.URL.Query().Get("address")

	switch {
	case digest != "":
		h.byDigest(w, r, digest)
	case address != "":
		h.byAddress(w, r, address)
	default:
		writeError(w, http.StatusBadRequest, "Digest or address is required")
	}
}

func (h *TransactionHandler) byDigest(w http.ResponseWriter, r *http.Request, digest string) {
	if !suiclient.IsValidDigest(digest) {
		writeError(w, http.StatusBadRequest, "Invalid transaction digest")
		return
	}

	record, block, err := h.txs.GetOrFetch(r.Context(), digest)
	if err != nil {
		h.log.WithError(err).WithField("digest", digest).Error("transaction lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to load transaction")
		return
	}

	explanation := record.Explanation
	if explanation == "" && r.URL.Query().Get("explain") == "true" {
		if explanation, err = h.txs.Explain(r.Context(), digest); err != nil {
			h.log.WithError(err).WithField("digest", digest).Error("transaction explanation failed")
			writeError(w, http.StatusInternalServerError, "Failed to explain transaction")
			return
		}
	}

	body := map[string]interface{}{
		"transaction": record,
		"type":        services.Classify(block),
		"context":     services.Summarize(block),
	}
	if explanation != "" {
		body["explanation"] = explanation
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *TransactionHandler) byAddress(w http.ResponseWriter, r *http.Request, address string) {
	if !suiclient.IsValidAddress(address) {
		writeError(w, http.StatusBadRequest, "Invalid Sui address")
		return
	}

	entries, err := h.txs.ListByAddress(r.Context(), address, addressListingLimit)
	if err != nil {
		h.log.WithError(err).WithField("address", address).Error("address listing failed")
		writeError(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":      address,
		"transactions": entries,
	})
}
