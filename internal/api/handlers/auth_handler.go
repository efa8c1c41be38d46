package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/suiscan-ai/suiscan/internal/api/middlewares"
	"github.com/suiscan-ai/suiscan/internal/auth"
	"github.com/suiscan-ai/suiscan/internal/config"
	"github.com/suiscan-ai/suiscan/internal/core"
	db "github.com/suiscan-ai/suiscan/internal/core/database"
	"github.com/suiscan-ai/suiscan/internal/models"
	"github.com/suiscan-ai/suiscan/internal/services"
)

type AuthHandler struct {
	dbclient db.DbClient
	accounts *services.AccountService
	sessions *auth.SessionAuthority
	verifier *auth.ZkLoginVerifier
	salts    core.SaltProvider
	cfg      *config.Config
	log      *logrus.Logger
}

func NewAuthHandler(dbclient db.DbClient, accounts *services.AccountService, sessions *auth.SessionAuthority, verifier *auth.ZkLoginVerifier, salts core.SaltProvider, cfg *config.Config, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		dbclient: dbclient,
		accounts: accounts,
		sessions: sessions,
		verifier: verifier,
		salts:    salts,
		cfg:      cfg,
		log:      log,
	}
}

type authRequest struct {
	Action    string `json:"action"`
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Message   string `json:"message"`
	JWT       string `json:"jwt"`
}

type userPayload struct {
	ID         string      `json:"id"`
	SuiAddress string      `json:"suiAddress"`
	Email      string      `json:"email,omitempty"`
	Name       string      `json:"name,omitempty"`
	Avatar     string      `json:"avatar,omitempty"`
	Plan       models.Plan `json:"plan"`
	DailyUsage int         `json:"dailyUsage"`
}

func toUserPayload(u *models.User) *userPayload {
	return &userPayload{
		ID:         u.ID,
		SuiAddress: u.SuiAddress,
		Email:      u.Email,
		Name:       u.Name,
		Avatar:     u.Avatar,
		Plan:       u.Plan,
		DailyUsage: u.DailyUsage,
	}
}

// Authenticate handles POST /auth, dispatching on the action tag.
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}

	switch req.Action {
	case "wallet-login":
		h.walletLogin(w, r, req)
	case "zklogin-init":
		h.zkLoginInit(w, r)
	case "zklogin-complete":
		h.zkLoginComplete(w, r, req)
	case "logout":
		h.sessions.Revoke(w)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h *AuthHandler) walletLogin(w http.ResponseWriter, r *http.Request, req authRequest) {
	if req.Address == "" || req.Signature == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Missing credentials")
		return
	}
	if err := auth.VerifyWalletLogin(req.Address, req.Message, req.Signature); err != nil {
		h.log.WithError(err).WithField("address", req.Address).Info("wallet login rejected")
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	user, _, err := h.accounts.FindOrCreate(r.Context(), req.Address, models.AuthMethodWallet, services.Profile{})
	if err != nil {
		h.log.WithError(err).Error("wallet login failed")
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}
	if _, err := h.sessions.Issue(w, user.ID, user.SuiAddress); err != nil {
		h.log.WithError(err).Error("session issue failed")
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    toUserPayload(user),
	})
}

func (h *AuthHandler) zkLoginInit(w http.ResponseWriter, r *http.Request) {
	if h.cfg.GoogleClientID == "" {
		writeError(w, http.StatusInternalServerError, "zkLogin not configured")
		return
	}
	session, err := auth.NewZkLoginSession(nowUnix())
	if err != nil {
		h.log.WithError(err).Error("zklogin init failed")
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}
	redirectURI := h.cfg.AppURL + "/auth/callback"
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authUrl": auth.GoogleAuthURL(h.cfg.GoogleClientID, session.Nonce, redirectURI),
		"session": session,
	})
}

func (h *AuthHandler) zkLoginComplete(w http.ResponseWriter, r *http.Request, req authRequest) {
	if req.JWT == "" {
		writeError(w, http.StatusBadRequest, "Missing JWT")
		return
	}
	if h.verifier == nil {
		writeError(w, http.StatusInternalServerError, "zkLogin not configured")
		return
	}

	claims, err := h.verifier.Verify(req.JWT)
	if err != nil {
		h.log.WithError(err).Info("zklogin token rejected")
		writeError(w, http.StatusUnauthorized, "Invalid identity token")
		return
	}

	salt, err := h.salts.GetSalt(r.Context(), req.JWT)
	if err != nil {
		h.log.WithError(err).Error("salt resolution failed")
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}
	address := auth.DeriveZkAddress(claims.Issuer, claims.Subject, salt)

	user, _, err := h.accounts.FindOrCreate(r.Context(), address, models.AuthMethodZkLogin, services.Profile{
		Email:  claims.Email,
		Name:   claims.Name,
		Avatar: claims.Picture,
	})
	if err != nil {
		h.log.WithError(err).Error("zklogin failed")
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}
	if _, err := h.sessions.Issue(w, user.ID, user.SuiAddress); err != nil {
		h.log.WithError(err).Error("session issue failed")
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    toUserPayload(user),
	})
}

// CurrentUser handles GET /auth: the fresh account behind the session cookie,
// or null for anonymous callers. This endpoint never errors to the client.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := middleware.SessionFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}
	user, err := h.dbclient.GetUserByID(r.Context(), claims.UserID)
	if err != nil || user == nil {
		if err != nil {
			h.log.WithError(err).Error("session user lookup failed")
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": toUserPayload(user)})
}

// Callback handles POST /auth/callback, the identity provider's form_post
// target. On success it serves a page that immediately re-posts the ID token
// to POST /auth so the session cookie is set first-party, then navigates home.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, h.cfg.AppURL+"/?error=invalid_callback", http.StatusSeeOther)
		return
	}
	if provErr := r.PostFormValue("error"); provErr != "" {
		h.log.WithField("error", provErr).Info("auth callback error")
		http.Redirect(w, r, h.cfg.AppURL+"/?error="+provErr, http.StatusSeeOther)
		return
	}
	idToken := r.PostFormValue("id_token")
	if idToken == "" {
		http.Redirect(w, r, h.cfg.AppURL+"/?error=missing_token", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, callbackHTML, idToken)
}

// CallbackError handles GET /auth/callback, used by the provider for errors
// and cancellations.
func (h *AuthHandler) CallbackError(w http.ResponseWriter, r *http.Request) {
	if provErr := r.URL.Query().Get("error"); provErr != "" {
		http.Redirect(w, r, h.cfg.AppURL+"/?error="+provErr, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, h.cfg.AppURL+"/", http.StatusSeeOther)
}

const callbackHTML = `<!DOCTYPE html>
<html>
  <head>
    <title>Completing Sign In...</title>
    <script>
      async function completeLogin() {
        try {
          const res = await fetch('/auth', {
            method: 'POST',
            headers: { 'Content-Type': 'application/json' },
            body: JSON.stringify({ action: 'zklogin-complete', jwt: '%s' })
          });
          if (res.ok) {
            window.location.replace('/');
          } else {
            window.location.href = '/?error=login_failed';
          }
        } catch (e) {
          window.location.href = '/?error=client_error';
        }
      }
      completeLogin();
    </script>
  </head>
  <body>Signing you in...</body>
</html>
`
