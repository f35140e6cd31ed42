package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-confirm/pkg/confirmation"
	apperrors "github.com/tendant/simple-confirm/pkg/errors"
	"github.com/tendant/simple-confirm/pkg/flash"
)

// Handler serves confirmation links and the JSON endpoints around them
type Handler struct {
	service     *confirmation.ConfirmationService
	flash       *flash.Store
	redirectURL string
	loginURL    string
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithRedirectURL sets where signed-in users land after visiting a link
func WithRedirectURL(u string) HandlerOption {
	return func(h *Handler) {
		if u != "" {
			h.redirectURL = u
		}
	}
}

// WithLoginURL sets where anonymous users are sent after visiting a link
func WithLoginURL(u string) HandlerOption {
	return func(h *Handler) {
		if u != "" {
			h.loginURL = u
		}
	}
}

// NewHandler creates a new confirmation API handler
func NewHandler(service *confirmation.ConfirmationService, flashStore *flash.Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		service:     service,
		flash:       flashStore,
		redirectURL: "/",
		loginURL:    "/login",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ConfirmEmail handles GET /confirm/{key}/
func (h *Handler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := chi.URLParam(r, "key")
	viewerID, signedIn := viewerFromContext(r)

	// malformed keys cannot exist in the store
	rec, err := confirmation.Record{}, confirmation.ErrNotFound
	if confirmation.ValidKeyFormat(key) {
		rec, err = h.service.Confirm(ctx, key)
	}

	var (
		notices []flash.Notice
		// owner email used in the anonymous login redirect; empty means none
		loginEmail string
		outcome    string
	)

	switch {
	case err == nil:
		outcome = outcomeConfirmed
		loginEmail = rec.Email
		switch {
		case !signedIn:
			notices = append(notices, flash.Notice{Level: flash.Success, Message: msgConfirmedOther})
		case viewerID != rec.UserID:
			notices = append(notices,
				flash.Notice{Level: flash.Warning, Message: msgNotYourAccount},
				flash.Notice{Level: flash.Success, Message: msgConfirmedOther},
			)
		default:
			notices = append(notices, flash.Notice{Level: flash.Success, Message: msgConfirmedOwn})
		}

	case errors.Is(err, confirmation.ErrExpired):
		outcome = outcomeExpired
		loginEmail = h.ownerEmail(ctx, rec.UserID)
		notices = append(notices, flash.Notice{Level: flash.Warning, Message: msgLinkNotWorking})
		if _, err := h.service.Resend(ctx, rec); err != nil {
			slog.Error("Failed to resend expired confirmation", "record_id", rec.ID, "user_id", rec.UserID, "err", err)
		} else {
			notices = append(notices, flash.Notice{Level: flash.Success, Message: msgResent})
		}
		if _, err := h.service.ExpireSweep(ctx); err != nil {
			slog.Warn("Expire sweep after resend failed", "err", err)
		}

	case errors.Is(err, confirmation.ErrAlreadyVerified):
		outcome = outcomeAlreadyVerified
		if errors.Is(err, confirmation.ErrEmailTaken) {
			outcome = outcomeEmailTaken
		}
		loginEmail = h.ownerEmail(ctx, rec.UserID)
		notices = append(notices, flash.Notice{Level: flash.Warning, Message: msgLinkNotWorking})

	case errors.Is(err, confirmation.ErrNotFound):
		outcome = outcomeNotFound
		msg := msgMissingAnonymous
		if signedIn {
			msg = msgMissingSignedIn
		}
		notices = append(notices, flash.Notice{Level: flash.Warning, Message: msg})

	default:
		confirmOutcomes.WithLabelValues(outcomeError).Inc()
		slog.Error("Failed to confirm email", "err", err)
		writeError(w, r, apperrors.Internal(err, "An error occurred while confirming email"))
		return
	}

	confirmOutcomes.WithLabelValues(outcome).Inc()

	if h.flash != nil {
		if err := h.flash.Add(w, r, notices...); err != nil {
			slog.Error("Failed to store flash notices", "err", err)
		}
	}

	target := h.redirectURL
	if !signedIn {
		target = h.loginRedirect(loginEmail)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// RequestConfirmation handles POST /request
func (h *Handler) RequestConfirmation(w http.ResponseWriter, r *http.Request) {
	userID, ok := viewerFromContext(r)
	if !ok {
		writeError(w, r, apperrors.Unauthorized())
		return
	}

	var req RequestConfirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "error", err)
		writeError(w, r, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "Invalid request body"))
		return
	}

	rec, err := h.service.Request(r.Context(), req.Email, userID)
	if err != nil {
		apiErr := apperrors.Internal(err, "An error occurred while requesting confirmation")
		switch {
		case errors.Is(err, confirmation.ErrInvalidEmail):
			apiErr = apperrors.Wrap(err, apperrors.ErrCodeInvalidEmail, "Invalid email address")
		case errors.Is(err, confirmation.ErrAccountNotFound):
			apiErr = apperrors.Wrap(err, apperrors.ErrCodeAccountNotFound, "Account not found")
		default:
			slog.Error("Failed to request confirmation", "user_id", userID, "error", err)
		}

		confirmRequests.WithLabelValues("failed").Inc()
		writeError(w, r, apiErr)
		return
	}

	confirmRequests.WithLabelValues("sent").Inc()
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, h.toRecordResponse(rec))
}

// GetPendingEmail handles GET /pending
func (h *Handler) GetPendingEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := viewerFromContext(r)
	if !ok {
		writeError(w, r, apperrors.Unauthorized())
		return
	}

	email, isAccount, err := h.service.LastPendingEmail(r.Context(), userID)
	if err != nil {
		apiErr := apperrors.Wrap(err, apperrors.ErrCodeAccountNotFound, "Account not found")
		if !errors.Is(err, confirmation.ErrAccountNotFound) {
			slog.Error("Failed to get pending email", "user_id", userID, "error", err)
			apiErr = apperrors.Internal(err, "An error occurred while retrieving pending email")
		}
		writeError(w, r, apiErr)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, PendingEmailResponse{Email: email, IsAccountEmail: isAccount})
}

// PopNotices handles GET /notices
func (h *Handler) PopNotices(w http.ResponseWriter, r *http.Request) {
	resp := []NoticeResponse{}
	if h.flash != nil {
		for _, n := range h.flash.Pop(w, r) {
			resp = append(resp, NoticeResponse{Level: string(n.Level), Message: n.Message})
		}
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

func writeError(w http.ResponseWriter, r *http.Request, err *apperrors.Error) {
	render.Status(r, err.HTTPStatusCode())
	render.JSON(w, r, ErrorResponse{Code: string(err.Code), Error: err.Message})
}

func (h *Handler) toRecordResponse(rec confirmation.Record) RecordResponse {
	var resp RecordResponse
	if err := copier.Copy(&resp, &rec); err != nil {
		slog.Warn("Failed to copy record", "record_id", rec.ID, "err", err)
	}
	resp.ID = rec.ID.String()
	resp.ExpiresAt = rec.ExpiresAt(h.service.TTL())
	return resp
}

// ownerEmail returns the current email of the account owning a record,
// or an empty string when it cannot be loaded
func (h *Handler) ownerEmail(ctx context.Context, userID uuid.UUID) string {
	account, err := h.service.Account(ctx, userID)
	if err != nil {
		slog.Warn("Failed to load account for redirect", "user_id", userID, "err", err)
		return ""
	}
	return account.Email
}

// loginRedirect builds login_url?email=<email>&next=<redirect_url>
func (h *Handler) loginRedirect(email string) string {
	u, err := url.Parse(h.loginURL)
	if err != nil {
		slog.Error("Invalid login url", "login_url", h.loginURL, "err", err)
		return h.loginURL
	}
	q := u.Query()
	if email != "" {
		q.Set("email", email)
	}
	q.Set("next", h.redirectURL)
	u.RawQuery = q.Encode()
	return u.String()
}

// viewerFromContext extracts the signed-in user from the JWT verified by jwtauth
func viewerFromContext(r *http.Request) (uuid.UUID, bool) {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		return uuid.Nil, false
	}

	var raw string
	if v, ok := claims["user_id"].(string); ok && v != "" {
		raw = v
	} else if v, ok := claims["sub"].(string); ok {
		raw = v
	}

	userID, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}
