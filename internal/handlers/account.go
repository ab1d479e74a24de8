package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sophia-wwww/accountd/internal/services"
	"github.com/sophia-wwww/accountd/internal/store"
	"github.com/sophia-wwww/accountd/types"
	"go.uber.org/zap"
)

// AccountHandler provides the registration, authentication, and profile
// endpoints.
type AccountHandler struct {
	service *services.AccountService
	log     *zap.Logger
}

// NewAccountHandler constructs an AccountHandler with the provided dependencies.
func NewAccountHandler(service *services.AccountService, log *zap.Logger) *AccountHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountHandler{service: service, log: log}
}

// AccountRouter registers account routes on the given router.
func AccountRouter(r chi.Router, service *services.AccountService, log *zap.Logger) {
	handler := NewAccountHandler(service, log)

	r.Post("/register", handler.Register)
	r.Post("/authenticate", handler.Authenticate)
	r.Get("/profile/{username}", handler.GetProfile)
	r.Put("/profile/{username}", handler.UpdateProfile)
}

// Register creates a new user account. Optional profile fields may be
// supplied alongside the credentials.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	username, _ := body["username"].(string)
	password, _ := body["password"].(string)

	if _, err := h.service.Register(r.Context(), username, password, body); err != nil {
		h.writeAccountError(w, err, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, StatusResponse{
		Status:  statusSuccess,
		Message: "registration successful",
	})
}

// Authenticate verifies credentials and returns the user's profile.
func (h *AccountHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	username, _ := body["username"].(string)
	password, _ := body["password"].(string)

	user, err := h.service.Authenticate(r.Context(), username, password)
	if err != nil {
		h.writeAccountError(w, err, "authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, AuthenticateResponse{
		Status:  statusSuccess,
		Message: "authentication successful",
		UserID:  user.ID,
		Profile: user.Profile(),
	})
}

// GetProfile returns the stored profile for a username.
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.service.GetProfile(r.Context(), username)
	if err != nil {
		h.writeAccountError(w, err, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		Status:  statusSuccess,
		Profile: user.Profile(),
	})
}

// UpdateProfile applies a partial update of the optional profile fields.
// An empty or all-unrecognized field map is a successful no-op.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	changed, err := h.service.UpdateProfile(r.Context(), username, body)
	if err != nil {
		h.writeAccountError(w, err, "failed to update profile")
		return
	}

	message := "profile updated"
	if !changed {
		message = "no changes"
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: statusSuccess, Message: message})
}

// AuthenticateResponse is the body of a successful authentication.
type AuthenticateResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	UserID  int           `json:"user_id"`
	Profile types.Profile `json:"profile"`
}

// ProfileResponse is the body of a successful profile read.
type ProfileResponse struct {
	Status  string        `json:"status"`
	Profile types.Profile `json:"profile"`
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFailed(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return body, true
}

// writeAccountError maps service error kinds onto the external contract.
// Anything unrecognized is a server error: log the details, return a
// generic envelope.
func (h *AccountHandler) writeAccountError(w http.ResponseWriter, err error, logMessage string) {
	var invalidField *services.InvalidFieldError
	switch {
	case errors.Is(err, services.ErrMissingField):
		writeFailed(w, http.StatusBadRequest, "missing username or password")
	case errors.As(err, &invalidField):
		writeFailed(w, http.StatusBadRequest, "invalid field type: "+invalidField.Field)
	case errors.Is(err, store.ErrDuplicateUsername):
		writeFailed(w, http.StatusConflict, "username already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeFailed(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, store.ErrNotFound):
		writeFailed(w, http.StatusNotFound, "user not found")
	default:
		h.log.Error(logMessage, zap.Error(err))
		writeServerError(w, logMessage)
	}
}
