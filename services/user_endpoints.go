package services

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserEndpoints struct {
	users  *UserService
	logger *zap.Logger
}

func NewUserEndpoints(users *UserService, logger *zap.Logger) *UserEndpoints {
	return &UserEndpoints{users: users, logger: logger}
}

func (e *UserEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/stats", e.StatsHandler)
		r.Get("/me", e.ProfileHandler)
		r.Patch("/me", e.UpdateProfileHandler)
	})
}

func (e *UserEndpoints) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := e.users.Stats(r.Context(), principal(r))
	if err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (e *UserEndpoints) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, err := e.users.Profile(r.Context(), principal(r))
	if err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": userPayload(user)})
}

func (e *UserEndpoints) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileInput
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := e.users.UpdateProfile(r.Context(), principal(r), req)
	if err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": userPayload(user)})
}
