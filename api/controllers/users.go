package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/riderschoice/riderschoice-backend/internal/users"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
)

const maxProfileBody = 64 << 10

func UserProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "user", http.StatusOK, func(q request) (*users.UserDTO, error) {
		return svc.Profile(q.Context(), q.Actor)
	})
}

// UserUpdateProfile decodes the body loosely so the service can reject
// fields outside the profile allow-list by name.
func UserUpdateProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "user", http.StatusOK, func(q request) (*users.UserDTO, error) {
		var fields map[string]json.RawMessage
		if err := json.NewDecoder(http.MaxBytesReader(q.w, q.Body, maxProfileBody)).Decode(&fields); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
		}
		return svc.UpdateProfile(q.Context(), q.Actor, fields)
	})
}
