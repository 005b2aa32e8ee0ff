package controllers

import (
	"net/http"

	"github.com/riderschoice/riderschoice-backend/api/middleware"
	"github.com/riderschoice/riderschoice-backend/internal/auth"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
)

// tokenHeader mirrors the issued bearer token for clients that read headers.
const tokenHeader = "X-RC-Token"

// AuthRegister opens an account and returns a bearer token for it.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "auth", http.StatusCreated, func(q request) (*auth.AuthResponse, error) {
		in, err := body[auth.RegisterRequest](q)
		if err != nil {
			return nil, err
		}
		resp, err := svc.Register(q.Context(), in)
		return issued(q, resp, err)
	})
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "auth", http.StatusOK, func(q request) (*auth.AuthResponse, error) {
		in, err := body[auth.LoginRequest](q)
		if err != nil {
			return nil, err
		}
		resp, err := svc.Login(q.Context(), in)
		return issued(q, resp, err)
	})
}

func issued(q request, resp *auth.AuthResponse, err error) (*auth.AuthResponse, error) {
	if err != nil {
		return nil, err
	}
	q.SetHeader(tokenHeader, resp.Token)
	return resp, nil
}

// AuthLogout revokes the session behind the presented token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "auth", http.StatusOK, func(q request) (message, error) {
		if err := svc.Logout(q.Context(), middleware.AccessIDFromContext(q.Context())); err != nil {
			return message{}, err
		}
		return message{Message: "logged out"}, nil
	})
}
