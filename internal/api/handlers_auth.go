// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tabularius/internal/auth"
)

// loginRequest carries the login credentials.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse carries the issued token.
type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login exchanges credentials for a JWT. Only available in jwt auth
// mode; basic and none modes have no token to issue.
//
// @Summary Exchange credentials for a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.auth.Mode() != auth.ModeJWT {
		rw.NotFound("login is only available in jwt auth mode")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		rw.BadRequest("invalid login payload")
		return
	}
	if req.Username == "" || req.Password == "" {
		rw.BadRequest("username and password are required")
		return
	}

	token, claims, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		// Deliberately uniform: no hint whether the user exists.
		rw.Unauthorized("invalid credentials")
		return
	}

	rw.Success(loginResponse{
		Token:    token,
		Username: claims.Username,
		Role:     claims.Role,
	})
}
