// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tabularius/internal/debuglog"
)

// GetConfig returns the live logger configuration.
//
// @Summary Current logger configuration
// @Tags config
// @Produce json
// @Success 200 {object} APIResponse
// @Router /api/v1/config [get]
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.logger.Config())
}

// SetLevel changes the minimum recorded severity. The change applies to
// the next Log call and is persisted immediately. Admin only.
//
// @Summary Set the logging level
// @Tags config
// @Accept json
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/v1/config/level [put]
func (h *Handler) SetLevel(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req struct {
		Level string `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid payload: " + err.Error())
		return
	}

	level, err := debuglog.ParseLevel(req.Level)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	h.logger.SetLevel(r.Context(), level)
	rw.Success(h.logger.Config())
}

// SetCategories replaces the enabled-category set. Admin only.
//
// @Summary Replace the enabled categories
// @Tags config
// @Accept json
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/v1/config/categories [put]
func (h *Handler) SetCategories(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req struct {
		Categories []string `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid payload: " + err.Error())
		return
	}
	if len(req.Categories) == 0 {
		rw.BadRequest("categories must not be empty; use [\"all\"] to admit everything")
		return
	}

	h.logger.SetCategories(r.Context(), req.Categories)
	rw.Success(h.logger.Config())
}

// EnableCategory adds one category to the enabled set. Admin only.
//
// @Summary Enable one category
// @Tags config
// @Produce json
// @Param category path string true "Category name (URL-encoded)"
// @Success 200 {object} APIResponse
// @Router /api/v1/config/categories/{category} [post]
func (h *Handler) EnableCategory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	category, ok := categoryParam(r)
	if !ok {
		rw.BadRequest("invalid category")
		return
	}

	h.logger.EnableCategory(r.Context(), category)
	rw.Success(h.logger.Config())
}

// DisableCategory removes one category from the enabled set. Admin only.
//
// @Summary Disable one category
// @Tags config
// @Produce json
// @Param category path string true "Category name (URL-encoded)"
// @Success 200 {object} APIResponse
// @Router /api/v1/config/categories/{category} [delete]
func (h *Handler) DisableCategory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	category, ok := categoryParam(r)
	if !ok {
		rw.BadRequest("invalid category")
		return
	}

	h.logger.DisableCategory(r.Context(), category)
	rw.Success(h.logger.Config())
}

// categoryParam decodes the category path segment. Category names such
// as "API Call" contain spaces, so clients URL-encode them.
func categoryParam(r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "category")
	if raw == "" {
		return "", false
	}
	category, err := url.PathUnescape(raw)
	if err != nil || category == "" {
		return "", false
	}
	return category, true
}
