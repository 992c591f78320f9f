// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package api

import (
	"net/http"

	gorilla "github.com/gorilla/websocket"

	"github.com/tomtom215/tabularius/internal/logging"
	"github.com/tomtom215/tabularius/internal/websocket"
)

// tailUpgrader upgrades live-tail requests. Origin checking is left to
// the CORS layer and the browser; the upgrade itself happens after
// authentication and authorization have passed.
var tailUpgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// TailLogs upgrades to a WebSocket and streams every recorded entry to
// the client. Clients may send filter frames to narrow the stream.
//
// @Summary Live-tail recorded entries over WebSocket
// @Tags logs
// @Success 101
// @Router /api/v1/logs/tail [get]
func (h *Handler) TailLogs(w http.ResponseWriter, r *http.Request) {
	conn, err := tailUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Warn().Err(err).Msg("Live-tail upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}
