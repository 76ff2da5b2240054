// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relabs-tech/real_robot/internal/telemetry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const wsWriteTimeout = time.Second

// WebServer exposes the run status and a live tick stream.
type WebServer struct {
	status func() Status
	hub    *telemetry.Hub
	logger *zap.SugaredLogger
	router *mux.Router
}

// NewWebServer serves status from the given func and ticks from hub.
func NewWebServer(status func() Status, hub *telemetry.Hub, logger *zap.SugaredLogger) *WebServer {
	s := &WebServer{status: status, hub: hub, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/tick", s.handleTick).Methods(http.MethodGet)
	r.HandleFunc("/ws/ticks", s.handleTicksWS)
	s.router = r

	return s
}

// Handler returns the routed handler.
func (s *WebServer) Handler() http.Handler {
	return s.router
}

// RunWeb serves on port until ctx is cancelled.
func (s *WebServer) RunWeb(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("web: server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		s.logger.Infof("web: server stopped")
		return nil
	}
}

func (s *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.status())
}

// handleTick returns the latest snapshot.
func (s *WebServer) handleTick(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.hub.Last()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, snap)
}

func (s *WebServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warnf("web: json encode error: %v", err)
	}
}

// handleTicksWS streams hub messages to one websocket client until either
// side goes away.
func (s *WebServer) handleTicksWS(w http.ResponseWriter, r *http.Request) {
	// subscribe before the handshake completes so no tick after it is missed
	msgs, cancel := s.hub.Subscribe()
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// The client sends nothing; reading only notices it leaving.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Debugf("web: websocket error: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case msg, ok := <-msgs:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"),
					time.Now().Add(wsWriteTimeout))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.Debugf("web: websocket write error: %v", err)
				return
			}
		}
	}
}
