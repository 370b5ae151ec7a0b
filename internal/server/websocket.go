package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// handleWebSocket streams snapshots to a client, the current one first.
// Clients only read; anything they send is discarded.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to upgrade connection")
		return
	}
	defer conn.Close()

	updates, cancel := s.session.Subscribe()
	defer cancel()

	s.mu.Lock()
	s.watchers++
	total := s.watchers
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.watchers--
		s.mu.Unlock()
	}()
	s.logger.Info().Str("remote", r.RemoteAddr).Int("total", total).Msg("Watcher connected")

	closed := make(chan struct{})
	go s.readPump(conn, closed)

	ticker := s.clock.NewTicker(pingPeriod, "server", "ping")
	defer ticker.Stop()

	for {
		select {
		case state, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(s.clock.Now().Add(writeWait))
			if err := conn.WriteJSON(state); err != nil {
				s.logger.Debug().Err(err).Msg("Failed to send snapshot")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(s.clock.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			s.logger.Info().Str("remote", r.RemoteAddr).Msg("Watcher disconnected")
			return
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, s.clock.Now().Add(writeWait))
			return
		}
	}
}

// readPump handles control frames and reports when the client goes away.
func (s *Server) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	_ = conn.SetReadDeadline(s.clock.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(s.clock.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
