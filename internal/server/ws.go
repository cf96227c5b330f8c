package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/mfaulhaber/catalogd/internal/progress"
)

// wsSink adapts a websocket connection to the broadcaster sink
// interface. Writes are serialized because the broadcaster may publish
// from a job goroutine while the read loop detects disconnects.
type wsSink struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSink) Send(msg progress.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(msg)
}

// handleProgressSocket upgrades the connection and streams progress
// messages for one job until the client disconnects. Subscribing to an
// unknown or finished job is allowed; the client simply receives
// nothing.
func (s *Server) handleProgressSocket(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "job_id", jobID, "error", err)
		return
	}

	sink := &wsSink{conn: conn}
	s.broadcaster.Subscribe(jobID, sink)
	s.logger.Debug("progress subscriber connected", "job_id", jobID)

	defer func() {
		s.broadcaster.Unsubscribe(jobID, sink)
		conn.Close()
		s.logger.Debug("progress subscriber disconnected", "job_id", jobID)
	}()

	// Drain client frames (keep-alives) until the connection drops.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
