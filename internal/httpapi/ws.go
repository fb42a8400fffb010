package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nguyentantai21042004/lecture-digest/internal/job"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

type wsMessage struct {
	Type   string     `json:"type"`
	Jobs   []job.Job  `json:"jobs,omitempty"`
	Job    *job.Job   `json:"job,omitempty"`
	Counts job.Counts `json:"counts"`
}

// handleJobsWS sends the current queue, then every job update.
func (s *Server) handleJobsWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Debug(c.Request.Context(), "websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := s.deps.Jobs.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func(msg wsMessage) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg)
	}

	if err := send(wsMessage{Type: "snapshot", Jobs: s.deps.Jobs.List(), Counts: s.deps.Jobs.Counts()}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case j, ok := <-updates:
			if !ok {
				return
			}
			if err := send(wsMessage{Type: "job", Job: &j, Counts: s.deps.Jobs.Counts()}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
