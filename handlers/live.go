package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/campboard/campboard/internal/schedules"
	"github.com/campboard/campboard/internal/store"
	"github.com/campboard/campboard/pkg/logger"
	"github.com/campboard/campboard/pkg/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	// Bearer-token auth already ran in the middleware chain; the origin
	// check adds nothing for a token-protected endpoint.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveMessage is one frame pushed to a live subscriber: a full committed
// schedule, or a tombstone when the schedule was deleted mid-stream.
type liveMessage struct {
	Type     string      `json:"type"` // "schedule" | "deleted"
	Schedule interface{} `json:"schedule,omitempty"`
}

// LiveHandler streams committed schedule versions over a websocket.
type LiveHandler struct {
	schedulesSvc *schedules.Service
}

func NewLiveHandler(s *schedules.Service) *LiveHandler {
	return &LiveHandler{schedulesSvc: s}
}

func (h *LiveHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/schedules/:id/live", h.Serve)
}

// Serve upgrades the request and pushes every committed version of the
// schedule until the client disconnects or the schedule is deleted.
func (h *LiveHandler) Serve(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	scheduleID := c.Param("id")

	// membership is checked before the upgrade so denials stay plain HTTP
	ctx := c.Request.Context()
	events, err := h.schedulesSvc.Subscribe(ctx, identity, scheduleID)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("websocket upgrade for schedule %s failed: %v", scheduleID, err)
		return
	}
	defer conn.Close()

	metrics.LiveSubscribers.Inc()
	defer metrics.LiveSubscribers.Dec()
	logger.Debugf("live stream opened: schedule=%s account=%s", scheduleID, identity)

	// read pump: the client sends nothing meaningful, but reading is what
	// notices the close frame and keeps pong handling alive
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// send the current state first so the client renders before the next edit
	if d, err := h.schedulesSvc.Get(ctx, identity, scheduleID); err == nil {
		if err := h.push(conn, liveMessage{Type: "schedule", Schedule: d}); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev, open := <-events:
			if !open {
				return
			}
			if err := h.pushEvent(conn, ev); err != nil {
				return
			}
			if ev.Deleted {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *LiveHandler) pushEvent(conn *websocket.Conn, ev store.Event) error {
	if ev.Deleted {
		return h.push(conn, liveMessage{Type: "deleted"})
	}
	return h.push(conn, liveMessage{Type: "schedule", Schedule: ev.Doc})
}

func (h *LiveHandler) push(conn *websocket.Conn, msg liveMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
