package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/KLH-F-2025/campus-safety-service/internal/cache"
	"github.com/KLH-F-2025/campus-safety-service/internal/models"
	"github.com/KLH-F-2025/campus-safety-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 8
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The campus app is served from several origins; access control
		// happens at login, not at the socket.
		return true
	},
}

// StreamHandler pushes mirror snapshots over websockets. Every change in
// the store becomes a fresh full snapshot on the wire, so a client never
// has to reconcile deltas.
type StreamHandler struct {
	BaseHandler
	alerts     *cache.Feed[models.SOSAlert]
	complaints *cache.Feed[models.Complaint]
}

func NewStreamHandler(
	alerts *cache.Feed[models.SOSAlert],
	complaints *cache.Feed[models.Complaint],
	logger utils.Logger,
) *StreamHandler {
	return &StreamHandler{
		BaseHandler: NewBaseHandler(logger),
		alerts:      alerts,
		complaints:  complaints,
	}
}

// StreamAlerts upgrades the connection and streams alert snapshots
func (h *StreamHandler) StreamAlerts(c *gin.Context) {
	serveFeed(h, c, h.alerts)
}

// StreamComplaints upgrades the connection and streams complaint snapshots
func (h *StreamHandler) StreamComplaints(c *gin.Context) {
	serveFeed(h, c, h.complaints)
}

func serveFeed[T any](h *StreamHandler, c *gin.Context, feed *cache.Feed[T]) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.LogError(err, "websocket upgrade failed")
		return
	}

	client := &streamClient{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	unsubscribe := feed.Subscribe(func(records []T) {
		data, err := json.Marshal(records)
		if err != nil {
			h.logger.LogError(err, "snapshot marshal failed")
			return
		}
		select {
		case client.send <- data:
		default:
			// Slow consumer: drop this snapshot, a newer one follows.
		}
	})
	defer unsubscribe()

	go client.writePump()
	client.readPump()
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *streamClient) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
