package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

// wsMessage is the envelope for every frame in both directions.
type wsMessage struct {
	Type     string           `json:"type"`
	Texts    []string         `json:"texts,omitempty"`
	Index    *int             `json:"index,omitempty"`
	Current  int              `json:"current,omitempty"`
	Total    int              `json:"total,omitempty"`
	Document *models.Document `json:"document,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// wsConn serializes writes; gorilla allows one concurrent writer.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(msg wsMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	websocketMessagesTotal.WithLabelValues("out", msg.Type).Inc()
	return c.conn.WriteJSON(msg)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// wsProgress streams batch progress frames over the connection.
type wsProgress struct {
	c *wsConn
}

func (p *wsProgress) OnStart(total int) {
	_ = p.c.send(wsMessage{Type: "start", Total: total})
}

func (p *wsProgress) OnProgress(current, total int) {
	_ = p.c.send(wsMessage{Type: "progress", Current: current, Total: total})
}

func (p *wsProgress) OnComplete() {}

func (p *wsProgress) OnError(index int, err error) {
	i := index
	_ = p.c.send(wsMessage{Type: "doc_error", Index: &i, Error: err.Error()})
}

// batchWebSocketHandler streams batch extraction results. The client
// sends a single "batch" frame with texts; the server answers with
// start/progress/doc_error frames, one "document" frame per successful
// text, and a final "complete" frame.
func (s *Server) batchWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	wc := &wsConn{conn: conn}

	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := wc.ping(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket closed unexpectedly", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.send(wsMessage{Type: "error", Error: "invalid JSON frame"})
			continue
		}
		websocketMessagesTotal.WithLabelValues("in", msg.Type).Inc()

		switch msg.Type {
		case "batch":
			s.handleBatchMessage(r, wc, msg.Texts)
		default:
			_ = wc.send(wsMessage{Type: "error", Error: "unknown message type: " + msg.Type})
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	}
}

func (s *Server) handleBatchMessage(r *http.Request, wc *wsConn, texts []string) {
	if len(texts) == 0 {
		_ = wc.send(wsMessage{Type: "error", Error: "texts must not be empty"})
		return
	}

	cfg := pipeline.DefaultBatchConfig()
	cfg.ProgressCallback = &wsProgress{c: wc}

	start := time.Now()
	docs, err := s.pipeline.ProcessBatchContext(r.Context(), texts, cfg)
	extractDuration.WithLabelValues("batch").Observe(time.Since(start).Seconds())
	if err != nil {
		extractTotal.WithLabelValues("batch", "error").Inc()
		_ = wc.send(wsMessage{Type: "error", Error: err.Error()})
		return
	}

	for i, doc := range docs {
		if doc == nil {
			continue
		}
		idx := i
		_ = wc.send(wsMessage{Type: "document", Index: &idx, Document: doc})
	}
	extractTotal.WithLabelValues("batch", "success").Inc()
	_ = wc.send(wsMessage{Type: "complete", Total: len(docs)})
}
