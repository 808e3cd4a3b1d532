package workspace

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethdomperin2018/ai-assist/internal/api/response"
	"github.com/ethdomperin2018/ai-assist/internal/config"
	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/security"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

// Authenticator validates the access token presented on upgrade
type Authenticator interface {
	ValidateAccessToken(token string) (*security.Claims, error)
}

// Handler upgrades HTTP requests to WebSocket connections served by a Coordinator
type Handler struct {
	coordinator  *Coordinator
	auth         Authenticator
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	sendBuffer   int
	maxMessage   int64
}

// NewHandler creates the WebSocket endpoint for a coordinator
func NewHandler(c *Coordinator, auth Authenticator, cfg config.WorkspaceConfig, allowedOrigins []string) *Handler {
	h := &Handler{
		coordinator:  c,
		auth:         auth,
		pingInterval: cfg.PingInterval,
		sendBuffer:   cfg.SendBuffer,
		maxMessage:   cfg.MaxMessage,
	}
	if h.pingInterval <= 0 {
		h.pingInterval = 30 * time.Second
	}
	if h.sendBuffer <= 0 {
		h.sendBuffer = 64
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// Initialize mounts the WebSocket endpoint on r at cfg.Path. A failure is
// logged and the host keeps serving without real-time collaboration.
func (c *Coordinator) Initialize(r chi.Router, auth Authenticator, cfg config.WorkspaceConfig, allowedOrigins []string) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("path", cfg.Path).Msg("Failed to mount workspace endpoint")
			ok = false
		}
	}()

	if !strings.HasPrefix(cfg.Path, "/") {
		log.Error().Str("path", cfg.Path).Msg("Workspace path must start with /, real-time collaboration disabled")
		return false
	}
	if auth == nil {
		log.Error().Msg("No authenticator for workspace endpoint, real-time collaboration disabled")
		return false
	}

	r.Handle(cfg.Path, NewHandler(c, auth, cfg, allowedOrigins))
	log.Info().Str("path", cfg.Path).Msg("Workspace endpoint mounted")
	return true
}

// bearerToken reads the access token from the Authorization header, or from
// the token query parameter for browser clients that cannot set headers
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// ServeHTTP authenticates and upgrades the connection, then runs its read loop until it closes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		response.Unauthorized(w, "missing access token")
		return
	}
	claims, err := h.auth.ValidateAccessToken(token)
	if err != nil {
		response.Unauthorized(w, "invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to upgrade workspace connection")
		return
	}

	t := newWSTransport(conn, h.sendBuffer)
	clientID := h.coordinator.Connect(t, Participant{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	})
	go t.writeLoop(h.pingInterval)

	ctx := context.WithoutCancel(r.Context())
	defer func() {
		t.Close()
		h.coordinator.Disconnect(ctx, clientID)
	}()

	if h.maxMessage > 0 {
		conn.SetReadLimit(h.maxMessage)
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("client_id", clientID).Msg("Workspace connection closed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		h.coordinator.HandleMessage(ctx, clientID, data)
	}
}

// wsTransport queues frames for a single writer goroutine
type wsTransport struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

func newWSTransport(conn *websocket.Conn, buffer int) *wsTransport {
	return &wsTransport{
		conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (t *wsTransport) Send(data []byte) error {
	if t.closed.Load() {
		return ErrTransportClosed
	}
	select {
	case t.send <- data:
		return nil
	case <-t.done:
		return ErrTransportClosed
	default:
		return ErrSendQueueFull
	}
}

func (t *wsTransport) IsOpen() bool {
	return !t.closed.Load()
}

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		close(t.done)
		err = t.conn.Close()
	})
	return err
}

// writeLoop drains the send queue and emits the keepalive ping frame.
// A write failure closes the transport, which ends the read loop.
func (t *wsTransport) writeLoop(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case data := <-t.send:
			if err := t.write(data); err != nil {
				t.Close()
				return
			}
		case now := <-ticker.C:
			data, _ := json.Marshal(domain.Frame{Type: domain.FramePing, Timestamp: now})
			if err := t.write(data); err != nil {
				t.Close()
				return
			}
		}
	}
}

func (t *wsTransport) write(data []byte) error {
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}
