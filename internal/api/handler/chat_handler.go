package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
	"github.com/skillbridge/resume-gateway/internal/core/ports"
	"github.com/skillbridge/resume-gateway/internal/metrics"
)

// ChatHandler bridges a browser WebSocket to a chat session: it resolves
// the target conversation, connects the upstream channel, and relays text
// frames both ways until either side goes away.
type ChatHandler struct {
	chats    ports.ChatOpener
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewChatHandler(chats ports.ChatOpener, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		chats: chats,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

// Connect handles GET /chat/ws/:target. The target "tech" addresses the
// caller's technical-support conversation; anything else is a conversation
// id from the route.
func (h *ChatHandler) Connect(c echo.Context) error {
	target := domain.TechnicalSupportTarget()
	kind := "technical_support"
	if p := c.Param("target"); p != "" && p != "tech" {
		target = domain.ChatTarget{ConversationID: p}
		kind = "by_id"
	}

	_, credential := ctxSession(c)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "websocket upgrade failed")
	}
	defer conn.Close()

	session, err := h.chats.Open(c.Request().Context(), credential, target)
	if err != nil {
		metrics.ChatSessionsTotal.WithLabelValues(kind, "error").Inc()
		h.log.Warn().Err(err).Str("kind", kind).Msg("chat open failed")
		h.closeWith(conn, websocket.CloseInternalServerErr, "chat unavailable")
		return nil
	}
	defer session.Close()

	if session.State() == domain.ChatNotFound {
		metrics.ChatSessionsTotal.WithLabelValues(kind, "not_found").Inc()
		h.closeWith(conn, websocket.ClosePolicyViolation, "conversation not found")
		return nil
	}
	metrics.ChatSessionsTotal.WithLabelValues(kind, "connected").Inc()

	// Upstream → browser. Inbound is closed once the session ends, after
	// every buffered frame, so draining it never drops a tail frame.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for text := range session.Inbound() {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
				return
			}
			metrics.ChatFramesTotal.WithLabelValues("inbound").Inc()
		}
		h.closeWith(conn, websocket.CloseGoingAway, "chat session ended")
	}()

	// Browser → upstream.
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		sent, err := session.Send(c.Request().Context(), string(data))
		if err != nil {
			h.log.Warn().Err(err).Msg("chat send failed")
			break
		}
		if sent {
			metrics.ChatFramesTotal.WithLabelValues("outbound").Inc()
		}
	}

	session.Close()
	<-writerDone
	return nil
}

func (h *ChatHandler) closeWith(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}
