package ws

import (
	"context"
	"crash_backend/internal/protocol"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type client struct {
	conn *websocket.Conn
	send chan []byte

	// set once by the reader after auth, read under Hub.mu
	playerID string
}

// push never blocks; a slow client loses messages instead of stalling the round.
func (c *client) push(msg []byte) {
	select {
	case c.send <- msg:
	default:
	}
}

func (c *client) reply(h *Hub, t protocol.Type, seq uint64, data any) {
	msg, err := encode(t, seq, data)
	if err != nil {
		h.log.Error("encode reply", zap.String("type", string(t)), zap.Error(err))
		return
	}
	c.push(msg)
}

func (c *client) reader(ctx context.Context, h *Hub) {
	defer func() {
		c.conn.Close()
		if h.unregister(c) {
			leaveCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()
			if err := h.game.Leave(leaveCtx, c.playerID); err != nil {
				h.log.Debug("leave", zap.String("user_id", c.playerID), zap.Error(err))
			}
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("client read", zap.Error(err))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		env, err := protocol.Decode(raw)
		if err != nil {
			h.log.Debug("bad frame", zap.Error(err))
			msg := "malformed message"
			if errors.Is(err, protocol.ErrUnknownType) {
				msg = "unknown message type: " + string(env.Type)
			}
			c.reply(h, protocol.Error, env.Seq, protocol.ErrorData{Error: msg})
			continue
		}

		h.handle(ctx, c, env)
	}
}

func (c *client) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
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
