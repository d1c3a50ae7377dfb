package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/otcheredev/call-panel-gateway/internal/metrics"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/otcheredev/call-panel-gateway/internal/pairing"
	"github.com/rs/zerolog/log"
)

const registerTimeout = 5 * time.Second

// Client is one websocket connection
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	claims *models.ChannelClaims // nil for anonymous pairing displays

	rooms map[string]struct{} // guarded by hub.mu
}

// enqueue must be called with hub.mu held
func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		metrics.DroppedFrames.Inc()
		log.Warn().Str("client", c.id).Msg("Send queue full; frame dropped")
		return false
	}
}

func (c *Client) reply(event string, data interface{}) {
	frame, err := encode(event, data)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; ok {
		c.enqueue(frame)
	}
}

func (c *Client) replyError(code, message string) {
	c.reply(EventError, errorData{Error: code, Message: message})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	opts := c.hub.opts
	c.conn.SetReadLimit(opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait(opts.PingInterval)))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait(opts.PingInterval)))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("client", c.id).Msg("Socket read failed")
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.replyError("BadMessage", "frames must be JSON {event, data}")
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg inboundMessage) {
	switch msg.Event {
	case EventJoinChannel:
		var slug string
		if err := json.Unmarshal(msg.Data, &slug); err != nil || slug == "" {
			c.replyError("BadMessage", "join_channel expects a channel slug")
			return
		}
		if c.claims == nil {
			c.replyError("Unauthorized", "channel rooms require a paired credential")
			return
		}
		if c.claims.Channel != slug {
			c.replyError("Forbidden", "credential is not valid for this channel")
			return
		}
		c.hub.join(c, ChannelRoom(slug))
		c.reply(EventJoined, joinedData{Room: slug})

	case EventWaitingPair:
		var code string
		if err := json.Unmarshal(msg.Data, &code); err != nil || !pairing.ValidCode(code) {
			c.replyError("BadMessage", "waiting_pair expects a 6 digit code")
			return
		}
		c.joinPairing(code)

	case EventRegisterTempCode:
		var body registerCodeData
		if err := json.Unmarshal(msg.Data, &body); err != nil {
			c.replyError("BadMessage", "register_temp_code expects {code}")
			return
		}
		c.registerCode(body.Code)

	case EventPing:
		c.reply(EventPong, nil)

	default:
		c.replyError("UnknownEvent", "unsupported event "+msg.Event)
	}
}

// registerCode records the code and puts the display in its pairing room
func (c *Client) registerCode(code string) {
	registrar := c.hub.codeRegistrar()
	if registrar == nil {
		c.replyError(ErrCodeInternal, "pairing unavailable")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), registerTimeout)
	defer cancel()

	if err := registrar.Register(ctx, code); err != nil {
		if errors.Is(err, pairing.ErrMalformedCode) {
			c.replyError("BadMessage", err.Error())
			return
		}
		log.Error().Err(err).Str("client", c.id).Msg("Failed to register pairing code")
		c.replyError(ErrCodeInternal, "could not register code")
		return
	}
	c.joinPairing(code)
}

func (c *Client) joinPairing(code string) {
	room := pairing.Room(code)
	c.hub.join(c, room)
	c.reply(EventJoined, joinedData{Room: room})
}

func (c *Client) writePump() {
	opts := c.hub.opts
	ticker := time.NewTicker(opts.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// pongWait leaves room for one missed ping
func pongWait(interval time.Duration) time.Duration {
	return interval * 2
}
