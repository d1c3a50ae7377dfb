package gateway

import "encoding/json"

// Inbound events
const (
	EventJoinChannel      = "join_channel"
	EventWaitingPair      = "waiting_pair"
	EventRegisterTempCode = "register_temp_code"
	EventPing             = "ping"
)

// Outbound events
const (
	EventCallUpdate = "call_update"
	EventJoined     = "joined"
	EventPong       = "pong"
	EventError      = "error"
)

// Connect-time rejection codes
const (
	ErrCodeTokenMissing    = "TokenMissing"
	ErrCodeChannelNotFound = "ChannelNotFound"
	ErrCodeInvalidToken    = "InvalidToken"
	ErrCodeInternal        = "InternalError"
)

// inboundMessage is a frame received from a display
type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// outboundMessage is a frame sent to a display
type outboundMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type registerCodeData struct {
	Code string `json:"code"`
}

type joinedData struct {
	Room string `json:"room"`
}

type errorData struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func encode(event string, data interface{}) ([]byte, error) {
	return json.Marshal(outboundMessage{Event: event, Data: data})
}
