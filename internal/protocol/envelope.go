// Package protocol defines the JSON messages exchanged between the round
// server and its clients over a websocket.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

type Type string

const (
	Heartbeat  Type = "heartbeat"
	Auth       Type = "auth"
	AuthResult Type = "auth_result"

	GameState      Type = "game_state"
	WagerStart     Type = "wager_start"
	GameStart      Type = "game_start"
	MultipleUpdate Type = "multiple_update"
	GameCrash      Type = "game_crash"
	GameSettle     Type = "game_settle"

	BetRequest     Type = "bet_request"
	BetResult      Type = "bet_result"
	TakeoutRequest Type = "takeout_request"
	TakeoutResult  Type = "takeout_result"

	UserInfo   Type = "user_info"
	History    Type = "history"
	PlayerList Type = "player_list"
	Error      Type = "error"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
)

var known = map[Type]struct{}{
	Heartbeat: {}, Auth: {}, AuthResult: {},
	GameState: {}, WagerStart: {}, GameStart: {}, MultipleUpdate: {}, GameCrash: {}, GameSettle: {},
	BetRequest: {}, BetResult: {}, TakeoutRequest: {}, TakeoutResult: {},
	UserInfo: {}, History: {}, PlayerList: {}, Error: {},
}

var responses = map[Type]Type{
	Auth:           AuthResult,
	BetRequest:     BetResult,
	TakeoutRequest: TakeoutResult,
}

// ResponseFor - reply type of a request type, false when it has none
func ResponseFor(t Type) (Type, bool) {
	r, ok := responses[t]
	return r, ok
}

func Known(t Type) bool {
	_, ok := known[t]
	return ok
}

// Envelope - one frame on the wire. Timestamp is unix milliseconds.
type Envelope struct {
	Type      Type            `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Seq       uint64          `json:"seq,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// New builds an envelope stamped with now.
func New(t Type, seq uint64, data any) (Envelope, error) {
	env := Envelope{Type: t, Timestamp: time.Now().UnixMilli(), Seq: seq}
	if data == nil {
		return env, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	env.Data = raw
	return env, nil
}

func Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// Decode validates a frame and returns its envelope. Unknown types are
// returned together with ErrUnknownType so callers can log them.
func Decode(raw []byte) (Envelope, error) {
	if !gjson.ValidBytes(raw) {
		return Envelope{}, ErrMalformed
	}
	t := gjson.GetBytes(raw, "type")
	if t.Type != gjson.String || t.Str == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !Known(env.Type) {
		return env, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	return env, nil
}

// Peek reads type and seq without decoding the frame.
func Peek(raw []byte) (Type, uint64) {
	r := gjson.GetManyBytes(raw, "type", "seq")
	return Type(r[0].String()), r[1].Uint()
}

// Bind decodes the payload of env into v.
func Bind[T any](env Envelope) (T, error) {
	var v T
	if len(env.Data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	return v, nil
}

// Outcome probes a reply payload for {success, error}. Payloads without a
// success field count as successful.
func Outcome(env Envelope) (bool, string) {
	if len(env.Data) == 0 {
		return true, ""
	}
	r := gjson.GetManyBytes(env.Data, "success", "error")
	if !r[0].Exists() {
		return true, ""
	}
	return r[0].Bool(), r[1].String()
}
