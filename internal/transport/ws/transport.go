// Package ws is the client side websocket session: connect and authenticate,
// correlate requests with replies, keep the link alive and reconnect.
package ws

import (
	"context"
	"crash_backend/internal/config"
	"crash_backend/internal/event"
	"crash_backend/internal/logger"
	"crash_backend/internal/protocol"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

const (
	writeWait     = 10 * time.Second
	incomingQueue = 256
)

type Options struct {
	MaxReconnectAttempts int
	ReconnectInterval    time.Duration
	HeartbeatInterval    time.Duration
	RequestTimeout       time.Duration
	HandshakeTimeout     time.Duration
}

func OptionsFrom(cfg config.TransportConfig) Options {
	return Options{
		MaxReconnectAttempts: cfg.MaxReconnectAttempts(),
		ReconnectInterval:    cfg.ReconnectInterval(),
		HeartbeatInterval:    cfg.HeartbeatInterval(),
		RequestTimeout:       cfg.RequestTimeout(),
		HandshakeTimeout:     cfg.HandshakeTimeout(),
	}
}

type result struct {
	env protocol.Envelope
	err error
}

type pending struct {
	seq    uint64
	typ    protocol.Type
	result chan result
}

// Transport - one logical session that survives reconnects. Safe for
// concurrent use.
type Transport struct {
	log  *zap.Logger
	bus  *event.Bus
	opts Options

	state    atomic.Int32
	seq      atomic.Uint64
	attempts atomic.Int32
	authed   atomic.Bool

	writeMu sync.Mutex

	mu       sync.Mutex
	conn     *websocket.Conn
	connStop context.CancelFunc
	life     context.Context
	stop     context.CancelFunc
	url      string
	token    string
	pending  map[uint64]*pending
	echoes   bool
	waiters  map[protocol.Type][]chan protocol.Envelope
	incoming chan protocol.Envelope
}

func New(opts Options, bus *event.Bus, log *zap.Logger) *Transport {
	if bus == nil {
		bus = event.NewBus(log)
	}
	return &Transport{
		log:      logger.OrNop(log).Named("transport"),
		bus:      bus,
		opts:     opts,
		pending:  make(map[uint64]*pending),
		waiters:  make(map[protocol.Type][]chan protocol.Envelope),
		incoming: make(chan protocol.Envelope, incomingQueue),
	}
}

func (t *Transport) State() State {
	return State(t.state.Load())
}

// IsReady - connected and, when a token was supplied, authenticated
func (t *Transport) IsReady() bool {
	if t.State() != Connected {
		return false
	}
	t.mu.Lock()
	needAuth := t.token != ""
	t.mu.Unlock()
	return !needAuth || t.authed.Load()
}

// Attempts - reconnect attempts of the current outage
func (t *Transport) Attempts() int {
	return int(t.attempts.Load())
}

// Incoming - server pushes that did not answer a request
func (t *Transport) Incoming() <-chan protocol.Envelope {
	return t.incoming
}

// Reset clears the reconnect counter and the sequence.
func (t *Transport) Reset() {
	t.attempts.Store(0)
	t.seq.Store(0)
}

// Connect dials url and, when token is set, authenticates.
func (t *Transport) Connect(ctx context.Context, url, token string) error {
	if !t.state.CAS(int32(Disconnected), int32(Connecting)) {
		return ErrAlreadyConnected
	}

	life, stop := context.WithCancel(context.Background())
	t.mu.Lock()
	t.life, t.stop = life, stop
	t.url, t.token = url, token
	t.echoes = false
	t.mu.Unlock()

	dialCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	unhook := context.AfterFunc(life, cancel)
	defer unhook()

	conn, err := t.dial(dialCtx, url)
	if err != nil {
		stop()
		t.state.Store(int32(Disconnected))
		return fmt.Errorf("connect %s: %w", url, err)
	}
	if !t.attach(life, conn) {
		conn.Close()
		return ErrConnectionClosed
	}
	t.bus.Emit(event.Connected, nil)

	if token == "" {
		return nil
	}
	if err := t.authenticate(ctx, token); err != nil {
		t.Disconnect()
		return err
	}
	return nil
}

func (t *Transport) dial(ctx context.Context, url string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: t.opts.HandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, url, http.Header{})
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

func (t *Transport) authenticate(ctx context.Context, token string) error {
	_, err := t.Request(ctx, protocol.Auth, protocol.AuthData{Token: token}, 0)
	if err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) {
			return fmt.Errorf("%w: %s", ErrAuthFailed, remote.Message)
		}
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	t.authed.Store(true)
	t.bus.Emit(event.Authenticated, nil)
	return nil
}

// attach makes conn the live connection and starts its reader and heartbeat.
// It refuses once life is done; the caller then owns conn.
func (t *Transport) attach(life context.Context, conn *websocket.Conn) bool {
	t.mu.Lock()
	if life.Err() != nil {
		t.mu.Unlock()
		return false
	}
	connCtx, connStop := context.WithCancel(life)
	t.conn = conn
	t.connStop = connStop
	t.attempts.Store(0)
	t.state.Store(int32(Connected))
	t.mu.Unlock()

	go t.readLoop(conn)
	go t.heartbeat(connCtx)
	return true
}

// Disconnect closes the session with a normal closure. No reconnect follows.
func (t *Transport) Disconnect() {
	// attach checks life under mu too
	t.mu.Lock()
	if t.stop != nil {
		t.stop()
	}
	conn, connStop := t.conn, t.connStop
	t.conn, t.connStop = nil, nil
	t.mu.Unlock()

	if connStop != nil {
		connStop()
	}
	prev := State(t.state.Swap(int32(Disconnected)))
	t.authed.Store(false)

	if conn != nil {
		t.writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		t.writeMu.Unlock()
		conn.Close()
	}

	t.rejectAll(ErrConnectionClosed)
	if prev != Disconnected {
		t.bus.Emit(event.Disconnected, event.Disconnect{})
	}
}

func (t *Transport) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.handleClose(conn, err)
			return
		}
		if typ, _ := protocol.Peek(raw); typ == protocol.Heartbeat {
			continue
		}

		env, err := protocol.Decode(raw)
		if err != nil {
			t.log.Warn("dropping message", zap.Error(err))
			continue
		}
		t.dispatch(env)
	}
}

func (t *Transport) dispatch(env protocol.Envelope) {
	if t.resolve(env) {
		return
	}

	t.mu.Lock()
	waiters := t.waiters[env.Type]
	delete(t.waiters, env.Type)
	t.mu.Unlock()
	for _, w := range waiters {
		w <- env
	}

	select {
	case t.incoming <- env:
	default:
		t.log.Warn("incoming queue full, dropping message", zap.String("type", string(env.Type)))
	}
}

func (t *Transport) heartbeat(ctx context.Context) {
	if t.opts.HeartbeatInterval <= 0 {
		return
	}
	ticker := time.NewTicker(t.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.Send(protocol.Heartbeat, nil); err != nil {
				t.log.Debug("heartbeat failed", zap.Error(err))
			}
		}
	}
}

// handleClose runs when the reader of conn stops.
func (t *Transport) handleClose(conn *websocket.Conn, cause error) {
	t.mu.Lock()
	if t.conn != conn {
		t.mu.Unlock()
		return
	}
	t.conn = nil
	connStop, life := t.connStop, t.life
	t.connStop = nil
	t.mu.Unlock()

	if connStop != nil {
		connStop()
	}
	conn.Close()
	t.authed.Store(false)
	t.rejectAll(ErrConnectionClosed)

	normal := websocket.IsCloseError(cause, websocket.CloseNormalClosure)
	if life.Err() != nil || normal || !t.state.CAS(int32(Connected), int32(Reconnecting)) {
		if State(t.state.Swap(int32(Disconnected))) != Disconnected {
			t.bus.Emit(event.Disconnected, event.Disconnect{Err: cause})
		}
		return
	}

	t.log.Warn("connection lost", zap.Error(cause))
	go t.reconnect(life)
}
