package ws

import (
	"context"
	"crash_backend/internal/protocol"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Send writes a fire-and-forget message.
func (t *Transport) Send(typ protocol.Type, data any) error {
	env, err := protocol.New(typ, t.seq.Inc(), data)
	if err != nil {
		return err
	}
	return t.write(env)
}

// Request sends typ and waits for its reply. Types without a reply resolve
// as soon as they are written. timeout <= 0 uses the configured default.
func (t *Transport) Request(ctx context.Context, typ protocol.Type, data any, timeout time.Duration) (protocol.Envelope, error) {
	if t.State() != Connected {
		return protocol.Envelope{}, ErrNotConnected
	}

	seq := t.seq.Inc()
	env, err := protocol.New(typ, seq, data)
	if err != nil {
		return protocol.Envelope{}, err
	}

	respType, ok := protocol.ResponseFor(typ)
	if !ok {
		return protocol.Envelope{}, t.write(env)
	}

	p := &pending{seq: seq, typ: respType, result: make(chan result, 1)}
	t.mu.Lock()
	t.pending[seq] = p
	t.mu.Unlock()

	if err := t.write(env); err != nil {
		t.drop(seq)
		return protocol.Envelope{}, err
	}

	if timeout <= 0 {
		timeout = t.opts.RequestTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-p.result:
		return r.env, r.err
	case <-timer.C:
		t.drop(seq)
		return protocol.Envelope{}, fmt.Errorf("%s: %w", typ, ErrRequestTimeout)
	case <-ctx.Done():
		t.drop(seq)
		return protocol.Envelope{}, ctx.Err()
	}
}

// Once waits for the next pushed message of typ.
func (t *Transport) Once(ctx context.Context, typ protocol.Type) (protocol.Envelope, error) {
	ch := make(chan protocol.Envelope, 1)
	t.mu.Lock()
	t.waiters[typ] = append(t.waiters[typ], ch)
	t.mu.Unlock()

	select {
	case env := <-ch:
		return env, nil
	case <-ctx.Done():
		t.mu.Lock()
		list := t.waiters[typ]
		for i, w := range list {
			if w == ch {
				t.waiters[typ] = append(list[:i], list[i+1:]...)
				break
			}
		}
		t.mu.Unlock()
		return protocol.Envelope{}, ctx.Err()
	}
}

func (t *Transport) write(env protocol.Envelope) error {
	raw, err := protocol.Encode(env)
	if err != nil {
		return err
	}

	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return fmt.Errorf("write %s: %w", env.Type, err)
	}
	return nil
}

// resolve hands a reply to its pending request. Once the peer has echoed a
// seq, replies are matched by seq only; before that the oldest pending
// request expecting this type wins.
func (t *Transport) resolve(env protocol.Envelope) bool {
	t.mu.Lock()
	var p *pending
	if env.Seq != 0 {
		if q, ok := t.pending[env.Seq]; ok && q.typ == env.Type {
			p = q
			t.echoes = true
		}
	}
	if p == nil && !t.echoes {
		for _, q := range t.pending {
			if q.typ == env.Type && (p == nil || q.seq < p.seq) {
				p = q
			}
		}
	}
	if p != nil {
		delete(t.pending, p.seq)
	}
	t.mu.Unlock()

	if p == nil {
		return false
	}

	if ok, msg := protocol.Outcome(env); !ok {
		p.result <- result{env: env, err: &RemoteError{Type: env.Type, Message: msg}}
	} else {
		p.result <- result{env: env}
	}
	return true
}

func (t *Transport) drop(seq uint64) {
	t.mu.Lock()
	delete(t.pending, seq)
	t.mu.Unlock()
}

// rejectAll fails every pending request once.
func (t *Transport) rejectAll(err error) {
	t.mu.Lock()
	list := t.pending
	t.pending = make(map[uint64]*pending)
	t.mu.Unlock()

	if len(list) > 0 {
		t.log.Debug("rejecting pending requests", zap.Int("count", len(list)), zap.Error(err))
	}
	for _, p := range list {
		p.result <- result{err: err}
	}
}
