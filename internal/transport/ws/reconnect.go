package ws

import (
	"context"
	"crash_backend/internal/event"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// reconnect waits one interval and then retries the dial up to the
// configured number of attempts. Exhaustion ends the session for good.
func (t *Transport) reconnect(life context.Context) {
	maxTries := t.opts.MaxReconnectAttempts
	if maxTries <= 0 {
		t.giveUp(fmt.Errorf("%w: reconnect disabled", ErrReconnectExhausted))
		return
	}

	t.mu.Lock()
	url, token := t.url, t.token
	t.mu.Unlock()

	wait := time.NewTimer(t.opts.ReconnectInterval)
	select {
	case <-life.Done():
		wait.Stop()
		return
	case <-wait.C:
	}

	op := func() (*websocket.Conn, error) {
		attempt := t.attempts.Inc()
		t.bus.Emit(event.Reconnecting, event.Reconnect{Attempt: int(attempt), Max: maxTries})
		t.log.Info("reconnecting", zap.Int32("attempt", attempt), zap.Int("max", maxTries))

		conn, err := t.dial(life, url)
		if life.Err() != nil {
			if conn != nil {
				conn.Close()
			}
			return nil, backoff.Permanent(life.Err())
		}
		return conn, err
	}

	conn, err := backoff.Retry(life, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(t.opts.ReconnectInterval)),
		backoff.WithMaxTries(uint(maxTries)),
		backoff.WithNotify(func(err error, next time.Duration) {
			t.log.Debug("reconnect attempt failed", zap.Error(err), zap.Duration("next", next))
		}),
	)
	if err != nil {
		if life.Err() == nil {
			t.giveUp(fmt.Errorf("%w: %v", ErrReconnectExhausted, err))
		}
		return
	}
	if !t.attach(life, conn) {
		conn.Close()
		return
	}
	t.log.Info("reconnected")
	t.bus.Emit(event.Connected, nil)

	if token == "" {
		return
	}
	ctx, cancel := context.WithTimeout(life, t.opts.RequestTimeout)
	defer cancel()
	if err := t.authenticate(ctx, token); err != nil {
		t.bus.Emit(event.Error, event.Failure{Op: "reauth", Err: err})
		t.Disconnect()
	}
}

func (t *Transport) giveUp(err error) {
	t.log.Error("session lost", zap.Error(err))
	t.state.Store(int32(Disconnected))
	t.mu.Lock()
	stop := t.stop
	t.mu.Unlock()
	if stop != nil {
		stop()
	}
	t.bus.Emit(event.Disconnected, event.Disconnect{Fatal: true, Err: err})
}
