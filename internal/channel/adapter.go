// Package channel owns the websocket connection to the quiz server and
// turns it into named events with one handler per event name.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/middleware"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/protocol"
)

// Handler receives the raw payload of one inbound event.
// Handlers run on the read goroutine and must not block.
type Handler func(data json.RawMessage)

// Unsubscribe removes a handler. Calling it twice, or after the handler
// has been replaced, does nothing.
type Unsubscribe func()

// Endpoint is the part of the channel other components may use
type Endpoint interface {
	Emit(ctx context.Context, name protocol.EventName, payload any) error
	Subscribe(name protocol.EventName, h Handler) Unsubscribe
	Unsubscribe(name protocol.EventName)
}

type subscription struct {
	handler Handler
}

// Adapter is a single websocket connection to the server
type Adapter struct {
	cfg    Config
	dialer *websocket.Dialer
	logger *slog.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	cancel   context.CancelFunc
	handlers map[protocol.EventName]*subscription

	writeMu sync.Mutex
	errs    chan error
}

var _ Endpoint = (*Adapter)(nil)

// NewAdapter creates a disconnected Adapter
func NewAdapter(cfg Config, logger *slog.Logger) *Adapter {
	cfg = cfg.withDefaults()
	return &Adapter{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		logger:   logger.With(slog.String("component", "channel")),
		handlers: make(map[protocol.EventName]*subscription),
		errs:     make(chan error, cfg.ErrorBuffer),
	}
}

// Connect opens the connection. Members present their token in the
// handshake, guests connect without credentials. Calling Connect while
// connected does nothing.
func (a *Adapter) Connect(ctx context.Context, id *model.Identity) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn != nil {
		return nil
	}

	header := http.Header{}
	if id != nil && !id.IsGuest() && id.Token != "" {
		header.Set("Authorization", "Bearer "+id.Token)
	}

	conn, _, err := a.dialer.DialContext(ctx, a.cfg.URL, header)
	if err != nil {
		return a.fail(&model.ChannelError{Op: "connect", Err: err})
	}

	conn.SetReadLimit(a.cfg.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(a.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(a.cfg.ReadTimeout))
	})

	loopCtx, cancel := context.WithCancel(context.Background())
	a.conn = conn
	a.cancel = cancel
	go a.run(loopCtx, conn)

	a.logger.Info("channel connected",
		slog.String("url", a.cfg.URL),
		slog.Bool("authenticated", header.Get("Authorization") != ""))
	return nil
}

// Disconnect drops every subscription and closes the connection.
// It is safe to call when already disconnected.
func (a *Adapter) Disconnect() {
	a.mu.Lock()
	conn, cancel := a.conn, a.cancel
	a.conn, a.cancel = nil, nil
	a.handlers = make(map[protocol.EventName]*subscription)
	a.mu.Unlock()

	if conn == nil {
		return
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(a.cfg.WriteTimeout))
	cancel()
	a.logger.Info("channel disconnected")
}

// Connected reports whether a connection is open
func (a *Adapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn != nil
}

// Errors delivers non-fatal ChannelErrors: failed connects, failed emits
// and dropped connections.
func (a *Adapter) Errors() <-chan error {
	return a.errs
}

// Emit sends one event
func (a *Adapter) Emit(ctx context.Context, name protocol.EventName, payload any) error {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()

	if conn == nil {
		return a.fail(&model.ChannelError{Op: "emit", Event: string(name), Err: model.ErrNotConnected})
	}
	if err := ctx.Err(); err != nil {
		return &model.ChannelError{Op: "emit", Event: string(name), Err: err}
	}

	frame, err := protocol.Encode(name, payload)
	if err != nil {
		return &model.ChannelError{Op: "encode", Event: string(name), Err: err}
	}

	deadline := time.Now().Add(a.cfg.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return a.fail(&model.ChannelError{Op: "emit", Event: string(name), Err: err})
	}

	a.logger.Debug("event emitted", slog.String("event", string(name)))
	return nil
}

// Subscribe registers the handler for an event name, replacing and
// disposing of any previous handler for that name.
func (a *Adapter) Subscribe(name protocol.EventName, h Handler) Unsubscribe {
	sub := &subscription{handler: h}

	a.mu.Lock()
	if prev, ok := a.handlers[name]; ok {
		a.removeLocked(name, prev)
	}
	a.handlers[name] = sub
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		a.removeLocked(name, sub)
		a.mu.Unlock()
	}
}

// Unsubscribe removes whatever handler is registered for name
func (a *Adapter) Unsubscribe(name protocol.EventName) {
	a.mu.Lock()
	delete(a.handlers, name)
	a.mu.Unlock()
}

func (a *Adapter) removeLocked(name protocol.EventName, sub *subscription) {
	if a.handlers[name] == sub {
		delete(a.handlers, name)
	}
}

func (a *Adapter) run(ctx context.Context, conn *websocket.Conn) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.readLoop(conn)
	})
	g.Go(func() error {
		return a.pingLoop(gctx, conn)
	})
	g.Go(func() error {
		<-gctx.Done()
		return conn.Close()
	})
	err := g.Wait()

	a.mu.Lock()
	if a.conn == conn {
		a.conn, a.cancel = nil, nil
	}
	a.mu.Unlock()

	if ctx.Err() != nil {
		// closed by Disconnect
		return
	}
	a.fail(&model.ChannelError{Op: "read", Err: fmt.Errorf("%w: %v", model.ErrConnectionLost, err)})
}

// readLoop is the only reader, so handlers see events in arrival order
func (a *Adapter) readLoop(conn *websocket.Conn) error {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(a.cfg.ReadTimeout))

		env, err := protocol.Decode(frame)
		if err != nil {
			a.logger.Debug("dropping malformed frame", slog.String("error", err.Error()))
			continue
		}
		a.dispatch(env)
	}
}

func (a *Adapter) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(a.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(a.cfg.WriteTimeout)); err != nil {
				return err
			}
		}
	}
}

func (a *Adapter) dispatch(env protocol.Envelope) {
	a.mu.Lock()
	sub := a.handlers[env.Event]
	a.mu.Unlock()

	if sub == nil {
		a.logger.Debug("no handler for event", slog.String("event", string(env.Event)))
		return
	}
	middleware.Recover(a.logger, string(env.Event), func() { sub.handler(env.Data) })
}

func (a *Adapter) fail(err *model.ChannelError) error {
	a.logger.Warn("channel error",
		slog.String("op", err.Op),
		slog.String("error", err.Error()))
	select {
	case a.errs <- err:
	default:
	}
	return err
}
