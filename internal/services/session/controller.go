package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/channel"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/dependencies/clock"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/protocol"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/services/timer"
)

// Connector hands out leases on the shared channel
type Connector interface {
	Acquire(ctx context.Context, id *model.Identity) (channel.Endpoint, channel.Lease, error)
	Reconnect(ctx context.Context, id *model.Identity) error
}

// IdentitySource returns the active identity, or nil
type IdentitySource interface {
	Current() *model.Identity
}

// Controller turns local intents into outbound events and feeds inbound
// events into the Machine
type Controller struct {
	machine    *Machine
	connector  Connector
	identities IdentitySource
	timer      *timer.Timer
	logger     *slog.Logger

	// turnMu orders answer checks against question changes
	turnMu sync.Mutex

	mu       sync.Mutex
	endpoint channel.Endpoint
	lease    channel.Lease
	unsubs   []channel.Unsubscribe
	lastErr  *model.SessionError
	tickers  []TickListener
}

// NewController creates a controller around a fresh Machine
func NewController(
	connector Connector,
	identities IdentitySource,
	clk clock.Clock,
	timerCfg timer.Config,
	logger *slog.Logger,
) *Controller {
	c := &Controller{
		machine:    NewMachine(logger),
		connector:  connector,
		identities: identities,
		logger:     logger.With(slog.String("component", "controller")),
	}
	timerCfg.OnTick = c.tick
	timerCfg.OnExpire = c.timeUp
	c.timer = timer.New(clk, timerCfg, logger)
	c.machine.AddListener(ListenerFuncs{Alert: c.recordAlert})
	return c
}

// Machine returns the underlying state machine
func (c *Controller) Machine() *Machine {
	return c.machine
}

// Timer returns the answer countdown
func (c *Controller) Timer() *timer.Timer {
	return c.timer
}

// Projection returns the current session state
func (c *Controller) Projection() model.Projection {
	return c.machine.Projection()
}

// AddListener registers l with the machine. If l also implements
// TickListener it follows the countdown too.
func (c *Controller) AddListener(l Listener) {
	c.machine.AddListener(l)
	if tl, ok := l.(TickListener); ok {
		c.mu.Lock()
		c.tickers = append(c.tickers, tl)
		c.mu.Unlock()
	}
}

// LastError returns the most recent game-error, if any
func (c *Controller) LastError() *model.SessionError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// HostGame opens the lobby for a pin issued to the local identity
func (c *Controller) HostGame(ctx context.Context, pin string) error {
	id, err := c.prepare(pin)
	if err != nil {
		return err
	}
	if err := c.bind(ctx, id); err != nil {
		return err
	}
	if err := c.machine.HostGame(pin, id.AsPlayer()); err != nil {
		c.unbind()
		return err
	}
	c.clearLastError()
	return nil
}

// JoinGame enters an existing session and announces the local player.
// When the announcement fails the lobby is kept and the error returned;
// Rejoin retries it.
func (c *Controller) JoinGame(ctx context.Context, pin string) error {
	id, err := c.prepare(pin)
	if err != nil {
		return err
	}
	if err := c.bind(ctx, id); err != nil {
		return err
	}
	if err := c.machine.JoinGame(pin); err != nil {
		c.unbind()
		return err
	}
	c.clearLastError()
	return c.announce(ctx, id, pin)
}

// StartGame asks the server to start the session. The transition happens
// when game-started arrives.
func (c *Controller) StartGame(ctx context.Context) error {
	p := c.machine.Projection()
	if p.Status != model.StatusLobby {
		return model.ErrInvalidState
	}
	return c.emit(ctx, protocol.EventStartGame, protocol.StartPayload{Pin: p.Pin})
}

// SubmitAnswer sends the chosen option for the current question. Only
// the first submission per question is sent.
func (c *Controller) SubmitAnswer(ctx context.Context, optionText string) error {
	c.turnMu.Lock()
	p := c.machine.Projection()
	err := c.claimAnswer(p, optionText)
	c.turnMu.Unlock()
	if err != nil {
		return err
	}

	payload := protocol.AnswerPayload{Pin: p.Pin, OptionText: optionText}
	if id := c.identities.Current(); id != nil {
		payload.PlayerID = id.PlayerID()
	}
	return c.emit(ctx, protocol.EventSubmitAnswer, payload)
}

func (c *Controller) claimAnswer(p model.Projection, optionText string) error {
	if p.Status != model.StatusInProgress || p.CurrentQuestion == nil {
		return model.ErrInvalidState
	}
	if !p.CurrentQuestion.HasOption(optionText) {
		return model.ErrUnknownOption
	}
	if !c.timer.TryLock() {
		if c.timer.Expired() {
			return model.ErrSelectionLocked
		}
		return model.ErrAlreadyAnswered
	}
	return nil
}

// ResetGame drops the session and releases the channel lease. No event
// is sent.
func (c *Controller) ResetGame() {
	c.timer.Stop()
	c.unbind()
	c.machine.Reset()
}

// Rejoin reconnects if needed and repeats player-join for the current
// pin. Local state is left alone; the server replays what it has.
func (c *Controller) Rejoin(ctx context.Context) error {
	p := c.machine.Projection()
	if p.Status == model.StatusIdle {
		return model.ErrNoSession
	}
	id := c.identities.Current()
	if id == nil {
		return model.ErrNoIdentity
	}
	// a lease ended by a channel reset is replaced in bind
	if c.leaseActive() {
		if err := c.connector.Reconnect(ctx, id); err != nil {
			return err
		}
	}
	c.unsubscribe()
	if err := c.bind(ctx, id); err != nil {
		return err
	}

	c.logger.Info("rejoining session", slog.String("pin", p.Pin))
	return c.announce(ctx, id, p.Pin)
}

func (c *Controller) prepare(pin string) (*model.Identity, error) {
	id := c.identities.Current()
	if id == nil {
		return nil, model.ErrNoIdentity
	}
	if !ValidPin(pin) {
		return nil, model.ErrInvalidPin
	}
	if c.machine.Status() != model.StatusIdle {
		return nil, model.ErrSessionActive
	}
	return id, nil
}

// bind takes a lease if none is held or the held one has ended, then
// subscribes every inbound event
func (c *Controller) bind(ctx context.Context, id *model.Identity) error {
	stale := !c.leaseActive()

	c.mu.Lock()
	defer c.mu.Unlock()

	if stale {
		// the reset already dropped the adapter's handlers
		c.endpoint, c.lease, c.unsubs = nil, nil, nil
	}
	if c.endpoint == nil {
		ep, lease, err := c.connector.Acquire(ctx, id)
		if err != nil {
			return err
		}
		c.endpoint, c.lease = ep, lease
	}
	if len(c.unsubs) > 0 {
		return nil
	}
	for _, name := range protocol.InboundEvents {
		c.unsubs = append(c.unsubs, c.endpoint.Subscribe(name, c.handler(name)))
	}
	return nil
}

// unbind removes the handlers and gives the lease back
func (c *Controller) unbind() {
	c.mu.Lock()
	unsubs, lease := c.unsubs, c.lease
	c.unsubs, c.endpoint, c.lease = nil, nil, nil
	c.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
	if lease != nil {
		lease.Release()
	}
}

// leaseActive is called without mu held
func (c *Controller) leaseActive() bool {
	c.mu.Lock()
	lease := c.lease
	c.mu.Unlock()
	return lease != nil && lease.Active()
}

func (c *Controller) unsubscribe() {
	c.mu.Lock()
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
}

func (c *Controller) announce(ctx context.Context, id *model.Identity, pin string) error {
	return c.emit(ctx, protocol.EventPlayerJoin, protocol.JoinPayload{
		Pin:      pin,
		PlayerID: id.PlayerID(),
		Nickname: id.DisplayName(),
	})
}

func (c *Controller) emit(ctx context.Context, name protocol.EventName, payload any) error {
	c.mu.Lock()
	ep := c.endpoint
	c.mu.Unlock()

	if ep == nil {
		return &model.ChannelError{Op: "emit", Event: string(name), Err: model.ErrNotConnected}
	}
	return ep.Emit(ctx, name, payload)
}

func (c *Controller) handler(name protocol.EventName) channel.Handler {
	return func(data json.RawMessage) {
		ev, err := protocol.ParseInbound(name, data)
		if err != nil {
			c.logger.Debug("dropping malformed event",
				slog.String("event", string(name)),
				slog.String("error", err.Error()))
			return
		}
		c.handle(ev)
	}
}

func (c *Controller) handle(ev protocol.Inbound) {
	c.turnMu.Lock()
	defer c.turnMu.Unlock()

	if !c.machine.Apply(ev) {
		return
	}

	switch e := ev.(type) {
	case protocol.GameStarted:
		c.timer.Reset(e.Question)
	case protocol.NextQuestion:
		c.timer.Reset(e.Question)
	case protocol.GameOver:
		c.timer.Stop()
	case protocol.GameError:
		c.timer.Stop()
	}
}

func (c *Controller) recordAlert(err *model.SessionError) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func (c *Controller) clearLastError() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
}

func (c *Controller) tick(remaining int) {
	for _, tl := range c.tickListeners() {
		tl.SessionTick(remaining)
	}
}

func (c *Controller) timeUp() {
	for _, tl := range c.tickListeners() {
		tl.SessionTimeUp()
	}
}

func (c *Controller) tickListeners() []TickListener {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]TickListener(nil), c.tickers...)
}

