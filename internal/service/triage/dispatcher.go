package triage

import (
	"context"
	"time"

	apperrors "github.com/jwalitptl/clinic-triage/pkg/errors"
)

type command struct {
	fn   func(*Engine)
	done chan struct{}
}

// Dispatcher serializes every access to an Engine on one goroutine. Ticks and
// commands never interleave.
type Dispatcher struct {
	engine   *Engine
	interval time.Duration
	onTick   func(TickOutcome)
	commands chan command
	done     chan struct{}
}

// NewDispatcher returns a dispatcher that ticks engine every interval once
// Run is called. A zero interval disables the ticker; Tick must then be
// driven by hand.
func NewDispatcher(engine *Engine, interval time.Duration, onTick func(TickOutcome)) *Dispatcher {
	return &Dispatcher{
		engine:   engine,
		interval: interval,
		onTick:   onTick,
		commands: make(chan command),
		done:     make(chan struct{}),
	}
}

// Run owns the engine until ctx is cancelled. onTick is called on the same
// goroutine and must not call back into the dispatcher.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	var tickC <-chan time.Time
	if d.interval > 0 {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tickC:
			d.tick()
		case cmd := <-d.commands:
			cmd.fn(d.engine)
			close(cmd.done)
		}
	}
}

func (d *Dispatcher) tick() {
	out := d.engine.Tick()
	if d.onTick != nil {
		d.onTick(out)
	}
}

// Do runs fn on the dispatcher goroutine and waits for it to return.
func (d *Dispatcher) Do(ctx context.Context, fn func(*Engine)) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case d.commands <- cmd:
	case <-ctx.Done():
		return apperrors.NewUnavailable("triage engine busy", ctx.Err())
	case <-d.done:
		return apperrors.NewUnavailable("triage engine stopped", nil)
	}
	<-cmd.done
	return nil
}

// Tick advances the scheduler by one step outside the regular cadence.
func (d *Dispatcher) Tick(ctx context.Context) (TickOutcome, error) {
	var out TickOutcome
	err := d.Do(ctx, func(e *Engine) {
		out = e.Tick()
		if d.onTick != nil {
			d.onTick(out)
		}
	})
	return out, err
}

// Done is closed when Run returns.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}
