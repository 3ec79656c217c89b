// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ws281x

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
)

// state is Controller's lifecycle position.
type state int

const (
	stateUninit state = iota
	stateReady
	stateRendering
	stateDestroyed
)

// Controller orchestrates hardware detection, channel configuration, and
// the render/wait cycle for up to two LED chains. The zero value is not
// usable; create one with NewController.
type Controller struct {
	// Logger receives diagnostic messages; defaults to a stderr logger
	// prefixed "ws281x: ". Set before calling Init to silence or redirect it.
	Logger *log.Logger

	mu        sync.Mutex
	state     state
	cfg       Config
	leds      [2][]LedColor
	transport Transport
}

// NewController returns a Controller in the Uninit state.
func NewController() *Controller {
	return &Controller{
		Logger: log.New(os.Stderr, "ws281x: ", log.LstdFlags),
	}
}

// Leds returns the owned pixel buffer for channel i (0 or 1), allocated by
// Init to cfg.Channels[i].Count entries. Mutating it in place and calling
// Render is the normal way to update a chain; Render must not race a
// concurrent mutation or a previous call's in-flight transfer.
func (c *Controller) Leds(i int) []LedColor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.leds[i]
}

// Init detects hardware, acquires DMA-visible buffers, configures GPIO,
// clock and PWM, and transitions the Controller from Uninit to Ready. On
// any failure it unwinds whatever it had already acquired and leaves the
// Controller in Uninit.
func (c *Controller) Init(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateUninit {
		return errors.New("ws281x: Init called twice")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var chosen Transport
	var lastErr error
	for _, newTransport := range transportFactories {
		t := newTransport()
		if err := t.Configure(&cfg); err != nil {
			c.Logger.Printf("transport %s: configure: %v", t.String(), err)
			t.Close()
			lastErr = err
			continue
		}
		chosen = t
		break
	}
	if chosen == nil {
		if lastErr == nil {
			lastErr = errors.New("no transport available")
		}
		return wrapErr(ErrHardwareUnsupported, "Init", lastErr)
	}

	c.cfg = cfg
	for i := range cfg.Channels {
		if cfg.Channels[i].Count > 0 {
			c.leds[i] = make([]LedColor, cfg.Channels[i].Count)
		} else {
			c.leds[i] = nil
		}
	}
	c.transport = chosen
	c.state = stateReady
	c.Logger.Printf("init: transport=%s freq=%s dmanum=%d", chosen.String(), cfg.freq(), cfg.DmaNum)
	return nil
}

// Render waits for any previous transfer to finish, encodes the current
// pixel buffers into the wire bitstream, and starts a new asynchronous
// transfer. It returns once the transfer has been started, not once it has
// completed; call Wait for that.
func (c *Controller) Render() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateReady && c.state != stateRendering {
		return errors.New("ws281x: Render called before Init or after Fini")
	}
	if c.state == stateRendering {
		if err := c.waitLocked(context.Background()); err != nil {
			return err
		}
	}

	freqHz := c.cfg.freqHz()
	var bufs [2][]byte
	for i := range c.cfg.Channels {
		if c.cfg.Channels[i].Count == 0 {
			continue
		}
		bufs[i] = EncodeChannel(c.leds[i], &c.cfg.Channels[i], freqHz)
	}
	var words []uint32
	switch {
	case bufs[0] != nil && bufs[1] != nil:
		words = InterleaveChannels(bufs[0], bufs[1])
	case bufs[0] != nil:
		words = InterleaveChannels(bufs[0], nil)
	default:
		words = InterleaveChannels(bufs[1], nil)
	}

	if err := c.transport.Submit(words); err != nil {
		return wrapErr(ErrDmaError, "Render", err)
	}
	c.state = stateRendering
	return nil
}

// Wait blocks until the transfer started by the most recent Render
// completes, or ctx is done. It is a no-op if no transfer is outstanding.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waitLocked(ctx)
}

func (c *Controller) waitLocked(ctx context.Context) error {
	if c.state != stateRendering {
		return nil
	}
	err := c.transport.Wait(ctx)
	c.state = stateReady
	if err != nil {
		return wrapErr(ErrDmaError, "Wait", err)
	}
	return nil
}

// Fini waits for quiescence, releases every resource Init acquired, and
// transitions the Controller to Destroyed. It is idempotent: calling Fini
// on an Uninit or already-Destroyed Controller is a no-op.
func (c *Controller) Fini() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateUninit || c.state == stateDestroyed {
		return nil
	}
	if err := c.waitLocked(context.Background()); err != nil {
		c.Logger.Printf("fini: wait: %v", err)
	}
	var err error
	if c.transport != nil {
		err = c.transport.Close()
	}
	c.leds[0], c.leds[1] = nil, nil
	c.transport = nil
	c.state = stateDestroyed
	return err
}
