// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ws281x

import "context"

// Transport is the capability a Controller drives: something that can take
// an encoded PWM bitstream and ship it out, asynchronously, to LED
// hardware. host/bcm283x (PWM+DMA), host/rp1 (kernel char device) and
// host/fpga (SPI) each implement it.
type Transport interface {
	// String returns a short human readable name, in the style of
	// periph.Driver.String.
	String() string

	// Configure prepares the transport for a given Config, performing any
	// one-time hardware setup (clock dividers, GPIO alt functions, register
	// windows). It is called once from Controller.Init.
	Configure(cfg *Config) error

	// Submit starts an asynchronous transfer of words and returns
	// immediately; words must not be modified until Wait returns. It holds one combined
	// buffer across both channels, already produced by InterleaveChannels or
	// bytesToWords for a single active channel.
	Submit(words []uint32) error

	// Wait blocks until the in-flight transfer submitted by Submit
	// completes, or ctx is done. A transfer that completes with a hardware
	// error returns a non-nil error, which Controller.Wait wraps as
	// *Error{Kind: ErrDmaError}.
	Wait(ctx context.Context) error

	// Close releases any resources Configure acquired (mmap windows, DMA
	// buffers, file descriptors). It is safe to call on a transport that was
	// never successfully configured.
	Close() error
}

// transportFactory constructs a Transport without touching hardware; actual
// probing happens in Configure. Each host/* backend registers one via
// RegisterTransport.
type transportFactory func() Transport

var transportFactories []transportFactory

// RegisterTransport adds a Transport backend to the set Controller.Init
// considers. It is called from host/*'s package init functions, mirroring
// periph.Register's registration-at-init idiom but without that registry's
// dependency graph: transports here have no ordering relationship, they are
// simply tried in registration order until one configures successfully.
func RegisterTransport(f transportFactory) {
	transportFactories = append(transportFactories, f)
}
