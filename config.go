// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ws281x

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// DefaultFreq is the bit rate used by most WS281x/SK6812 chips.
const DefaultFreq = 800 * physic.KiloHertz

// MinFreq is the lowest bit rate this package will configure; chips rated
// for 400kHz operation use it.
const MinFreq = 400 * physic.KiloHertz

// ChannelConfig describes one of the (up to two) PWM channels a Controller
// drives.
type ChannelConfig struct {
	// GpioPin is the BCM GPIO number driving this channel. It must have a
	// PWM alternate function; see host/bcm283x's alt-function table.
	GpioPin int
	// Invert asks the PWM engine to invert its output polarity in hardware.
	// The bit buffer itself is never inverted; see BitEncoder.
	Invert bool
	// Count is the number of LEDs on this channel. Zero disables the
	// channel.
	Count int
	// Brightness scales every color byte by (Brightness+1)/256 so that 255
	// reproduces the input exactly.
	Brightness byte
	// StripType selects the wire color ordering. The zero value is StripRGB.
	StripType StripType
	// Gamma is an optional correction table applied after Brightness. Nil
	// means no correction (DefaultGamma).
	Gamma *Gamma
}

// Config is the full Controller configuration, mirroring ws2811_t.
type Config struct {
	// Freq is the bit rate. Zero defaults to DefaultFreq.
	Freq physic.Frequency
	// DmaNum selects the DMA engine, 0 through 15. Engines 0, 1 and 15 are
	// used by the graphics stack on some boards; rejecting them is left to
	// the caller.
	DmaNum int
	// Channels holds the two PWM channel configurations. A channel with
	// Count == 0 is inactive.
	Channels [2]ChannelConfig
}

// Validate checks the configuration for internally inconsistent values. It
// does not touch hardware.
func (c *Config) Validate() error {
	if c.Freq != 0 && c.Freq < MinFreq {
		return fmt.Errorf("ws281x: freq %s is below the minimum of %s", c.Freq, MinFreq)
	}
	if c.DmaNum < 0 || c.DmaNum > 15 {
		return errors.New("ws281x: dmanum must be in [0, 15]")
	}
	any := false
	for i := range c.Channels {
		ch := &c.Channels[i]
		if ch.Count == 0 {
			continue
		}
		any = true
		if ch.Count < 0 || ch.Count > 1<<20 {
			return fmt.Errorf("ws281x: channel %d: count %d out of range", i, ch.Count)
		}
		if ch.GpioPin < 0 {
			return fmt.Errorf("ws281x: channel %d: invalid gpio pin %d", i, ch.GpioPin)
		}
	}
	if !any {
		return errors.New("ws281x: at least one channel must have count > 0")
	}
	return nil
}

// freq returns the effective frequency, applying the default.
func (c *Config) freq() physic.Frequency {
	if c.Freq == 0 {
		return DefaultFreq
	}
	return c.Freq
}

// freqHz returns the effective frequency in whole Hertz, the unit
// bitCount/byteCount and the clock manager divider computation use.
func (c *Config) freqHz() uint32 {
	return uint32(c.freq() / physic.Hertz)
}
