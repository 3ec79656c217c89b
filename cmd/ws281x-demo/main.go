// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ws281x-demo drives a color wipe across a WS281x/SK6812 strip.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"periph.io/x/ws281x"
	_ "periph.io/x/ws281x/host/bcm283x"
	_ "periph.io/x/ws281x/host/fpga"
	_ "periph.io/x/ws281x/host/rp1"
	"periph.io/x/ws281x/periph"
)

func mainImpl() error {
	count := flag.Int("count", 150, "number of LEDs on the strip")
	gpioPin := flag.Int("gpio", 18, "BCM GPIO pin driving the strip")
	dmaNum := flag.Int("dma", 10, "DMA engine to use")
	invert := flag.Bool("invert", false, "invert the PWM output polarity")
	brightness := flag.Int("brightness", 255, "global brightness, 0-255")
	strip := flag.String("strip", "grb", "wire color order: grb, rgb, bgr, grbw, ...")
	flag.Parse()

	if state, err := periph.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "ws281x-demo: periph.Init: %v\n", err)
	} else {
		for _, d := range state.Loaded {
			fmt.Fprintf(os.Stderr, "ws281x-demo: loaded driver %s\n", d)
		}
	}

	stripType, err := parseStripType(*strip)
	if err != nil {
		return err
	}
	if *brightness < 0 || *brightness > 255 {
		return fmt.Errorf("brightness must be in [0, 255]")
	}

	c := ws281x.NewController()
	cfg := ws281x.Config{
		Freq:   ws281x.DefaultFreq,
		DmaNum: *dmaNum,
		Channels: [2]ws281x.ChannelConfig{{
			GpioPin:    *gpioPin,
			Invert:     *invert,
			Count:      *count,
			Brightness: byte(*brightness),
			StripType:  stripType,
		}},
	}
	if err := c.Init(cfg); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer c.Fini()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	return colorWipe(ctx, c)
}

// colorWipe lights the strip red, green, then blue, one LED at a time,
// pausing briefly between renders. It makes one pass over the three colors
// and returns early if ctx is done.
func colorWipe(ctx context.Context, c *ws281x.Controller) error {
	colors := []ws281x.LedColor{0x00FF0000, 0x0000FF00, 0x000000FF}
	leds := c.Leds(0)
	for _, color := range colors {
		for i := range leds {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			leds[i] = color
			if err := c.Render(); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			if err := c.Wait(ctx); err != nil {
				return fmt.Errorf("wait: %w", err)
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
	return nil
}

func parseStripType(s string) (ws281x.StripType, error) {
	switch s {
	case "rgb":
		return ws281x.StripRGB, nil
	case "rbg":
		return ws281x.StripRBG, nil
	case "grb":
		return ws281x.StripGRB, nil
	case "gbr":
		return ws281x.StripGBR, nil
	case "brg":
		return ws281x.StripBRG, nil
	case "bgr":
		return ws281x.StripBGR, nil
	case "grbw":
		return ws281x.StripGRBW, nil
	case "rgbw":
		return ws281x.StripRGBW, nil
	case "gbrw":
		return ws281x.StripGBRW, nil
	case "bgrw":
		return ws281x.StripBGRW, nil
	default:
		return 0, fmt.Errorf("unknown strip type %q", s)
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ws281x-demo: %s.\n", err)
		os.Exit(1)
	}
}
