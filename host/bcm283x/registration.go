// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import "periph.io/x/ws281x/periph"

// driver is a periph.Driver wrapper around this package's transport, kept
// for programs that still call periph.Init() to get a diagnostic report of
// which host drivers are present before touching a Controller. It performs
// no hardware access itself; ws281x.Controller.Init triggers the real
// setup through transport.Configure.
type driver struct{}

func (d *driver) String() string { return "bcm283x-pwm-dma" }

func (d *driver) Prerequisites() []string { return nil }

func (d *driver) Init() (bool, error) {
	return true, nil
}

func registerPeriphDriver() {
	periph.MustRegister(&driver{})
}
