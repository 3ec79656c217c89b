// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package distro

import "runtime"

const isLinux = runtime.GOOS == "linux"

const isArm = runtime.GOARCH == "arm" || runtime.GOARCH == "arm64"
