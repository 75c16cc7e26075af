//go:build linux
// +build linux

package gds

import (
	"golang.org/x/sys/unix"

	"github.com/Meesho/BharatMLStack/gdsfile/internal/bindings"
)

// DevicePtr addresses device memory previously allocated by the CUDA
// layer (or by the built-in compat engine). Opaque: no arithmetic.
type DevicePtr = bindings.DevicePtr

// NativeError is the error type carrying native and CUDA error codes;
// reach it with errors.As.
type NativeError = bindings.Error

var defaultLib bindings.Lib = bindings.Default()

// OS descriptor primitives, swappable in tests.
var (
	osOpen  = unix.Open
	osClose = unix.Close
)
