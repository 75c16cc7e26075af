//go:build linux
// +build linux

package gds

import "errors"

var (
	ErrDriverInit       = errors.New("driver open failed")
	ErrInvalidMode      = errors.New("invalid access mode")
	ErrOsOpen           = errors.New("os open failed")
	ErrHandleRegister   = errors.New("handle register failed")
	ErrHandleDeregister = errors.New("handle deregister failed")
	ErrNotOpen          = errors.New("file is not open")
)
