//go:build linux
// +build linux

package gds

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Mode selects how the OS descriptor is opened. The values mirror
// fopen-style mode strings.
type Mode string

const (
	ModeRead                Mode = "r"
	ModeReadWrite           Mode = "r+"
	ModeWriteTrunc          Mode = "w"
	ModeWriteTruncReadWrite Mode = "w+"
	ModeAppend              Mode = "a"
	ModeAppendReadWrite     Mode = "a+"
)

const filePerm = 0644

var modeFlags = map[Mode]int{
	ModeRead:                unix.O_RDONLY,
	ModeReadWrite:           unix.O_RDWR,
	ModeWriteTrunc:          unix.O_CREAT | unix.O_WRONLY | unix.O_TRUNC,
	ModeWriteTruncReadWrite: unix.O_CREAT | unix.O_RDWR | unix.O_TRUNC,
	ModeAppend:              unix.O_CREAT | unix.O_WRONLY | unix.O_APPEND,
	ModeAppendReadWrite:     unix.O_CREAT | unix.O_RDWR | unix.O_APPEND,
}

func (m Mode) flags() (int, error) {
	f, ok := modeFlags[m]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, string(m))
	}
	return f, nil
}
