//go:build linux
// +build linux

// Package gds binds files to the GPUDirect Storage subsystem: a
// process-wide driver session, per-file handle registration paired
// with descriptor open/close, and read/write transfers between file
// ranges and device memory.
//
// A File is not safe for concurrent use; give each handle a single
// owning goroutine.
package gds

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"github.com/Meesho/BharatMLStack/gdsfile/internal/bindings"
	"github.com/Meesho/BharatMLStack/gdsfile/internal/metric"
)

// Stat counts completed transfers on a File.
type Stat struct {
	ReadCount    int64
	WriteCount   int64
	BytesRead    int64
	BytesWritten int64
}

// File binds one OS descriptor to one registered native handle. Both
// are live exactly while the file is open; construction touches
// neither the filesystem nor the native subsystem beyond ensuring the
// driver session exists.
type File struct {
	path     string
	mode     Mode
	flags    int
	directIO bool

	fd     int
	handle bindings.Handle

	drv  *Driver
	lib  bindings.Lib
	stat Stat
}

type Option func(*File)

// WithDirectIO requests O_DIRECT on the descriptor so file I/O
// bypasses the page cache.
func WithDirectIO() Option {
	return func(f *File) { f.directIO = true }
}

// New validates the mode, derives the open flags, and acquires the
// driver session. The returned File is closed; call Open or use With.
func New(path string, mode Mode, opts ...Option) (*File, error) {
	return newFile(defaultLib, path, mode, opts...)
}

func newFile(lib bindings.Lib, path string, mode Mode, opts ...Option) (*File, error) {
	flags, err := mode.flags()
	if err != nil {
		return nil, err
	}
	f := &File{
		path:  path,
		mode:  mode,
		flags: flags,
		fd:    -1,
		lib:   lib,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.directIO {
		f.flags |= unix.O_DIRECT
	}
	drv, err := acquireDriver(lib)
	if err != nil {
		return nil, err
	}
	f.drv = drv
	return f, nil
}

// IsOpen reports whether the descriptor and the native handle are
// both live. They are always set and cleared together.
func (f *File) IsOpen() bool {
	return f.fd >= 0 && f.handle != 0
}

// Open opens the descriptor and registers it with the native
// subsystem. No-op when already open. If registration fails the
// descriptor is closed before the error is returned.
func (f *File) Open() error {
	if f.IsOpen() {
		return nil
	}
	fd, err := osOpen(f.path, f.flags, filePerm)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOsOpen, f.path, err)
	}
	h, err := f.lib.HandleRegister(fd)
	if err != nil {
		if cerr := osClose(fd); cerr != nil {
			log.Warn().Msgf("Failed to close descriptor after failed registration: %v", cerr)
		}
		return fmt.Errorf("%w: %w", ErrHandleRegister, err)
	}
	f.fd = fd
	f.handle = h
	metric.Incr(metric.HandleRegisterCount)
	return nil
}

// Close deregisters the native handle, then closes the descriptor, in
// that order. No-op when already closed. The descriptor is closed
// even when deregistration fails; that failure is still returned.
func (f *File) Close() error {
	if !f.IsOpen() {
		return nil
	}
	var derr error
	if err := f.lib.HandleDeregister(f.handle); err != nil {
		derr = fmt.Errorf("%w: %w", ErrHandleDeregister, err)
		log.Warn().Msgf("Handle deregister failed, closing descriptor anyway: %v", err)
	} else {
		metric.Incr(metric.HandleDeregisterCount)
	}
	if err := osClose(f.fd); err != nil && derr == nil {
		derr = fmt.Errorf("close %s: %w", f.path, err)
	}
	f.fd = -1
	f.handle = 0
	return derr
}

// With opens the file, runs fn, and closes on every exit path,
// including panics. Preferred over manual Open/Close pairing.
func (f *File) With(fn func(*File) error) (err error) {
	if err = f.Open(); err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()
	return fn(f)
}

// Read transfers size bytes from the file at fileOffset into device
// memory at dst+devOffset. Returns bytes transferred; a short count at
// end of file is a normal result, not an error.
func (f *File) Read(dst DevicePtr, size, fileOffset, devOffset int64) (int64, error) {
	if !f.IsOpen() {
		return 0, ErrNotOpen
	}
	start := time.Now()
	n, err := f.lib.Read(f.handle, dst, size, fileOffset, devOffset)
	if err != nil {
		return 0, err
	}
	f.stat.ReadCount++
	f.stat.BytesRead += n
	metric.Count(metric.ReadBytes, n)
	metric.Timing(metric.ReadLatency, time.Since(start))
	return n, nil
}

// Write transfers size bytes from device memory at src+devOffset into
// the file at fileOffset. Returns bytes transferred.
func (f *File) Write(src DevicePtr, size, fileOffset, devOffset int64) (int64, error) {
	if !f.IsOpen() {
		return 0, ErrNotOpen
	}
	start := time.Now()
	n, err := f.lib.Write(f.handle, src, size, fileOffset, devOffset)
	if err != nil {
		return 0, err
	}
	f.stat.WriteCount++
	f.stat.BytesWritten += n
	metric.Count(metric.WriteBytes, n)
	metric.Timing(metric.WriteLatency, time.Since(start))
	return n, nil
}

// Fd returns the OS descriptor, or -1 when the file is closed.
func (f *File) Fd() int {
	if !f.IsOpen() {
		return -1
	}
	return f.fd
}

func (f *File) Path() string { return f.path }

func (f *File) Mode() Mode { return f.mode }

func (f *File) Stat() Stat { return f.stat }

// RegisterBuffer pins a device buffer with the native subsystem so
// repeated transfers against it skip per-call registration.
func RegisterBuffer(p DevicePtr, size int64, flags int) error {
	if err := OpenDriver(); err != nil {
		return err
	}
	return defaultLib.BufRegister(p, size, flags)
}

// DeregisterBuffer releases a buffer pinned by RegisterBuffer.
func DeregisterBuffer(p DevicePtr) error {
	if err := OpenDriver(); err != nil {
		return err
	}
	return defaultLib.BufDeregister(p)
}
