//go:build linux
// +build linux

package gds

import (
	"testing"

	"github.com/Meesho/BharatMLStack/gdsfile/internal/bindings"
)

// fakeLib records native calls and fails on demand.
type fakeLib struct {
	driverOpens  int
	driverCloses int
	registers    int
	deregisters  int
	reads        int
	writes       int
	bufRegisters int
	bufDeregs    int
	lastRegFd    int

	failDriverOpen  bool
	failDriverClose bool
	failRegister    bool
	failDeregister  bool
}

func (l *fakeLib) DriverOpen() error {
	l.driverOpens++
	if l.failDriverOpen {
		return &bindings.Error{Op: "cuFileDriverOpen", Status: bindings.StatusIOError, CudaErr: 100}
	}
	return nil
}

func (l *fakeLib) DriverClose() error {
	l.driverCloses++
	if l.failDriverClose {
		return &bindings.Error{Op: "cuFileDriverClose", Status: bindings.StatusIOError}
	}
	return nil
}

func (l *fakeLib) HandleRegister(fd int) (bindings.Handle, error) {
	l.registers++
	l.lastRegFd = fd
	if l.failRegister {
		return 0, &bindings.Error{Op: "cuFileHandleRegister", Status: bindings.StatusInvalidValue}
	}
	return bindings.Handle(7), nil
}

func (l *fakeLib) HandleDeregister(h bindings.Handle) error {
	l.deregisters++
	if l.failDeregister {
		return &bindings.Error{Op: "cuFileHandleDeregister", Status: bindings.StatusInvalidFileHandle}
	}
	return nil
}

func (l *fakeLib) Read(h bindings.Handle, dst bindings.DevicePtr, size, fileOffset, devOffset int64) (int64, error) {
	l.reads++
	return size, nil
}

func (l *fakeLib) Write(h bindings.Handle, src bindings.DevicePtr, size, fileOffset, devOffset int64) (int64, error) {
	l.writes++
	return size, nil
}

func (l *fakeLib) BufRegister(p bindings.DevicePtr, size int64, flags int) error {
	l.bufRegisters++
	return nil
}

func (l *fakeLib) BufDeregister(p bindings.DevicePtr) error {
	l.bufDeregs++
	return nil
}

// osRecorder stubs the descriptor primitives and records close calls.
type osRecorder struct {
	opens   int
	closes  []int
	nextFd  int
	openErr error
}

func stubOS(t *testing.T) *osRecorder {
	t.Helper()
	rec := &osRecorder{nextFd: 42}
	oldOpen, oldClose := osOpen, osClose
	osOpen = func(path string, flags int, perm uint32) (int, error) {
		if rec.openErr != nil {
			return -1, rec.openErr
		}
		rec.opens++
		return rec.nextFd, nil
	}
	osClose = func(fd int) error {
		rec.closes = append(rec.closes, fd)
		return nil
	}
	t.Cleanup(func() {
		osOpen, osClose = oldOpen, oldClose
	})
	return rec
}

func resetDriver(t *testing.T) {
	t.Helper()
	driverMu.Lock()
	driver = nil
	driverMu.Unlock()
	t.Cleanup(func() {
		driverMu.Lock()
		driver = nil
		driverMu.Unlock()
	})
}
