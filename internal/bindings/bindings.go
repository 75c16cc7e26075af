// Package bindings is the native GPUDirect Storage capability surface.
// Two implementations exist: cgo over libcufile (build tag "cufile")
// and an in-process compat engine that emulates the subsystem over
// host memory (default build, used by tests and CI).
package bindings

import "fmt"

// Status is a native operation error code. Zero means success.
type Status int32

const (
	StatusSuccess              Status = 0
	StatusDriverNotInitialized Status = 5001
	StatusInvalidValue         Status = 5002
	StatusInvalidFileHandle    Status = 5003
	StatusIOError              Status = 5010
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusDriverNotInitialized:
		return "driver not initialized"
	case StatusInvalidValue:
		return "invalid value"
	case StatusInvalidFileHandle:
		return "invalid file handle"
	case StatusIOError:
		return "io error"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Handle identifies a registered file with the native subsystem.
// Opaque; valid from HandleRegister until HandleDeregister.
type Handle uintptr

// DevicePtr is a device-memory address. Opaque; allocation and
// lifetime belong to the CUDA layer (or the compat engine).
type DevicePtr uintptr

// Error carries the native status plus the underlying CUDA and
// platform error codes where the subsystem reports them.
type Error struct {
	Op      string
	Status  Status
	CudaErr int32
	Errno   error // underlying platform error, when applicable
}

func (e *Error) Error() string {
	if e.Errno != nil {
		return fmt.Sprintf("%s failed (err=%d %s, cuda_err=%d): %v", e.Op, int32(e.Status), e.Status, e.CudaErr, e.Errno)
	}
	return fmt.Sprintf("%s failed (err=%d %s, cuda_err=%d)", e.Op, int32(e.Status), e.Status, e.CudaErr)
}

func (e *Error) Unwrap() error { return e.Errno }

// Lib is the set of native capabilities consumed by pkg/gds.
type Lib interface {
	DriverOpen() error
	DriverClose() error
	HandleRegister(fd int) (Handle, error)
	HandleDeregister(h Handle) error
	Read(h Handle, dst DevicePtr, size, fileOffset, devOffset int64) (n int64, err error)
	Write(h Handle, src DevicePtr, size, fileOffset, devOffset int64) (n int64, err error)
	BufRegister(p DevicePtr, size int64, flags int) error
	BufDeregister(p DevicePtr) error
}
