//go:build linux && cgo && cufile
// +build linux,cgo,cufile

package bindings

/*
#cgo LDFLAGS: -lcufile
#include <cufile.h>
#include <stdlib.h>
*/
import "C"

import "unsafe"

// cufileLib calls straight into libcufile.so.
type cufileLib struct{}

// Default returns the libcufile-backed implementation.
func Default() Lib { return cufileLib{} }

func check(op string, st C.CUfileError_t) error {
	if st.err == C.CU_FILE_SUCCESS {
		return nil
	}
	return &Error{Op: op, Status: Status(st.err), CudaErr: int32(st.cu_err)}
}

func (cufileLib) DriverOpen() error {
	return check("cuFileDriverOpen", C.cuFileDriverOpen())
}

func (cufileLib) DriverClose() error {
	return check("cuFileDriverClose", C.cuFileDriverClose())
}

func (cufileLib) HandleRegister(fd int) (Handle, error) {
	var descr C.CUfileDescr_t
	descr._type = C.CU_FILE_HANDLE_TYPE_OPAQUE_FD
	// handle is a C union; the fd occupies its first word.
	*(*C.int)(unsafe.Pointer(&descr.handle)) = C.int(fd)

	var h C.CUfileHandle_t
	if err := check("cuFileHandleRegister", C.cuFileHandleRegister(&h, &descr)); err != nil {
		return 0, err
	}
	return Handle(uintptr(unsafe.Pointer(h))), nil
}

func (cufileLib) HandleDeregister(h Handle) error {
	C.cuFileHandleDeregister(C.CUfileHandle_t(unsafe.Pointer(uintptr(h))))
	return nil
}

func (cufileLib) Read(h Handle, dst DevicePtr, size, fileOffset, devOffset int64) (int64, error) {
	n := C.cuFileRead(C.CUfileHandle_t(unsafe.Pointer(uintptr(h))),
		unsafe.Pointer(uintptr(dst)), C.size_t(size), C.off_t(fileOffset), C.off_t(devOffset))
	if n < 0 {
		return 0, &Error{Op: "cuFileRead", Status: Status(-n)}
	}
	return int64(n), nil
}

func (cufileLib) Write(h Handle, src DevicePtr, size, fileOffset, devOffset int64) (int64, error) {
	n := C.cuFileWrite(C.CUfileHandle_t(unsafe.Pointer(uintptr(h))),
		unsafe.Pointer(uintptr(src)), C.size_t(size), C.off_t(fileOffset), C.off_t(devOffset))
	if n < 0 {
		return 0, &Error{Op: "cuFileWrite", Status: Status(-n)}
	}
	return int64(n), nil
}

func (cufileLib) BufRegister(p DevicePtr, size int64, flags int) error {
	return check("cuFileBufRegister", C.cuFileBufRegister(unsafe.Pointer(uintptr(p)), C.size_t(size), C.int(flags)))
}

func (cufileLib) BufDeregister(p DevicePtr) error {
	return check("cuFileBufDeregister", C.cuFileBufDeregister(unsafe.Pointer(uintptr(p))))
}
