//go:build linux && !cufile
// +build linux,!cufile

package bindings

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/Meesho/BharatMLStack/gdsfile/internal/allocator"
)

// Emulator stands in for libcufile on machines without GPUDirect
// Storage. Device memory is an arena of mmap-aligned host pages and
// transfers are plain pread/pwrite against the registered descriptor,
// so the lifecycle contract can be exercised end to end.
type Emulator struct {
	mu         sync.Mutex
	open       bool
	nextHandle Handle
	files      map[Handle]int
	arena      map[DevicePtr]*allocator.Page
	registered map[DevicePtr]int64
}

var defaultEmu = NewEmulator()

// Default returns the process-wide compat engine.
func Default() Lib { return defaultEmu }

// Emu exposes the compat engine's arena for allocation and inspection.
func Emu() *Emulator { return defaultEmu }

func NewEmulator() *Emulator {
	return &Emulator{
		nextHandle: 1,
		files:      make(map[Handle]int),
		arena:      make(map[DevicePtr]*allocator.Page),
		registered: make(map[DevicePtr]int64),
	}
}

func (e *Emulator) DriverOpen() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = true
	return nil
}

func (e *Emulator) DriverClose() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return &Error{Op: "cuFileDriverClose", Status: StatusDriverNotInitialized}
	}
	e.open = false
	return nil
}

func (e *Emulator) HandleRegister(fd int) (Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return 0, &Error{Op: "cuFileHandleRegister", Status: StatusDriverNotInitialized}
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return 0, &Error{Op: "cuFileHandleRegister", Status: StatusInvalidValue, Errno: err}
	}
	h := e.nextHandle
	e.nextHandle++
	e.files[h] = fd
	return h, nil
}

func (e *Emulator) HandleDeregister(h Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.files[h]; !ok {
		return &Error{Op: "cuFileHandleDeregister", Status: StatusInvalidFileHandle}
	}
	delete(e.files, h)
	return nil
}

func (e *Emulator) Read(h Handle, dst DevicePtr, size, fileOffset, devOffset int64) (int64, error) {
	fd, buf, err := e.transferArgs("cuFileRead", h, dst, size, devOffset)
	if err != nil {
		return 0, err
	}
	n, rerr := unix.Pread(fd, buf, fileOffset)
	if rerr != nil {
		return 0, &Error{Op: "cuFileRead", Status: StatusIOError, Errno: rerr}
	}
	return int64(n), nil
}

func (e *Emulator) Write(h Handle, src DevicePtr, size, fileOffset, devOffset int64) (int64, error) {
	fd, buf, err := e.transferArgs("cuFileWrite", h, src, size, devOffset)
	if err != nil {
		return 0, err
	}
	n, werr := unix.Pwrite(fd, buf, fileOffset)
	if werr != nil {
		return 0, &Error{Op: "cuFileWrite", Status: StatusIOError, Errno: werr}
	}
	return int64(n), nil
}

func (e *Emulator) BufRegister(p DevicePtr, size int64, flags int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return &Error{Op: "cuFileBufRegister", Status: StatusDriverNotInitialized}
	}
	page, ok := e.arena[p]
	if !ok || size > int64(len(page.Buf)) {
		return &Error{Op: "cuFileBufRegister", Status: StatusInvalidValue}
	}
	e.registered[p] = size
	return nil
}

func (e *Emulator) BufDeregister(p DevicePtr) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.registered[p]; !ok {
		return &Error{Op: "cuFileBufDeregister", Status: StatusInvalidValue}
	}
	delete(e.registered, p)
	return nil
}

// transferArgs resolves a handle and a device range to the descriptor
// and the backing host slice for the transfer.
func (e *Emulator) transferArgs(op string, h Handle, p DevicePtr, size, devOffset int64) (int, []byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fd, ok := e.files[h]
	if !ok {
		return 0, nil, &Error{Op: op, Status: StatusInvalidFileHandle}
	}
	page, ok := e.arena[p]
	if !ok {
		return 0, nil, &Error{Op: op, Status: StatusInvalidValue}
	}
	if devOffset < 0 || size < 0 || devOffset+size > int64(len(page.Buf)) {
		return 0, nil, &Error{Op: op, Status: StatusInvalidValue}
	}
	return fd, page.Buf[devOffset : devOffset+size], nil
}

// Alloc reserves size bytes of emulated device memory and returns its
// address. The backing pages are mmap-aligned, so direct I/O against
// them satisfies block alignment.
func (e *Emulator) Alloc(size int) (DevicePtr, error) {
	page, err := allocator.NewAlignedPage(size)
	if err != nil {
		return 0, err
	}
	p := DevicePtr(pageAddr(page))
	e.mu.Lock()
	e.arena[p] = page
	e.mu.Unlock()
	return p, nil
}

// Free releases emulated device memory.
func (e *Emulator) Free(p DevicePtr) error {
	e.mu.Lock()
	page, ok := e.arena[p]
	if ok {
		delete(e.arena, p)
		delete(e.registered, p)
	}
	e.mu.Unlock()
	if !ok {
		return &Error{Op: "free", Status: StatusInvalidValue}
	}
	return allocator.Unmap(page)
}

func pageAddr(p *allocator.Page) uintptr {
	return uintptr(unsafe.Pointer(&p.Buf[0]))
}

// HostBytes returns the host backing of an allocation, for seeding and
// inspecting "device" contents in tests and tools.
func (e *Emulator) HostBytes(p DevicePtr) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	page, ok := e.arena[p]
	if !ok {
		return nil
	}
	return page.Buf
}
