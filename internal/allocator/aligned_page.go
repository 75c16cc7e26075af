//go:build linux
// +build linux

// Package allocator hands out page-aligned buffers. Direct I/O and
// the compat device-memory arena both need addresses aligned to the
// filesystem block size; mmap gives that for free.
package allocator

import "golang.org/x/sys/unix"

type Page struct {
	Buf  []byte
	mmap []byte
}

func NewAlignedPage(size int) (*Page, error) {
	b, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	return &Page{
		Buf:  b,
		mmap: b,
	}, nil
}

func Unmap(p *Page) error {
	if p.mmap != nil {
		err := unix.Munmap(p.mmap)
		if err != nil {
			return err
		}
		p.mmap = nil
	}
	p.Buf = nil
	p.mmap = nil
	return nil
}
