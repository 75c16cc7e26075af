//go:build linux && !cufile
// +build linux,!cufile

// gdscheck runs a write/read round trip through the gds lifecycle
// against the built-in compat engine and verifies the byte pattern.
package main

import (
	"bytes"
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Meesho/BharatMLStack/gdsfile/internal/bindings"
	"github.com/Meesho/BharatMLStack/gdsfile/pkg/gds"
)

func main() {
	path := flag.String("path", "/tmp/gdscheck.bin", "file to write and read back")
	size := flag.Int("size", 4*4096, "transfer size in bytes")
	directIO := flag.Bool("direct", false, "open with O_DIRECT")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	defer gds.Teardown()

	emu := bindings.Emu()
	src, err := emu.Alloc(*size)
	if err != nil {
		log.Fatal().Msgf("Failed to allocate device memory: %v", err)
	}
	defer emu.Free(src)
	dst, err := emu.Alloc(*size)
	if err != nil {
		log.Fatal().Msgf("Failed to allocate device memory: %v", err)
	}
	defer emu.Free(dst)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rng.Read(emu.HostBytes(src))

	var opts []gds.Option
	if *directIO {
		opts = append(opts, gds.WithDirectIO())
	}

	start := time.Now()
	w, err := gds.New(*path, gds.ModeWriteTrunc, opts...)
	if err != nil {
		log.Fatal().Msgf("Failed to create file handle: %v", err)
	}
	err = w.With(func(w *gds.File) error {
		n, err := w.Write(src, int64(*size), 0, 0)
		if err != nil {
			return err
		}
		log.Info().Msgf("Wrote %d bytes to %s (fd=%d)", n, *path, w.Fd())
		return nil
	})
	if err != nil {
		log.Fatal().Msgf("Write phase failed: %v", err)
	}

	r, err := gds.New(*path, gds.ModeRead, opts...)
	if err != nil {
		log.Fatal().Msgf("Failed to create file handle: %v", err)
	}
	err = r.With(func(r *gds.File) error {
		n, err := r.Read(dst, int64(*size), 0, 0)
		if err != nil {
			return err
		}
		log.Info().Msgf("Read %d bytes from %s", n, *path)
		return nil
	})
	if err != nil {
		log.Fatal().Msgf("Read phase failed: %v", err)
	}

	if !bytes.Equal(emu.HostBytes(src), emu.HostBytes(dst)) {
		log.Fatal().Msg("Round trip FAILED: read-back bytes differ")
	}
	log.Info().Msgf("Round trip OK: %d bytes in %v", *size, time.Since(start))
	os.Remove(*path)
}
