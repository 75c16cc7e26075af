//go:build linux
// +build linux

package gds

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Meesho/BharatMLStack/gdsfile/internal/bindings"
	"github.com/Meesho/BharatMLStack/gdsfile/internal/config"
	"github.com/Meesho/BharatMLStack/gdsfile/internal/metric"
)

// Driver is the process-wide session with the native subsystem. At
// most one live instance exists; the first File construction opens it
// and Teardown closes it at process exit. Every File holds a
// reference, counted for teardown diagnostics.
type Driver struct {
	lib  bindings.Lib
	refs int
}

var (
	driverMu sync.Mutex
	driver   *Driver
)

// OpenDriver opens the driver session eagerly. Optional: constructing
// a File opens it on demand.
func OpenDriver() error {
	driverMu.Lock()
	defer driverMu.Unlock()
	_, err := ensureDriverLocked(defaultLib)
	return err
}

func acquireDriver(lib bindings.Lib) (*Driver, error) {
	driverMu.Lock()
	defer driverMu.Unlock()
	d, err := ensureDriverLocked(lib)
	if err != nil {
		return nil, err
	}
	d.refs++
	return d, nil
}

func ensureDriverLocked(lib bindings.Lib) (*Driver, error) {
	if driver != nil {
		return driver, nil
	}
	props := config.Load()
	applyLogLevel(props.LogLevel)
	if props.MetricsEnabled {
		metric.Init(props.StatsdAddress)
	}
	if err := lib.DriverOpen(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDriverInit, err)
	}
	metric.Incr(metric.DriverOpenCount)
	log.Info().Msgf("gds driver opened (max_direct_io_size_kb=%d, poll_mode=%v)",
		props.MaxDirectIOSizeKB, props.UsePollMode)
	driver = &Driver{lib: lib}
	return driver, nil
}

// Teardown closes the driver session. Intended to run once at process
// exit (defer from main). Idempotent; failures are logged, never
// escalated.
func Teardown() {
	driverMu.Lock()
	defer driverMu.Unlock()
	if driver == nil {
		return
	}
	if driver.refs > 0 {
		log.Debug().Msgf("Tearing down gds driver with %d file handles still referenced", driver.refs)
	}
	if err := driver.lib.DriverClose(); err != nil {
		log.Warn().Msgf("Driver close failed during teardown: %v", err)
	} else {
		metric.Incr(metric.DriverCloseCount)
	}
	driver = nil
}

func applyLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Msgf("Unrecognized log level %q, keeping current level", level)
		return
	}
	zerolog.SetGlobalLevel(lvl)
}
