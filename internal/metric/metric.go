// Package metric emits statsd counters for driver and transfer
// activity. Everything is a no-op until Init succeeds, so callers
// never need to gate their calls.
package metric

import (
	"sync"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rs/zerolog/log"
)

const (
	DriverOpenCount       = "driver_open_count"
	DriverCloseCount      = "driver_close_count"
	HandleRegisterCount   = "handle_register_count"
	HandleDeregisterCount = "handle_deregister_count"
	ReadBytes             = "read_bytes"
	WriteBytes            = "write_bytes"
	ReadLatency           = "read_latency"
	WriteLatency          = "write_latency"
)

var (
	// it is safe to use one client from multiple goroutines simultaneously
	client *statsd.Client
	once   sync.Once
)

// Init initializes the metrics client
func Init(address string) {
	once.Do(func() {
		c, err := statsd.New(address, statsd.WithNamespace("gdsfile."))
		if err != nil {
			log.Warn().Msgf("Failed to initialize statsd client, metrics disabled: %v", err)
			return
		}
		client = c
	})
}

func Incr(name string) {
	Count(name, 1)
}

func Count(name string, value int64) {
	if client == nil {
		return
	}
	if err := client.Count(name, value, nil, 1); err != nil {
		log.Debug().Msgf("Failed to emit metric %s: %v", name, err)
	}
}

func Timing(name string, d time.Duration) {
	if client == nil {
		return
	}
	if err := client.Timing(name, d, nil, 1); err != nil {
		log.Debug().Msgf("Failed to emit metric %s: %v", name, err)
	}
}
