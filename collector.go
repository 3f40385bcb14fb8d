package ammetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/electroqa/ammetest/types"
)

// maxErrorEvents caps the collector's in-memory error log. Once full,
// the oldest event is dropped for each new one.
const maxErrorEvents = 1024

// sample is one tagged item on the producer/consumer channel. Exactly
// one of value or err is meaningful. Tagging every item is what keeps
// a producer-side fault from stranding the consumer: the fault arrives
// on the same channel the consumer is already waiting on.
type sample struct {
	value float64
	err   error
}

// Collector runs fixed-rate sampling sessions against device
// endpoints, one producer goroutine per session.
type Collector struct {
	// Client issues the measurement exchanges.
	Client Client

	// Injector, when non-nil, perturbs every fetched value.
	Injector *Injector

	// Devices maps device kind to its endpoint configuration.
	Devices map[string]DeviceConfig

	// Sampling holds the session pacing parameters and the
	// fault policy.
	Sampling SamplingConfig

	mu       sync.Mutex
	errorLog []types.ErrorEvent
}

// Collect runs one collection session: a producer goroutine samples
// the endpoint count times at the configured rate, the calling side
// consumes the tagged results and stamps each with its dequeue time
// and testID.
//
// With the default policy the first fault aborts the session and is
// returned to the caller. With ContinueOnError the fault is logged and
// sampling proceeds; failed samples contribute no Measurement, so a
// fully faulted session returns an empty list and a full error log.
func (c *Collector) Collect(ctx context.Context, kind, testID string) (types.Measurements, error) {
	dev, ok := c.Devices[kind]
	if !ok {
		return nil, fmt.Errorf("unknown device kind: %q", kind)
	}
	if err := c.Sampling.validate(); err != nil {
		return nil, err
	}
	count := c.Sampling.Count
	interval := c.Sampling.Interval()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered to the full session size so the producer never
	// blocks on send, even when the consumer bails out early.
	samples := make(chan sample, count)
	go c.produce(ctx, dev, kind, count, interval, samples)

	measurements := make(types.Measurements, 0, count)
	for s := range samples {
		if s.err != nil {
			c.logError(kind, s.err)
			if c.Sampling.ContinueOnError {
				continue
			}
			cancel()
			return nil, s.err
		}
		measurements = append(measurements, types.Measurement{
			Timestamp: time.Now(),
			Value:     s.value,
			TestID:    testID,
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return measurements, nil
}

// produce is the session's single background worker. It fetches count
// samples, pacing each iteration to the interval. There is no
// catch-up: an overrunning request delays the next tick rather than
// compressing it, so true throughput degrades under fault load.
func (c *Collector) produce(ctx context.Context, dev DeviceConfig, kind string, count int, interval time.Duration, out chan<- sample) {
	defer close(out)

	endpoint := dev.Endpoint()
	command := []byte(dev.Command)

	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		value, err := c.fetch(endpoint, command)
		out <- sample{value: value, err: err}
		if err != nil && !c.Sampling.ContinueOnError {
			return
		}

		if remaining := interval - time.Since(start); remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
				return
			}
		}
	}
}

// fetch obtains one value from the endpoint and runs it through the
// fault injector. Injected readings are validated here: a nil reading
// is an empty response, a non-float reading is corrupt data.
func (c *Collector) fetch(endpoint string, command []byte) (float64, error) {
	value, err := c.Client.Request(endpoint, command)
	if err != nil {
		return 0, err
	}
	if c.Injector == nil {
		return value, nil
	}

	reading, err := c.Injector.Apply(value)
	if err != nil {
		return 0, err
	}
	switch v := reading.(type) {
	case nil:
		return 0, &types.ValidationError{
			Kind:    types.FaultEmptyResponse,
			Message: "empty reading from fault injector",
		}
	case float64:
		return v, nil
	default:
		return 0, &types.ValidationError{
			Kind:    types.FaultCorruptData,
			Message: fmt.Sprintf("non-numeric reading %v (%T) from fault injector", v, v),
		}
	}
}

func (c *Collector) logError(kind string, err error) {
	faultKind, _ := types.FaultKindOf(err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errorLog) >= maxErrorEvents {
		c.errorLog = c.errorLog[1:]
	}
	c.errorLog = append(c.errorLog, types.ErrorEvent{
		DeviceKind: kind,
		FaultKind:  faultKind,
		Message:    err.Error(),
		Timestamp:  time.Now(),
	})
}

// ErrorLog returns a copy of the faults caught so far. The log is
// cleared only by recreating the collector.
func (c *Collector) ErrorLog() []types.ErrorEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	log := make([]types.ErrorEvent, len(c.errorLog))
	copy(log, c.errorLog)
	return log
}
