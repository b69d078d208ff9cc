package audit

import (
	"context"
	"time"

	"github.com/kilianp07/pilgrimcast/core/logger"
	"github.com/kilianp07/pilgrimcast/core/metrics"
)

// Subscriber is the part of an event bus the Recorder consumes.
type Subscriber interface {
	Subscribe() <-chan metrics.PredictionEvent
	Unsubscribe(<-chan metrics.PredictionEvent)
}

// Recorder appends every prediction event published on a bus to a Store.
// It runs in its own goroutine so a slow store never delays a response;
// events are dropped by the bus when the recorder falls behind.
type Recorder struct {
	store Store
	log   logger.Logger
	done  chan struct{}
}

// StartRecorder subscribes to bus and records events until the bus is closed
// or ctx is canceled. On cancellation the events already buffered are still
// written before the recorder exits.
func StartRecorder(ctx context.Context, bus Subscriber, store Store, log logger.Logger) *Recorder {
	r := &Recorder{store: store, log: log, done: make(chan struct{})}
	sub := bus.Subscribe()
	go func() {
		defer close(r.done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				r.drain(sub)
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				r.record(ev)
			}
		}
	}()
	return r
}

func (r *Recorder) drain(sub <-chan metrics.PredictionEvent) {
	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				return
			}
			r.record(ev)
		default:
			return
		}
	}
}

func (r *Recorder) record(ev metrics.PredictionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.Append(ctx, NewRecord(ev)); err != nil {
		r.log.Errorf("audit append %s: %v", ev.ID, err)
	}
}

// Done is closed once the recorder goroutine has exited.
func (r *Recorder) Done() <-chan struct{} { return r.done }

// Wait blocks until the recorder has exited or timeout elapses, and reports
// whether it exited.
func (r *Recorder) Wait(timeout time.Duration) bool {
	select {
	case <-r.done:
		return true
	case <-time.After(timeout):
		return false
	}
}
