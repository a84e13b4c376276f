package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Ovii2/EventSync/internal/api/metrics"
	"github.com/Ovii2/EventSync/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Processor classifies one feedback item and publishes the result.
type Processor interface {
	ClassifyAndPublish(ctx context.Context, item domain.FeedbackItem) error
}

// Dispatcher routes pending feedback items to a fixed set of workers using
// consistent hashing on the item id. Enqueue never blocks the submitter.
type Dispatcher struct {
	workers []chan domain.FeedbackItem
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.FeedbackItem, numWorkers),
		log:     log.With().Str("component", "dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.FeedbackItem, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context, p Processor) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch, p)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands an item to the worker responsible for its id. It reports
// false when that worker's buffer is full; the item then stays pending.
func (d *Dispatcher) Enqueue(item domain.FeedbackItem) bool {
	idx := d.shardIndex(item.ID)
	select {
	case d.workers[idx] <- item:
		metrics.ClassificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		return false
	}
}

// shardIndex maps a feedback id deterministically to a worker index.
func (d *Dispatcher) shardIndex(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.FeedbackItem, p Processor) {
	defer d.wg.Done()
	depth := metrics.ClassificationQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case item := <-ch:
			depth.Dec()
			if err := d.process(ctx, p, item); err != nil {
				d.log.Error().Err(err).
					Str("feedback_id", item.ID).
					Str("event_id", item.EventID).
					Int("worker_id", id).
					Msg("classification failed")
			}
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, p Processor, item domain.FeedbackItem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.ClassifyAndPublish(ctx, item)
}
