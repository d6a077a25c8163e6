// Package queue implements the bookkeeping queue that drives a patch run. It
// records which items are pending, in progress, successful or skipped, and
// provides a [Progress] snapshot for reporting and the user interface.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// DecisionSuccess is returned by a processFunc when an item was processed.
	DecisionSuccess = 1

	// DecisionSkipped is returned by a processFunc when an item was skipped.
	DecisionSkipped = 0

	// DecisionAbort is returned by a processFunc when an item was skipped and
	// no further items should be processed.
	DecisionAbort = -1
)

// ErrProcessingAborted is returned by [GenericQueue.DequeueAndProcess] when
// the processFunc has returned [DecisionAbort] for an item.
var ErrProcessingAborted = errors.New("processing was aborted")

// GenericQueue is a generic queue that can hold any comparable type of items.
type GenericQueue[T comparable] struct {
	sync.RWMutex
	hasStarted  bool
	hasFinished bool
	startTime   time.Time
	finishTime  time.Time
	head        int
	items       []T
	success     []T
	skipped     []T
	inProgress  map[T]struct{}
}

// NewGenericQueue returns a pointer to a new [GenericQueue].
func NewGenericQueue[T comparable]() *GenericQueue[T] {
	return &GenericQueue[T]{
		inProgress: make(map[T]struct{}),
	}
}

// HasRemainingItems returns whether a queue has remaining items to process.
func (q *GenericQueue[T]) HasRemainingItems() bool {
	q.RLock()
	defer q.RUnlock()

	return q.head < len(q.items)
}

// GetSuccessful returns a copy of the internal slice holding all successful
// items.
func (q *GenericQueue[T]) GetSuccessful() []T {
	q.RLock()
	defer q.RUnlock()

	result := make([]T, len(q.success))
	copy(result, q.success)

	return result
}

// GetSkipped returns a copy of the internal slice holding all skipped items.
func (q *GenericQueue[T]) GetSkipped() []T {
	q.RLock()
	defer q.RUnlock()

	result := make([]T, len(q.skipped))
	copy(result, q.skipped)

	return result
}

// Enqueue adds items to the queue.
func (q *GenericQueue[T]) Enqueue(items ...T) {
	q.Lock()
	defer q.Unlock()

	if q.hasFinished {
		q.finishTime = time.Time{}
		q.hasFinished = false
	}

	q.items = append(q.items, items...)
}

// Dequeue returns an item from the queue and advances the queue head.
func (q *GenericQueue[T]) Dequeue() (T, bool) { //nolint:ireturn
	q.Lock()
	defer q.Unlock()

	if q.head >= len(q.items) {
		var zeroVal T

		return zeroVal, false
	}

	if !q.hasStarted {
		q.startTime = time.Now()
		q.hasStarted = true
	}

	item := q.items[q.head]
	q.head++

	return item, true
}

// SetSuccess sets given in-progress queue items as successfully processed. The
// items are removed from the in-progress map in the process.
func (q *GenericQueue[T]) SetSuccess(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.success = append(q.success, item)
	}

	q.checkFinished()
}

// SetSkipped sets given in-progress queue items as skipped. The items are
// removed from the in-progress map in the process.
func (q *GenericQueue[T]) SetSkipped(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.skipped = append(q.skipped, item)
	}

	q.checkFinished()
}

// SetProcessing sets given items as in progress (processing).
func (q *GenericQueue[T]) SetProcessing(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		q.inProgress[item] = struct{}{}
	}
}

// checkFinished marks the queue as finished once every item was dequeued and
// none are in progress anymore. The caller must hold the write lock.
func (q *GenericQueue[T]) checkFinished() {
	if q.hasFinished || q.head < len(q.items) || len(q.inProgress) > 0 {
		return
	}

	q.finishTime = time.Now()
	q.hasFinished = true
}

// Progress returns the [Progress] for the [GenericQueue].
func (q *GenericQueue[T]) Progress() Progress {
	q.RLock()
	defer q.RUnlock()

	totalItems := len(q.items)

	processedItems := len(q.success) + len(q.skipped)
	processedItems = min(processedItems, totalItems)

	var progressPct float64
	if totalItems > 0 {
		progressPct = float64(processedItems) / float64(totalItems) * 100 //nolint:mnd
		progressPct = max(float64(0), min(progressPct, float64(100)))     //nolint:mnd
	}

	var eta time.Time
	var timeLeft time.Duration
	var itemsPerSec float64

	if q.hasStarted && processedItems > 0 && processedItems < totalItems {
		elapsed := time.Since(q.startTime)
		itemsPerSec = float64(processedItems) / max(elapsed.Seconds(), 1)

		if itemsPerSec > 0 {
			remainingSeconds := float64(totalItems-processedItems) / itemsPerSec
			timeLeft = time.Duration(remainingSeconds * float64(time.Second))
			eta = time.Now().Add(timeLeft)
		}
	}

	return Progress{
		HasStarted:      q.hasStarted,
		HasFinished:     q.hasFinished,
		StartTime:       q.startTime,
		FinishTime:      q.finishTime,
		ProgressPct:     progressPct,
		TotalItems:      totalItems,
		ProcessedItems:  processedItems,
		InProgressItems: len(q.inProgress),
		SuccessItems:    len(q.success),
		SkippedItems:    len(q.skipped),
		ETA:             eta,
		TimeLeft:        timeLeft,
		ItemsPerSec:     itemsPerSec,
	}
}

// DequeueAndProcess sequentially dequeues and processes items using the given
// processFunc. The processFunc is expected to return only an integer with the
// processing function's decision for that item.
//
// Possible decisions to be returned: [DecisionSuccess], [DecisionSkipped],
// [DecisionAbort].
//
// An error is returned in case of a context cancellation, or wrapping
// [ErrProcessingAborted] when the processFunc has decided to abort. Items not
// yet dequeued remain in the queue in either case.
func (q *GenericQueue[T]) DequeueAndProcess(ctx context.Context, processFunc func(T) int) error {
	for {
		if ctx.Err() != nil {
			return fmt.Errorf("(queue-proc) %w", ctx.Err())
		}

		item, ok := q.Dequeue()
		if !ok {
			break
		}

		q.SetProcessing(item)

		switch processFunc(item) {
		case DecisionAbort:
			q.SetSkipped(item)

			return fmt.Errorf("(queue-proc) %w", ErrProcessingAborted)

		case DecisionSkipped:
			q.SetSkipped(item)

		case DecisionSuccess:
			q.SetSuccess(item)
		}
	}

	return nil
}
