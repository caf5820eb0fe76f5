package exchange

import (
	"errors"
	"fmt"
	"storefront/internal/primitive"

	"github.com/jacobsa/syncutil"
	"go.uber.org/zap"
)

var (
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrInvalidQuota    = errors.New("quota cannot be negative")
	ErrQuotaExhausted  = errors.New("production quota exhausted")
)

// Exchange is a fixed-size circular buffer shared by producers and consumers.
// Free slots are counted by emptySlots, stored items by filledSlots.
// Consumers stop once quota items have been consumed.
type Exchange struct {
	logger   *zap.Logger
	capacity int
	quota    int

	emptySlots  *primitive.Semaphore
	filledSlots *primitive.Semaphore

	mu syncutil.InvariantMutex

	// INVARIANT: len(buffer) == capacity
	// INVARIANT: 0 <= writeIndex < capacity
	// INVARIANT: 0 <= readIndex < capacity
	// INVARIANT: 0 <= consumed <= written <= reserved <= quota
	// INVARIANT: written-consumed <= capacity
	//
	// GUARDED_BY(mu)
	buffer     []int
	writeIndex int
	readIndex  int
	reserved   int
	written    int
	consumed   int
}

func NewExchange(logger *zap.Logger, capacity, quota int) (*Exchange, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	if quota < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuota, quota)
	}

	e := &Exchange{
		logger:      logger,
		capacity:    capacity,
		quota:       quota,
		emptySlots:  primitive.NewSemaphore(capacity),
		filledSlots: primitive.NewSemaphore(0),
		buffer:      make([]int, capacity),
	}
	e.mu = syncutil.NewInvariantMutex(e.checkInvariants)

	if quota == 0 {
		// Nothing will ever be read, so the closing token has to come from here.
		e.filledSlots.Signal()
	}

	return e, nil
}

// Put stores item in the next free slot, blocking while the buffer is full.
// It returns ErrQuotaExhausted without blocking once quota items have been
// handed to Put, so any number of producers may share one exchange.
func (e *Exchange) Put(item int) error {
	e.mu.Lock()
	if e.reserved == e.quota {
		e.mu.Unlock()
		return ErrQuotaExhausted
	}
	e.reserved++
	e.mu.Unlock()

	e.emptySlots.Wait()

	e.mu.Lock()
	idx := e.writeIndex
	e.buffer[idx] = item
	e.writeIndex = (e.writeIndex + 1) % e.capacity
	e.written++
	e.mu.Unlock()

	e.logger.Debug("item written",
		zap.Int("item", item),
		zap.Int("write_index", idx),
	)

	e.filledSlots.Signal()

	return nil
}

// Take removes the oldest item, blocking while the buffer is empty.
// ok is false once the quota has been consumed; the caller must stop taking.
func (e *Exchange) Take() (item int, ok bool) {
	e.filledSlots.Wait()

	e.mu.Lock()
	if e.consumed == e.quota {
		e.mu.Unlock()

		// The token taken above did not pay for a read, pass it on
		// so the next consumer can observe the quota as well.
		e.filledSlots.Signal()
		e.logger.Debug("quota reached, consumer released")

		return 0, false
	}

	idx := e.readIndex
	item = e.buffer[idx]
	e.readIndex = (e.readIndex + 1) % e.capacity
	e.consumed++
	last := e.consumed == e.quota
	e.mu.Unlock()

	e.logger.Debug("item read",
		zap.Int("item", item),
		zap.Int("read_index", idx),
	)

	e.emptySlots.Signal()

	if last {
		// Closing token: wakes one consumer, which wakes the next one and so on.
		e.filledSlots.Signal()
		e.logger.Debug("last item consumed", zap.Int("quota", e.quota))
	}

	return item, true
}

func (e *Exchange) Capacity() int {
	return e.capacity
}

func (e *Exchange) Quota() int {
	return e.quota
}

func (e *Exchange) Produced() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.written
}

func (e *Exchange) Consumed() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.consumed
}

// InFlight returns the number of items written but not yet read.
func (e *Exchange) InFlight() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.written - e.consumed
}

func (e *Exchange) checkInvariants() {
	if len(e.buffer) != e.capacity {
		panic(fmt.Sprintf("buffer length %d, capacity %d", len(e.buffer), e.capacity))
	}

	if e.writeIndex < 0 || e.writeIndex >= e.capacity {
		panic(fmt.Sprintf("write index %d out of range [0, %d)", e.writeIndex, e.capacity))
	}

	if e.readIndex < 0 || e.readIndex >= e.capacity {
		panic(fmt.Sprintf("read index %d out of range [0, %d)", e.readIndex, e.capacity))
	}

	if e.consumed < 0 || e.consumed > e.written || e.written > e.reserved || e.reserved > e.quota {
		panic(fmt.Sprintf(
			"counters out of order: consumed %d, written %d, reserved %d, quota %d",
			e.consumed, e.written, e.reserved, e.quota,
		))
	}

	if e.written-e.consumed > e.capacity {
		panic(fmt.Sprintf("%d items in flight, capacity %d", e.written-e.consumed, e.capacity))
	}

	if (e.writeIndex-e.readIndex-(e.written-e.consumed))%e.capacity != 0 {
		panic(fmt.Sprintf(
			"indices disagree with counters: write %d, read %d, in flight %d",
			e.writeIndex, e.readIndex, e.written-e.consumed,
		))
	}
}
