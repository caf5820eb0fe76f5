package primitive

import (
	"fmt"
	"sync"
)

// Semaphore is a counting semaphore guarded by a mutex and a condition variable.
// Nobody may be blocked in Wait once the owner stops using the semaphore.
type Semaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

func NewSemaphore(count int) *Semaphore {
	if count < 0 {
		panic(fmt.Sprintf("semaphore: negative initial count %d", count))
	}

	s := &Semaphore{
		count: count,
	}
	s.cond = sync.NewCond(&s.mu)

	return s
}

// Wait blocks until the count is positive, then decrements it.
func (s *Semaphore) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// cond.Wait may return while another waiter already took the token
	for s.count <= 0 {
		s.cond.Wait()
	}

	s.count--
}

// Signal increments the count and wakes one waiter, if any.
func (s *Semaphore) Signal() {
	s.mu.Lock()
	s.count++
	s.cond.Signal()
	s.mu.Unlock()
}

func (s *Semaphore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.count
}
