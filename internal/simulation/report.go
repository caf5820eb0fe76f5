package simulation

import (
	"slices"
	"sync"

	"github.com/facette/natsort"
)

// Report collects the items bought by every consumer during a run.
type Report struct {
	mu    sync.Mutex
	reads map[string][]int
}

func newReport() *Report {
	return &Report{
		reads: make(map[string][]int),
	}
}

func (r *Report) record(consumer string, item int) {
	r.mu.Lock()
	r.reads[consumer] = append(r.reads[consumer], item)
	r.mu.Unlock()
}

// Consumers returns the names of consumers that bought at least one item,
// in natural order (consumer-2 before consumer-10).
func (r *Report) Consumers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.reads))
	for name := range r.reads {
		names = append(names, name)
	}
	natsort.Sort(names)

	return names
}

// Reads returns the items bought by consumer in purchase order.
func (r *Report) Reads(consumer string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.reads[consumer])
}

func (r *Report) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int
	for _, items := range r.reads {
		total += len(items)
	}

	return total
}

// Items returns every bought item in ascending order.
func (r *Report) Items() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []int
	for _, reads := range r.reads {
		items = append(items, reads...)
	}
	slices.Sort(items)

	return items
}

type ConsumerSummary struct {
	Consumer string
	Items    []int
}

// Summary lists the purchases of every consumer, consumers in natural order.
func (r *Report) Summary() []ConsumerSummary {
	names := r.Consumers()

	summary := make([]ConsumerSummary, 0, len(names))
	for _, name := range names {
		summary = append(summary, ConsumerSummary{
			Consumer: name,
			Items:    r.Reads(name),
		})
	}

	return summary
}
