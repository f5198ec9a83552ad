package engine

import (
	"sync"

	"github.com/nsforge/formcalc/value"
)

// layerOutcome is one formula's evaluation result within a layer, collected
// locally by the worker that produced it and committed to the shared caches
// only after the whole layer has joined (spec §5: workers never write shared
// state mid-layer).
type layerOutcome struct {
	name  string
	value value.Value
	err   error
}

// evalLayer runs fn for every name in layer across size workers, using a
// buffered job channel plus a WaitGroup — the same fan-out shape as a
// population-evaluation worker pool, adapted here to dispatch one formula
// evaluation per job instead of one fitness evaluation. Each worker writes
// its outcome into its own slot of a pre-sized slice (indexed by position, not
// a shared map), so no synchronization is needed beyond the WaitGroup itself.
// size == 1 degrades to sequential execution with identical results: a single
// worker simply drains the channel itself, one job at a time.
func evalLayer(layer []string, size int, fn func(name string) (value.Value, error)) []layerOutcome {
	if size < 1 {
		size = 1
	}
	workers := size
	if workers > len(layer) {
		workers = len(layer)
	}
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]layerOutcome, len(layer))

	type job struct {
		idx  int
		name string
	}
	jobs := make(chan job, len(layer))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				v, err := fn(j.name)
				outcomes[j.idx] = layerOutcome{name: j.name, value: v, err: err}
			}
		}()
	}

	for i, name := range layer {
		jobs <- job{idx: i, name: name}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}
