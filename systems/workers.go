package systems

import (
	"runtime"
	"sync"
)

// defaultParallelCutoff is the minimum element count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const defaultParallelCutoff = 64

// workChunk represents a range of elements for a worker to process.
type workChunk struct {
	start, end int
	fn         func(start, end int)
}

// WorkerPool runs data-parallel passes over index ranges on persistent goroutines.
// Run blocks until every chunk of the pass has finished, so consecutive calls
// form a barrier between passes.
type WorkerPool struct {
	numWorkers int
	cutoff     int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewWorkerPool creates a pool sized to GOMAXPROCS. Workers start lazily.
// A cutoff <= 0 selects the default.
func NewWorkerPool(cutoff int) *WorkerPool {
	if cutoff <= 0 {
		cutoff = defaultParallelCutoff
	}
	return &WorkerPool{
		numWorkers: runtime.GOMAXPROCS(0),
		cutoff:     cutoff,
	}
}

// start launches persistent worker goroutines.
func (p *WorkerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop signals all workers to exit and waits for them.
// The pool restarts on the next parallel Run.
func (p *WorkerPool) Stop() {
	if p == nil || !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// Run calls fn over [0, n) split into contiguous chunks and waits for all of them.
// fn must only write to elements inside its own range.
// A nil pool runs fn inline.
func (p *WorkerPool) Run(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if p == nil || n < p.cutoff || p.numWorkers < 2 {
		fn(0, n)
		return
	}

	p.start()

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		p.workChan <- workChunk{start: start, end: end, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
