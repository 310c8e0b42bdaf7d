// Package field runs site-law evaluators over many observation points.
// Evaluation is embarrassingly parallel: inputs are immutable for the
// duration of a call, every point is independent, and the only
// cross-point dependency (timing-window MIC aggregation) runs as a
// sequential prepare phase before the parallel map.
package field

import (
	"runtime"
	"sync"

	"github.com/brentbuffham/blastvib/charge"
	"github.com/brentbuffham/blastvib/geom"
	"github.com/brentbuffham/blastvib/sitelaw"
)

// parallelThreshold is the minimum point count to use the worker pool.
// Below this, single-threaded is faster than the dispatch overhead.
const parallelThreshold = 64

// workChunk is a contiguous range of observation points for one worker.
type workChunk struct {
	start, end int
}

// Engine evaluates grids on a persistent worker pool. An Engine is not
// safe for concurrent EvaluateGrid calls; create one per goroutine or
// serialise calls. Close releases the workers.
type Engine struct {
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool

	// Current job, read-only while workers run.
	ev      sitelaw.Evaluator
	points  []geom.Vec3
	holes   []charge.Hole
	results []sitelaw.Result
}

// NewEngine creates an engine with the given worker count; 0 means
// GOMAXPROCS.
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{numWorkers: workers}
}

// EvaluateField evaluates one observation point, running the prepare
// phase if the evaluator needs one. Convenience entry point for single
// queries; grids should use an Engine.
func EvaluateField(ev sitelaw.Evaluator, p geom.Vec3, holes []charge.Hole) sitelaw.Result {
	if prep, ok := ev.(sitelaw.Preparer); ok {
		prep.Prepare(holes)
	}
	return ev.Evaluate(p, holes)
}

// EvaluateGrid evaluates every point and returns one result per point,
// in order. Phase one runs the evaluator's Prepare (whole-blast
// aggregation) sequentially; phase two evaluates points in parallel.
func (e *Engine) EvaluateGrid(ev sitelaw.Evaluator, points []geom.Vec3, holes []charge.Hole) []sitelaw.Result {
	if prep, ok := ev.(sitelaw.Preparer); ok {
		prep.Prepare(holes)
	}

	results := make([]sitelaw.Result, len(points))
	if len(points) == 0 {
		return results
	}

	e.ev = ev
	e.points = points
	e.holes = holes
	e.results = results

	if len(points) < parallelThreshold || e.numWorkers == 1 {
		e.computeChunk(0, len(points))
	} else {
		e.computeParallel(len(points))
	}

	// Drop job references so the pool never pins a caller's data.
	e.ev = nil
	e.points = nil
	e.holes = nil
	e.results = nil

	return results
}

// Close stops the worker pool. The engine can be reused afterwards; the
// next grid call restarts the workers.
func (e *Engine) Close() {
	e.stopWorkers()
}

// computeParallel dispatches chunks to the worker pool.
func (e *Engine) computeParallel(n int) {
	if !e.running {
		e.startWorkers()
	}

	chunkSize := (n + e.numWorkers - 1) / e.numWorkers
	dispatched := 0
	for w := 0; w < e.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		e.workChan <- workChunk{start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-e.doneChan
	}
}

// computeChunk evaluates a range of points.
func (e *Engine) computeChunk(start, end int) {
	for i := start; i < end; i++ {
		e.results[i] = e.ev.Evaluate(e.points[i], e.holes)
	}
}

// startWorkers launches the persistent worker goroutines.
func (e *Engine) startWorkers() {
	if e.running {
		return
	}
	e.workChan = make(chan workChunk, e.numWorkers)
	e.doneChan = make(chan struct{}, e.numWorkers)
	e.stopChan = make(chan struct{})
	e.running = true

	for i := 0; i < e.numWorkers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (e *Engine) stopWorkers() {
	if !e.running {
		return
	}
	close(e.stopChan)
	e.wg.Wait()
	close(e.workChan)
	close(e.doneChan)
	e.running = false
}

// worker processes chunks until stopped.
func (e *Engine) worker() {
	defer e.wg.Done()
	for {
		select {
		case <-e.stopChan:
			return
		case chunk, ok := <-e.workChan:
			if !ok {
				return
			}
			e.computeChunk(chunk.start, chunk.end)
			e.doneChan <- struct{}{}
		}
	}
}
