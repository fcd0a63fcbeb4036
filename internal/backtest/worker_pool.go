package backtest

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// WorkerPool replays one observation stream under many risk configurations in parallel
type WorkerPool struct {
	workerCount int
	symbol      string
	data        []types.Observation
	jobQueue    chan ScenarioJob
	resultQueue chan ScenarioResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// ScenarioJob represents a single replay task
type ScenarioJob struct {
	ID     string
	Order  int
	Config risk.Config
}

// ScenarioResult represents the result of a scenario job
type ScenarioResult struct {
	ID       string
	Order    int
	Config   risk.Config
	Summary  Summary
	Duration time.Duration
}

// NewWorkerPool creates a new worker pool; data is shared read-only by all workers
func NewWorkerPool(ctx context.Context, workerCount, jobBufferSize int, symbol string, data []types.Observation) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workerCount: workerCount,
		symbol:      symbol,
		data:        data,
		jobQueue:    make(chan ScenarioJob, jobBufferSize),
		resultQueue: make(chan ScenarioResult, jobBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the worker pool
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop closes the job queue and waits for in-flight jobs
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// SubmitJob submits a scenario job to the pool
func (wp *WorkerPool) SubmitJob(job ScenarioJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// GetResults returns the result channel for collecting completed jobs
func (wp *WorkerPool) GetResults() <-chan ScenarioResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}

			result := wp.processJob(job)

			select {
			case wp.resultQueue <- result:
			case <-wp.ctx.Done():
				return
			}

		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) processJob(job ScenarioJob) ScenarioResult {
	startTime := time.Now()
	results := NewRunner(wp.symbol, job.Config).Run(wp.data)

	return ScenarioResult{
		ID:       job.ID,
		Order:    job.Order,
		Config:   job.Config,
		Summary:  results.Summary,
		Duration: time.Since(startTime),
	}
}

// CompareScenarios runs every job over data and returns results in job order.
// On cancellation the results collected so far are returned with ctx's error.
func CompareScenarios(ctx context.Context, symbol string, data []types.Observation, jobs []ScenarioJob, workers int) ([]ScenarioResult, error) {
	wp := NewWorkerPool(ctx, workers, len(jobs), symbol, data)
	wp.Start()

	go func() {
		defer wp.Stop()
		for i, job := range jobs {
			job.Order = i
			if err := wp.SubmitJob(job); err != nil {
				return
			}
		}
	}()

	results := make([]ScenarioResult, 0, len(jobs))
	for result := range wp.GetResults() {
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Order < results[j].Order })

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// LossLimitScenarios derives one job per equity loss limit from a base configuration
func LossLimitScenarios(base risk.Config, limits []float64) []ScenarioJob {
	jobs := make([]ScenarioJob, 0, len(limits))
	for _, limit := range limits {
		cfg := base
		cfg.EquityLossLimit = limit
		jobs = append(jobs, ScenarioJob{
			ID:     fmt.Sprintf("loss_limit_%g", limit),
			Config: cfg,
		})
	}
	return jobs
}
