package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prepdeck/prepdeck/pkg/models"
	"github.com/prepdeck/prepdeck/pkg/repository"
)

// WorkerPool polls the job queue and dispatches to registered handlers.
type WorkerPool struct {
	repo        repository.JobRepo
	handlers    map[string]Handler
	logger      *slog.Logger
	workerCount int
	pollEvery   time.Duration
	stop        chan struct{}
	wg          sync.WaitGroup
}

func NewWorkerPool(repo repository.JobRepo, handlers map[string]Handler, logger *slog.Logger, workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		repo:        repo,
		handlers:    handlers,
		logger:      logger,
		workerCount: workerCount,
		pollEvery:   time.Second,
		stop:        make(chan struct{}),
	}
}

// Start launches the worker goroutines
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop signals workers to stop and waits for them
func (p *WorkerPool) Stop() {
	close(p.stop)
	p.wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			p.logger.Info("worker stopping", "id", id)
			return
		case <-ctx.Done():
			p.logger.Info("context canceled, worker exiting", "id", id)
			return
		default:
			job, err := p.repo.FetchNextJob(ctx)
			if err != nil {
				p.logger.Error("fetch job", "err", err)
				p.sleep(time.Second)
				continue
			}
			if job == nil {
				p.sleep(p.pollEvery)
				continue
			}

			p.process(ctx, job)
		}
	}
}

func (p *WorkerPool) process(ctx context.Context, job *models.Job) {
	handler, ok := p.handlers[job.Type]
	if !ok {
		p.logger.Error("no handler for job type", "type", job.Type, "id", job.ID)
		job.Status = StatusFailed
		job.LastError = "no handler registered"
		if err := p.repo.UpdateJob(ctx, job); err != nil {
			p.logger.Error("update job", "err", err)
		}
		return
	}

	if err := handler(ctx, job); err != nil {
		job.LastError = err.Error()
		if job.Attempts >= job.MaxAttempts {
			job.Status = StatusFailed
			p.logger.Error("job failed permanently", "id", job.ID, "type", job.Type, "err", err)
		} else {
			job.Status = StatusPending
			p.logger.Warn("job failed, will retry", "id", job.ID, "type", job.Type, "attempt", job.Attempts, "err", err)
			p.sleep(BackoffDuration(job.Attempts))
		}
	} else {
		job.Status = StatusDone
		job.LastError = ""
	}

	if err := p.repo.UpdateJob(ctx, job); err != nil {
		p.logger.Error("update job", "err", err)
	}
}

// sleep waits for d unless the pool is stopping.
func (p *WorkerPool) sleep(d time.Duration) {
	select {
	case <-p.stop:
	case <-time.After(d):
	}
}
