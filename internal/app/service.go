// Package app wires the loader, normalizer, linkage engine and match store
// into runs, and serves them synchronously or through a job queue.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pacematch/internal/adapters/mq/queue"
	"github.com/okian/pacematch/internal/adapters/mq/worker"
	"github.com/okian/pacematch/internal/adapters/repository"
	"github.com/okian/pacematch/internal/adapters/source"
	"github.com/okian/pacematch/internal/domain/dataset"
	"github.com/okian/pacematch/internal/domain/dedupe"
	"github.com/okian/pacematch/internal/domain/linkage"
	"github.com/okian/pacematch/internal/domain/model"
	"github.com/okian/pacematch/internal/domain/normalize"
	"github.com/okian/pacematch/internal/domain/race"
	"github.com/okian/pacematch/pkg/logger"
	"github.com/okian/pacematch/pkg/metrics"
)

const (
	defaultWorkerCount = 2
	defaultQueueSize   = 64
	defaultJobHistory  = 1000
	defaultDataDir     = "data"
	stopTimeout        = 30 * time.Second
)

// Loader reads the raw rows of one race edition.
type Loader interface {
	LoadOfficial(ctx context.Context, r race.Race) ([]normalize.OfficialRow, error)
	LoadCommunity(ctx context.Context, r race.Race) ([]normalize.CommunityRow, error)
}

// Service runs linkage for race editions and keeps the accumulated matches.
type Service struct {
	mu sync.RWMutex

	catalog *race.Catalog
	loader  Loader
	engine  *linkage.Engine
	store   repository.Store
	guard   dedupe.Guard
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	workerCount int
	queueSize   int
	partitions  int
	jobHistory  int

	jobsMu   sync.Mutex
	jobs     map[string]*Job
	jobOrder []string

	runsCompleted atomic.Int64
	runsFailed    atomic.Int64

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Unset dependencies default to the full race
// catalog, a loader and CSV store under "data", and the default engine.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
		partitions:  1,
		jobHistory:  defaultJobHistory,
		guard:       dedupe.NewInMemoryGuard(),
		jobs:        make(map[string]*Job),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.catalog == nil {
		s.catalog = race.NewCatalog()
	}
	if s.loader == nil {
		s.loader = source.NewLoader(defaultDataDir)
	}
	if s.engine == nil {
		s.engine = linkage.New()
	}
	if s.store == nil {
		s.store = repository.NewCSVStore(filepath.Join(defaultDataDir, "master_matches.csv"))
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}
	return s
}

// Catalog returns the race catalog.
func (s *Service) Catalog() *race.Catalog { return s.catalog }

// Engine returns the linkage engine.
func (s *Service) Engine() *linkage.Engine { return s.engine }

// Start launches the job queue and worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.HandlerFunc(s.handle), worker.WithName("link"))
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "linkage service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("partitions", s.partitions),
	)
	return nil
}

// Stop closes the queue and waits for running jobs. Queued jobs that never
// started are marked failed.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping linkage service...")

	_ = s.queue.Close()
	shutdownCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := s.pool.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "worker pool did not stop cleanly", logger.Error(err))
	}
	s.cancel()

	for r := range s.queue.Dequeue() {
		s.finishJob(r.ID, nil, ErrNotStarted)
		s.guard.Release(ctx, r.RaceID)
	}

	s.started = false
	s.logger.Info(ctx, "linkage service stopped")
}

// Close stops the service and closes the match store.
func (s *Service) Close() error {
	s.Stop()
	return s.store.Close()
}

// Run links one race synchronously and appends the matches to the store.
func (s *Service) Run(ctx context.Context, raceID string) (RunSummary, error) {
	r, err := s.catalog.Lookup(raceID)
	if err != nil {
		return RunSummary{}, err
	}
	if !s.guard.Acquire(ctx, r.ID) {
		return RunSummary{}, fmt.Errorf("%w: %s", ErrBusy, r.ID)
	}
	defer s.guard.Release(ctx, r.ID)

	return s.run(ctx, uuid.NewString(), r)
}

// Submit queues an asynchronous run of raceID.
func (s *Service) Submit(ctx context.Context, raceID string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return Job{}, ErrNotStarted
	}
	r, err := s.catalog.Lookup(raceID)
	if err != nil {
		return Job{}, err
	}
	if !s.guard.Acquire(ctx, r.ID) {
		return Job{}, fmt.Errorf("%w: %s", ErrBusy, r.ID)
	}

	req := model.RunRequest{ID: uuid.NewString(), RaceID: r.ID, SubmittedAt: time.Now().UTC()}
	job := s.addJob(req)

	if err := s.queue.Enqueue(ctx, req); err != nil {
		s.guard.Release(ctx, r.ID)
		s.removeJob(req.ID)
		if errors.Is(err, queue.ErrFull) {
			return Job{}, ErrBackpressure
		}
		return Job{}, fmt.Errorf("enqueue run: %w", err)
	}

	s.logger.Debug(ctx, "run queued", logger.String("run_id", req.ID), logger.String("race", r.ID))
	return job, nil
}

// Job returns a snapshot of the job with the given id.
func (s *Service) Job(_ context.Context, id string) (Job, error) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return *j, nil
}

// Dataset builds an immutable dataset from every stored match.
func (s *Service) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	rows, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	metrics.UpdateRepositoryRecordsTotal(len(rows))
	return dataset.New(rows, s.catalog), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"partitions":    s.partitions,
		"runsCompleted": s.runsCompleted.Load(),
		"runsFailed":    s.runsFailed.Load(),
		"inFlight":      s.guard.Size(),
		"timeTolerance": s.engine.TimeTolerance(),
		"nameThreshold": s.engine.NameThreshold(),
	}

	if s.started {
		queueLen := s.queue.Len()
		stats["queueLength"] = queueLen
		stats["activeWorkers"] = s.pool.Active()
		metrics.UpdateQueueSize(queueLen)
	}

	s.jobsMu.Lock()
	stats["jobs"] = len(s.jobs)
	s.jobsMu.Unlock()

	if n, err := s.store.Count(context.Background()); err == nil {
		stats["storedMatches"] = n
		metrics.UpdateRepositoryRecordsTotal(n)
	}
	return stats
}

// handle executes a queued request on a worker.
func (s *Service) handle(ctx context.Context, req model.RunRequest) error {
	defer s.guard.Release(ctx, req.RaceID)

	s.startJob(req.ID)
	r, err := s.catalog.Lookup(req.RaceID)
	if err != nil {
		s.finishJob(req.ID, nil, err)
		return err
	}
	summary, err := s.run(ctx, req.ID, r)
	if err != nil {
		s.finishJob(req.ID, nil, err)
		return err
	}
	s.finishJob(req.ID, &summary, nil)
	return nil
}

// run executes load, normalize, link and append for r.
func (s *Service) run(ctx context.Context, runID string, r race.Race) (summary RunSummary, err error) {
	start := time.Now()
	ctx = logger.ContextWith(ctx, logger.String("run_id", runID), logger.String("race", r.ID))
	log := s.logger.Named("run")
	metrics.RecordRunStarted()
	defer func() {
		if err != nil {
			s.runsFailed.Add(1)
			metrics.RecordRunFailed()
			metrics.RecordErrorByComponent("app", "run")
			log.Error(ctx, "run failed", logger.Error(err))
		}
	}()

	officialRows, err := s.loader.LoadOfficial(ctx, r)
	if err != nil {
		return RunSummary{}, fmt.Errorf("load official %s: %w", r.ID, err)
	}
	communityRows, err := s.loader.LoadCommunity(ctx, r)
	if err != nil {
		return RunSummary{}, fmt.Errorf("load community %s: %w", r.ID, err)
	}

	official := normalize.Official(r.ID, officialRows)
	community := normalize.Community(communityRows)
	dropped := make([]normalize.Rejection, 0, len(official.Dropped)+len(community.Dropped))
	dropped = append(dropped, official.Dropped...)
	dropped = append(dropped, community.Dropped...)
	for _, d := range dropped {
		metrics.RecordRowDropped(d.Source, dropReason(d.Err))
		log.Warn(ctx, "row dropped",
			logger.String("input", d.Source),
			logger.Int("line", d.Line),
			logger.Error(d.Err),
		)
	}

	matches, err := s.engine.LinkParallel(ctx, community.Records, official.Records, s.partitions)
	if err != nil {
		return RunSummary{}, err
	}
	if err := s.store.Append(ctx, matches); err != nil {
		return RunSummary{}, fmt.Errorf("append matches: %w", err)
	}

	summary = RunSummary{
		RunID:     runID,
		RaceID:    r.ID,
		Official:  len(official.Records),
		Community: len(community.Records),
		Dropped:   len(dropped),
		Matched:   len(matches),
		Duration:  time.Since(start),
	}
	s.runsCompleted.Add(1)
	metrics.RecordRunResult(r.ID, summary.Official, summary.Community, summary.Matched,
		float64(summary.Duration.Milliseconds()))
	log.Info(ctx, "run finished",
		logger.Int("official", summary.Official),
		logger.Int("community", summary.Community),
		logger.Int("dropped", summary.Dropped),
		logger.Int("matched", summary.Matched),
		logger.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, normalize.ErrMissingField):
		return "missing_field"
	case errors.Is(err, normalize.ErrFormat):
		return "format"
	default:
		return "other"
	}
}

func (s *Service) addJob(req model.RunRequest) Job {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	j := &Job{ID: req.ID, RaceID: req.RaceID, Status: JobQueued, SubmittedAt: req.SubmittedAt}
	s.jobs[j.ID] = j
	s.jobOrder = append(s.jobOrder, j.ID)
	s.evictJobsLocked()
	return *j
}

func (s *Service) removeJob(id string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	delete(s.jobs, id)
	for i, jid := range s.jobOrder {
		if jid == id {
			s.jobOrder = append(s.jobOrder[:i], s.jobOrder[i+1:]...)
			break
		}
	}
}

func (s *Service) startJob(id string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if j, ok := s.jobs[id]; ok {
		now := time.Now().UTC()
		j.Status = JobRunning
		j.StartedAt = &now
	}
}

func (s *Service) finishJob(id string, summary *RunSummary, err error) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	j.FinishedAt = &now
	if err != nil {
		j.Status = JobFailed
		j.Error = err.Error()
		return
	}
	j.Status = JobDone
	j.Summary = summary
}

// evictJobsLocked drops the oldest finished jobs beyond the history bound.
func (s *Service) evictJobsLocked() {
	for len(s.jobOrder) > s.jobHistory {
		evicted := false
		for i, id := range s.jobOrder {
			if s.jobs[id].finished() {
				delete(s.jobs, id)
				s.jobOrder = append(s.jobOrder[:i], s.jobOrder[i+1:]...)
				evicted = true
				break
			}
		}
		if !evicted {
			return
		}
	}
}
