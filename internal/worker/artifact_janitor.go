package worker

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Sweeper removes artifacts older than ttl and reports how many it deleted.
type Sweeper interface {
	Sweep(ttl time.Duration) (int, error)
}

// ArtifactJanitor periodically removes import/export files left behind by aborted requests.
type ArtifactJanitor struct {
	scheduler gocron.Scheduler
	store     Sweeper
	ttl       time.Duration
	logger    *zap.Logger
}

// NewArtifactJanitor schedules a sweep every interval. Call Start to begin.
func NewArtifactJanitor(store Sweeper, ttl, interval time.Duration, logger *zap.Logger) (*ArtifactJanitor, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	j := &ArtifactJanitor{scheduler: s, store: store, ttl: ttl, logger: logger}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(j.RunOnce),
		gocron.WithName("artifact-janitor"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}
	return j, nil
}

// RunOnce performs a single sweep.
func (j *ArtifactJanitor) RunOnce() {
	removed, err := j.store.Sweep(j.ttl)
	if err != nil {
		j.logger.Warn("artifact sweep failed", zap.Error(err), zap.Int("removed", removed))
		return
	}
	if removed > 0 {
		j.logger.Info("artifact sweep", zap.Int("removed", removed))
	}
}

// Start begins running the scheduled sweeps.
func (j *ArtifactJanitor) Start() {
	j.scheduler.Start()
}

// Stop waits for a running sweep and stops the scheduler.
func (j *ArtifactJanitor) Stop() error {
	return j.scheduler.Shutdown()
}
