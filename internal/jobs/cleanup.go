package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buyled/gomanage-relay/internal/audit"
	"github.com/buyled/gomanage-relay/internal/repository"
	"github.com/buyled/gomanage-relay/internal/session"
)

// CleanupJob periodically sweeps expired upstream sessions and trims old
// sync-run history.
type CleanupJob struct {
	sessions    *session.Store
	syncRunRepo repository.SyncRunRepository
	retention   time.Duration
	interval    time.Duration
	done        chan struct{}
}

func NewCleanupJob(
	sessions *session.Store,
	syncRunRepo repository.SyncRunRepository,
	retention time.Duration,
	interval time.Duration,
) *CleanupJob {
	return &CleanupJob{
		sessions:    sessions,
		syncRunRepo: syncRunRepo,
		retention:   retention,
		interval:    interval,
		done:        make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if evicted := j.sessions.Sweep(); evicted > 0 {
		audit.Log(audit.Event{Type: audit.EventSessionEvicted, Details: map[string]any{
			"count": evicted,
		}})
		log.Info().Int("count", evicted).Msg("cleaned up expired sessions")
	}

	if j.syncRunRepo != nil {
		count, err := j.syncRunRepo.DeleteOlderThan(ctx, time.Now().Add(-j.retention))
		if err != nil {
			log.Error().Err(err).Msg("failed to cleanup sync runs")
		} else if count > 0 {
			log.Info().Int64("count", count).Msg("cleaned up sync runs")
		}
	}
}
