package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"storefront/internal/config"
)

// Scheduler enqueues recurring maintenance onto the event stream. The worker
// consumes it there; nothing heavy runs inside the cron goroutine itself.
type Scheduler struct {
	cron  *cron.Cron
	queue *redis.Client
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewScheduler(queue *redis.Client, cfg *config.AppConfig, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		queue: queue,
		cfg:   cfg,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.Orders.ExpirySchedule, s.enqueueOrderExpiry); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.enqueuePhotoSweep); err != nil { // nightly
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits up to five seconds for in-flight jobs before giving up.
func (s *Scheduler) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) enqueueOrderExpiry() {
	if err := s.enqueueTask(map[string]any{
		"type": "orders.expire",
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue order expiry failed")
	}
}

func (s *Scheduler) enqueuePhotoSweep() {
	if err := s.enqueueTask(map[string]any{
		"type": "photos.sweep",
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue photo sweep failed")
	}
}

func (s *Scheduler) enqueueTask(payload map[string]any) error {
	if s.queue == nil {
		return nil
	}
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: s.cfg.Worker.Stream,
		Values: payload,
	}).Result()
	return err
}
