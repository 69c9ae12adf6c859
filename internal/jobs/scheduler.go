package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

const archiveJobName = "orders-export-archive"

// Scheduler запускает ежедневную архивацию выгрузки.
type Scheduler struct {
	scheduler gocron.Scheduler
	job       gocron.Job
	cancel    context.CancelFunc
	logger    *log.Entry
}

// NewScheduler регистрирует ежедневную задачу на hour:00 в зоне loc.
func NewScheduler(archiver *ExportArchiver, hour uint, loc *time.Location) (*Scheduler, error) {
	if hour > 23 {
		return nil, fmt.Errorf("archive hour must be within 0..23, got %d", hour)
	}
	if loc == nil {
		loc = time.UTC
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		scheduler: scheduler,
		cancel:    cancel,
		logger:    log.WithField("component", "scheduler"),
	}

	job, err := scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, 0, 0))),
		gocron.NewTask(func() {
			if _, err := archiver.RunOnce(ctx); err != nil {
				s.logger.WithError(err).Error("daily export archive failed")
			}
		}),
		gocron.WithName(archiveJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("register %s job: %w", archiveJobName, err)
	}
	s.job = job
	return s, nil
}

// Start запускает планировщик.
func (s *Scheduler) Start() {
	s.scheduler.Start()
	if next, err := s.job.NextRun(); err == nil {
		s.logger.WithField("next_run", next).Info("scheduler started")
	}
}

// NextRun возвращает время следующего запуска архивации.
func (s *Scheduler) NextRun() (time.Time, error) {
	return s.job.NextRun()
}

// Shutdown отменяет выполняющиеся задачи и останавливает планировщик.
func (s *Scheduler) Shutdown() error {
	s.cancel()
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	return nil
}
