// Package workers drives the periodic auction and settlement cycles.
// Jobs run on the gocron scheduler in singleton mode, so a tick that
// fires while the previous run of the same job is still going is
// skipped, never queued. Job failures and panics are contained at the
// job boundary and recorded as failed runs; the scheduler itself never
// stops ticking.
package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"adsettle/internal/models"
	"adsettle/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Job is one recurring unit of work.
type Job interface {
	Name() string
	Definition() gocron.JobDefinition
	Run(ctx context.Context) error
}

// Manager owns the scheduler and the job-run audit trail.
type Manager struct {
	scheduler gocron.Scheduler
	jobRuns   repositories.JobRunRepository
}

func NewManager(jobRuns repositories.JobRunRepository) (*Manager, error) {
	s, err := gocron.NewScheduler(gocron.WithMonitor(skipMonitor{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Manager{scheduler: s, jobRuns: jobRuns}, nil
}

// skipMonitor logs ticks the scheduler drops because the previous run
// of the same job is still in progress. Skipped ticks leave no JobRun
// row, so the log line is the only trace.
type skipMonitor struct{}

func (skipMonitor) IncrementJob(_ uuid.UUID, name string, _ []string, status gocron.JobStatus) {
	if status == gocron.SingletonRescheduled || status == gocron.Skip {
		log.Printf("job %s: tick skipped, previous run still in progress", name)
	}
}

func (skipMonitor) RecordJobTiming(_, _ time.Time, _ uuid.UUID, _ string, _ []string) {}

// Register schedules a job. Singleton mode guarantees at most one
// concurrent execution per job.
func (m *Manager) Register(job Job) error {
	_, err := m.scheduler.NewJob(
		job.Definition(),
		gocron.NewTask(func() { m.runJob(job) }),
		gocron.WithName(job.Name()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", job.Name(), err)
	}
	return nil
}

func (m *Manager) Start() {
	m.scheduler.Start()
	log.Println("job scheduler started")
}

func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		log.Printf("failed to shut down scheduler: %v", err)
	}
}

// runJob executes one tick with a job-run record around it. A panic
// inside the job is converted into a failed run instead of crashing
// the scheduler goroutine.
func (m *Manager) runJob(job Job) {
	now := time.Now().UTC()
	run := &models.JobRun{
		Name:      job.Name(),
		Date:      now.Format(dateLayout),
		Status:    models.JobRunStatusRunning,
		StartedAt: now,
	}
	if err := m.jobRuns.Create(run); err != nil {
		log.Printf("failed to record run of job %s: %v", job.Name(), err)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("job %s panicked: %v", job.Name(), r)
			m.finishRun(run, fmt.Errorf("panic: %v", r))
		}
	}()

	err := job.Run(context.Background())
	if err != nil {
		log.Printf("job %s failed: %v", job.Name(), err)
	}
	m.finishRun(run, err)
}

func (m *Manager) finishRun(run *models.JobRun, err error) {
	now := time.Now().UTC()
	run.FinishedAt = &now
	if err != nil {
		run.Status = models.JobRunStatusFailed
		run.Error = err.Error()
	} else {
		run.Status = models.JobRunStatusCompleted
	}
	if run.ID == 0 {
		// The start of the run was never recorded; nothing to update.
		return
	}
	if saveErr := m.jobRuns.Save(run); saveErr != nil {
		log.Printf("failed to finish run of job %s: %v", run.Name, saveErr)
	}
}
