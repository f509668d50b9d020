package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

type Job interface {
	Run()
}

type CronJob interface {
	Schedule() string
	Job
}

type TaskExecutor struct {
	cron            *cron.Cron
	jobs            []Job
	cronJobs        []CronJob
	runningJobs     mapset.Set[Job]
	runningCronJobs mapset.Set[CronJob]
	muJobs          sync.Mutex
	muCronJobs      sync.Mutex
}

func NewTaskExecutor(jobs []Job, cronJobs []CronJob) *TaskExecutor {
	return &TaskExecutor{
		cron:            cron.New(),
		jobs:            jobs,
		cronJobs:        cronJobs,
		runningCronJobs: mapset.NewThreadUnsafeSet[CronJob](),
		runningJobs:     mapset.NewThreadUnsafeSet[Job](),
	}
}

// Run schedules the jobs and starts the cron. A job is skipped while its previous run is still going.
func (t *TaskExecutor) Run() error {
	for _, job := range t.cronJobs {
		err := t.cron.AddFunc(job.Schedule(), func() {
			if !t.claimCron(job) {
				logrus.Warn("task is already scheduled")
				return
			}
			defer t.releaseCron(job)

			job.Run()
		})
		if err != nil {
			logrus.Errorf("failed to add task to cron: %v", err)
			return err
		}
	}

	for _, job := range t.jobs {
		err := t.cron.AddFunc("@every 1s", func() {
			if !t.claim(job) {
				logrus.Debug("task is already running")
				return
			}
			defer t.release(job)

			job.Run()
		})
		if err != nil {
			return err
		}
	}

	t.cron.Start()
	return nil
}

func (t *TaskExecutor) claimCron(job CronJob) bool {
	t.muCronJobs.Lock()
	defer t.muCronJobs.Unlock()
	return t.runningCronJobs.Add(job)
}

func (t *TaskExecutor) releaseCron(job CronJob) {
	t.muCronJobs.Lock()
	defer t.muCronJobs.Unlock()
	t.runningCronJobs.Remove(job)
}

func (t *TaskExecutor) claim(job Job) bool {
	t.muJobs.Lock()
	defer t.muJobs.Unlock()
	return t.runningJobs.Add(job)
}

func (t *TaskExecutor) release(job Job) {
	t.muJobs.Lock()
	defer t.muJobs.Unlock()
	t.runningJobs.Remove(job)
}

func (t *TaskExecutor) Stop() {
	logrus.Infof("stopping all tasks")
	t.cron.Stop()
}
