package jobs

import (
	"context"

	"github.com/emrgen/lineage/internal/check"
	"github.com/emrgen/lineage/internal/store"
	"github.com/sirupsen/logrus"
)

var _ CronJob = (*IntegrityTask)(nil)

// IntegrityTask runs the reference checker on a schedule and logs what it finds.
type IntegrityTask struct {
	checker *check.Checker
	cron    string
	last    *check.Report
}

func NewIntegrityTask(schedule string, store store.Store) *IntegrityTask {
	return &IntegrityTask{
		checker: check.NewChecker(store),
		cron:    schedule,
	}
}

func (c *IntegrityTask) Schedule() string {
	return c.cron
}

func (c *IntegrityTask) Run() {
	report, err := c.checker.Run(context.Background())
	if err != nil {
		logrus.Errorf("integrity check failed: %v", err)
		return
	}
	c.last = report

	if report.OK() {
		logrus.Infof("integrity check passed for %d objects", report.Objects)
		return
	}
	logrus.Warnf("integrity check found %d problems in %d objects", len(report.Problems), report.Objects)
}

// Last returns the report of the latest successful run, or nil.
func (c *IntegrityTask) Last() *check.Report {
	return c.last
}
