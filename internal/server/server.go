package server

import (
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/emrgen/lineage/internal/config"
	"github.com/emrgen/lineage/internal/job"
	"github.com/emrgen/lineage/internal/jobs"
	"github.com/emrgen/lineage/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Server runs the background maintenance of one tree: the scheduled
// integrity check and the undo history cleaner.
type Server struct {
	executor *jobs.TaskExecutor
	cleaner  *job.HistoryCleaner
	wg       sync.WaitGroup
}

// NewServer creates a new server
func NewServer(cfg *config.Config, st store.Store) *Server {
	integrity := jobs.NewIntegrityTask(cfg.CheckCron, st)
	return &Server{
		executor: jobs.NewTaskExecutor(nil, []jobs.CronJob{integrity}),
		cleaner:  job.NewHistoryCleaner(st, cfg.HistoryDepth, cfg.PruneInterval),
	}
}

// Start starts the workers without blocking.
func (s *Server) Start() error {
	if err := s.executor.Run(); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.cleaner.Run()
		logrus.Infof("history cleaner stopped")
	}()

	return nil
}

// Stop stops the workers and waits for them to finish.
func (s *Server) Stop() {
	s.executor.Stop()
	s.cleaner.Stop()
	s.wg.Wait()
}

// Start runs the workers of a tree until an interrupt signal arrives.
func Start(cfg *config.Config, st store.Store) error {
	s := NewServer(cfg, st)
	if err := s.Start(); err != nil {
		return err
	}
	logrus.Infof("watching tree %s, press Ctrl+C to stop", cfg.Tree)

	// listen for interrupt signal to gracefully shut down the workers
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT)
	defer signal.Stop(sigs)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	s.Stop()
	return nil
}
