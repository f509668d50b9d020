package job

import (
	"context"
	"time"

	"github.com/emrgen/lineage/internal/store"
	"github.com/sirupsen/logrus"
)

// HistoryCleaner is a job that trims the undo history to a maximum depth.
type HistoryCleaner struct {
	store    store.Store
	depth    int
	interval time.Duration
	done     chan struct{}
}

// NewHistoryCleaner creates a new HistoryCleaner instance.
func NewHistoryCleaner(store store.Store, depth int, interval time.Duration) *HistoryCleaner {
	return &HistoryCleaner{
		store:    store,
		depth:    depth,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (c *HistoryCleaner) Stop() {
	close(c.done)
}

func (c *HistoryCleaner) Run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.clean(context.Background())
		}
	}
}

func (c *HistoryCleaner) clean(ctx context.Context) int64 {
	pruned, err := c.store.PruneHistory(ctx, c.depth)
	if err != nil {
		logrus.Error("Error pruning the undo history: ", err)
		return 0
	}
	if pruned > 0 {
		logrus.Infof("Pruned %d transactions from the undo history", pruned)
	}

	return pruned
}
