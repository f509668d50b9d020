package server

import (
	"context"
	"testing"
	"time"

	"github.com/emrgen/lineage/internal/config"
	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_PrunesHistory(t *testing.T) {
	ctx := context.Background()
	st := tester.TestStore(t)
	for _, handle := range []string{"n1", "n2", "n3"} {
		require.NoError(t, st.Commit(ctx, &model.Note{Base: model.Base{Handle: handle}}))
	}

	s := NewServer(&config.Config{CheckCron: "@every 1h", HistoryDepth: 1, PruneInterval: 10 * time.Millisecond}, st)
	require.NoError(t, s.Start())

	assert.Eventually(t, func() bool {
		history, err := st.History(ctx, 0)
		return err == nil && len(history) == 1
	}, 2*time.Second, 20*time.Millisecond)

	s.Stop()
}

func TestServer_RejectsBadSchedule(t *testing.T) {
	s := NewServer(&config.Config{CheckCron: "whenever", PruneInterval: time.Second}, tester.TestStore(t))
	assert.Error(t, s.Start())
}
