package history

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/site"
)

func finishedReport(t *testing.T, pages int) *site.BuildReport {
	t.Helper()
	r := site.NewBuildReport()
	r.Pages = pages
	r.Finish()
	r.DeriveOutcome()
	return r
}

func TestStore_AppendAndRecent(t *testing.T) {
	store, err := Open(MemoryDSN)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	report := finishedReport(t, 7)
	require.NoError(t, store.Append(ctx, report))

	builds, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, builds, 1)

	got := builds[0]
	require.Equal(t, report.BuildID, got.BuildID)
	require.Equal(t, string(site.OutcomeSuccess), got.Outcome)
	require.Equal(t, 7, got.Pages)
	require.WithinDuration(t, time.Now(), got.FinishedAt, time.Minute)

	var stored site.BuildReport
	require.NoError(t, json.Unmarshal(got.Report, &stored))
	require.Equal(t, report.BuildID, stored.BuildID)
	require.Equal(t, 7, stored.Pages)
}

func TestStore_RecentOrdersNewestFirstAndLimits(t *testing.T) {
	store, err := Open(MemoryDSN)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	var ids []string
	for i := 0; i < 5; i++ {
		r := finishedReport(t, i)
		ids = append(ids, r.BuildID)
		require.NoError(t, store.Append(ctx, r))
	}

	builds, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, builds, 3)
	require.Equal(t, ids[4], builds[0].BuildID)
	require.Equal(t, ids[3], builds[1].BuildID)
	require.Equal(t, ids[2], builds[2].BuildID)
}

func TestStore_RecentOnEmptyStore(t *testing.T) {
	store, err := Open(MemoryDSN)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	builds, err := store.Recent(t.Context(), 10)
	require.NoError(t, err)
	require.Empty(t, builds)
}

func TestOpen_FileBackedPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(t.Context(), finishedReport(t, 2)))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	builds, err := reopened.Recent(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, builds, 1)
	require.Equal(t, 2, builds[0].Pages)
}
