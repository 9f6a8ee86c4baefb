package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndRecent(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Add(Record{
		Direction: DirectionUpload, Name: "report.pdf", Folder: "docs",
		RepositoryIdentity: "repo-1", Size: 2097152,
	}))
	require.NoError(t, s.Add(Record{
		Direction: DirectionDownload, Name: "notes.txt",
		RepositoryIdentity: "repo-2", Size: 12,
	}))

	records, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Most recent first.
	assert.Equal(t, "notes.txt", records[0].Name)
	assert.Equal(t, DirectionDownload, records[0].Direction)
	assert.Equal(t, "report.pdf", records[1].Name)
	assert.Equal(t, int64(2097152), records[1].Size)
	assert.False(t, records[1].CreatedAt.IsZero())
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Add(Record{Direction: DirectionUpload, Name: "f"}))
	}
	records, err := s.Recent(3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Add(Record{Direction: DirectionUpload, Name: "old"}))

	n, err := s.Prune(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	records, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Add(Record{Direction: DirectionUpload, Name: "kept"}))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	records, err := s2.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "kept", records[0].Name)
}

func TestPruneCutoffIgnoresLocalZone(t *testing.T) {
	s := openTestStore(t)

	backdate := func(name string, age time.Duration) {
		require.NoError(t, s.Add(Record{Direction: DirectionUpload, Name: name}))
		_, err := s.conn.Exec(`UPDATE transfers SET created_at = ? WHERE name = ?`,
			time.Now().UTC().Add(-age).Format("2006-01-02 15:04:05"), name)
		require.NoError(t, err)
	}
	backdate("ancient", 25*time.Hour)
	backdate("yesterday", 12*time.Hour)
	backdate("fresh", time.Hour)

	// An eastern zone skews a naively bound cutoff ahead of UTC, sweeping
	// up rows that are younger than the cutoff.
	restore := time.Local
	time.Local = time.FixedZone("UTC+14", 14*60*60)
	defer func() { time.Local = restore }()

	n, err := s.Prune(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	records, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.NotEqual(t, "ancient", r.Name)
	}
}
