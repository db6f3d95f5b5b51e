package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepo_AppendsLines(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "message_logs", "message_timestamps.log")
	repo, err := NewAuditRepo(path)
	require.NoError(t, err)
	ctx := context.Background()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordMessage(ctx, 10, at))
	require.NoError(t, repo.RecordMessage(ctx, 11, at.Add(1500*time.Millisecond).In(time.FixedZone("X", 3600))))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "10,2024-05-01T12:00:00.000Z\n11,2024-05-01T12:00:01.500Z\n", string(data))
}

func TestAuditRepo_ConcurrentWritesStayWholeLines(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "audit.log")
	repo, err := NewAuditRepo(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			assert.NoError(t, repo.RecordMessage(context.Background(), id, time.Now()))
		}(int64(i))
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Len(t, lines, 20)
	for _, l := range lines {
		assert.Contains(t, l, ",")
	}
}
