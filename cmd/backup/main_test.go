package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-ledger/internal/backup"
	"github.com/ukydev/fleet-ledger/internal/models"
)

type fakeService struct {
	snap     backup.Snapshot
	imported []byte
	userID   string
	err      error
}

func (f *fakeService) Export(ctx context.Context, userID string) (backup.Snapshot, error) {
	f.userID = userID
	return f.snap, f.err
}

func (f *fakeService) Import(ctx context.Context, userID string, data []byte) (backup.ImportResult, error) {
	f.userID = userID
	f.imported = data
	if f.err != nil {
		return backup.ImportResult{}, f.err
	}
	return backup.ImportResult{Trips: 2, Expenses: 1}, nil
}

func run(t *testing.T, svc *fakeService, args ...string) (string, error) {
	t.Helper()
	closed := false
	open := func(ctx context.Context) (service, func(), error) {
		return svc, func() { closed = true }, nil
	}
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		assert.True(t, closed, "stores are released")
	}
	return out.String(), err
}

func TestExportCmd(t *testing.T) {
	svc := &fakeService{snap: backup.Snapshot{
		Trips:      []models.Trip{{ID: "trip-1"}},
		ExportDate: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
	}}

	t.Run("stdout", func(t *testing.T) {
		out, err := run(t, svc, "export", "--user", "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", svc.userID)

		var snap backup.Snapshot
		require.NoError(t, json.Unmarshal([]byte(out), &snap))
		assert.Len(t, snap.Trips, 1)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "backup.json")
		_, err := run(t, svc, "export", "-u", "u1", "-o", path)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"exportDate"`)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := run(t, svc, "export")
		assert.Error(t, err)
	})
}

func TestImportCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"trips": []}`), 0o600))

	t.Run("imported", func(t *testing.T) {
		svc := &fakeService{}
		out, err := run(t, svc, "import", "-u", "u1", "-i", path)
		require.NoError(t, err)
		assert.Equal(t, `{"trips": []}`, string(svc.imported))
		assert.Contains(t, out, "imported 2 trips, 1 expenses")
	})

	t.Run("missing file", func(t *testing.T) {
		svc := &fakeService{}
		_, err := run(t, svc, "import", "-u", "u1", "-i", filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
		assert.Nil(t, svc.imported)
	})

	t.Run("service error", func(t *testing.T) {
		svc := &fakeService{err: backup.ErrMalformedBackup}
		_, err := run(t, svc, "import", "-u", "u1", "-i", path)
		assert.True(t, errors.Is(err, backup.ErrMalformedBackup))
	})
}
