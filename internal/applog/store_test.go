package applog_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kedorion/careers-api/internal/applog"
	"github.com/kedorion/careers-api/internal/config"
	"github.com/kedorion/careers-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *applog.Store {
	t.Helper()

	dir, err := os.MkdirTemp("", "applog_test")
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(dir)
	})

	store, err := applog.NewStore(&config.LogFileConfig{
		Path:      filepath.Join(dir, "applications.xlsx"),
		SheetName: "Applications",
	}, zap.NewNop())
	require.NoError(t, err)

	return store
}

func sampleApplication(name string) *domain.Application {
	return &domain.Application{
		Timestamp:      "2024-01-01T12:00:00Z",
		Name:           name,
		Email:          "a@x.com",
		Phone:          "123",
		Location:       "Berlin",
		StartDate:      "2024-01-01",
		Visa:           "yes",
		Expertise:      "Backend, Data",
		Links:          "https://example.com",
		WhyKedorion:    "because",
		ResumeFilename: "cv.pdf",
	}
}

// readRows reads back every row of the first sheet
func readRows(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	return rows
}

func TestStore_AppendCreatesWorkbookWithHeader(t *testing.T) {
	store := newTestStore(t)

	err := store.Append(sampleApplication("Ana"))
	require.NoError(t, err)

	rows := readRows(t, store.Path())
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Columns(), rows[0])
	assert.Equal(t, "Ana", rows[1][1])
	assert.Equal(t, "cv.pdf", rows[1][len(rows[1])-1])
}

func TestStore_AppendGrowsExistingLog(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		err := store.Append(sampleApplication(fmt.Sprintf("Applicant %d", i)))
		require.NoError(t, err)
	}

	rows := readRows(t, store.Path())
	require.Len(t, rows, 4)
	assert.Equal(t, domain.Columns(), rows[0])
	assert.Equal(t, "Applicant 0", rows[1][1])
	assert.Equal(t, "Applicant 2", rows[3][1])
}

func TestStore_RecoversFromCorruptLog(t *testing.T) {
	store := newTestStore(t)

	garbage := []byte("this is definitely not a zip archive")
	require.NoError(t, os.WriteFile(store.Path(), garbage, 0644))

	err := store.Append(sampleApplication("Ana"))
	require.NoError(t, err)

	t.Run("backup preserves the corrupted bytes", func(t *testing.T) {
		backup, err := os.ReadFile(store.BackupPath())
		require.NoError(t, err)
		assert.Equal(t, garbage, backup)
	})

	t.Run("fresh log has header and exactly one data row", func(t *testing.T) {
		rows := readRows(t, store.Path())
		require.Len(t, rows, 2)
		assert.Equal(t, domain.Columns(), rows[0])
		assert.Equal(t, "Ana", rows[1][1])
	})
}

func TestStore_BackupPathInsertsBadMarker(t *testing.T) {
	store := newTestStore(t)

	assert.Equal(t, ".bad.xlsx", store.BackupPath()[len(store.BackupPath())-9:])
	assert.Equal(t, filepath.Dir(store.Path()), filepath.Dir(store.BackupPath()))
}

func TestStore_BackupOverwritesPreviousBackup(t *testing.T) {
	store := newTestStore(t)

	// First corruption event
	require.NoError(t, os.WriteFile(store.Path(), []byte("first corruption"), 0644))
	require.NoError(t, store.Append(sampleApplication("Ana")))

	// Second corruption event replaces the backup
	second := []byte("second corruption")
	require.NoError(t, os.WriteFile(store.Path(), second, 0644))
	require.NoError(t, store.Append(sampleApplication("Bo")))

	backup, err := os.ReadFile(store.BackupPath())
	require.NoError(t, err)
	assert.Equal(t, second, backup)
}

func TestStore_RepairsHeaderlessWorkbook(t *testing.T) {
	store := newTestStore(t)

	// A valid but completely empty workbook, like one created by hand
	empty := excelize.NewFile()
	require.NoError(t, empty.SaveAs(store.Path()))
	require.NoError(t, empty.Close())

	err := store.Append(sampleApplication("Ana"))
	require.NoError(t, err)

	rows := readRows(t, store.Path())
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Columns(), rows[0])
	assert.Equal(t, "Ana", rows[1][1])

	// No backup: an empty workbook is repaired in place, not moved aside
	_, statErr := os.Stat(store.BackupPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_ConcurrentAppendsAreSerialized(t *testing.T) {
	store := newTestStore(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.Append(sampleApplication(fmt.Sprintf("Applicant %d", i)))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	rows := readRows(t, store.Path())
	assert.Len(t, rows, workers+1)
	assert.Equal(t, domain.Columns(), rows[0])
}
