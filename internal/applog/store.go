package applog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kedorion/careers-api/internal/config"
	"github.com/kedorion/careers-api/internal/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// openState classifies the workbook found at the log path
type openState int

const (
	// stateReady means the workbook opened and already carries a header row
	stateReady openState = iota
	// stateNeedsHeader means the workbook opened but is empty or headerless
	stateNeedsHeader
	// stateCorrupt means the file exists but cannot be read as a workbook
	stateCorrupt
)

// Store owns the append-only application log workbook. Each accepted
// submission becomes one data row below a fixed header row.
//
// A corrupted workbook is moved aside to "<base>.bad.xlsx" (best-effort)
// and replaced with a fresh one; rows in the corrupted file are preserved
// only in the backup, never merged back.
//
// Appends are serialized with a mutex. The system this replaces left
// concurrent appends unsynchronized; the lock is a deliberate strengthening
// so two in-flight submissions cannot interleave the open/append/save
// sequence.
type Store struct {
	mu     sync.Mutex
	path   string
	sheet  string
	logger *zap.Logger
}

// NewStore creates the log store and ensures the workbook's parent
// directory exists.
func NewStore(cfg *config.LogFileConfig, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create application log directory: %w", err)
	}

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = "Applications"
	}

	return &Store{
		path:   cfg.Path,
		sheet:  sheet,
		logger: logger,
	}, nil
}

// Path returns the workbook path the store writes to
func (s *Store) Path() string {
	return s.path
}

// BackupPath returns the path a corrupted workbook is moved to
func (s *Store) BackupPath() string {
	return backupPath(s.path)
}

// Append durably adds one data row to the log, creating or repairing the
// workbook as needed. After Append returns nil the workbook has a
// well-formed header and the new row below any previously appended rows.
func (s *Store) Append(app *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		f          *excelize.File
		needHeader bool
	)

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		f = s.newWorkbook()
		needHeader = true
	} else {
		var state openState
		f, state = s.open()
		switch state {
		case stateReady:
			// header already present
		case stateNeedsHeader:
			needHeader = true
		case stateCorrupt:
			s.backupCorrupt()
			f = s.newWorkbook()
			needHeader = true
		}
	}

	// Last-resort fallback: no branch above should leave us without a
	// workbook, but a row must never be dropped because of one.
	if f == nil {
		s.logger.Error("application log open produced no workbook, recreating", zap.String("path", s.path))
		f = s.newWorkbook()
		needHeader = true
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)

	if needHeader {
		header := make([]interface{}, 0, len(domain.Columns()))
		for _, col := range domain.Columns() {
			header = append(header, col)
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("failed to write application log header: %w", err)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read application log rows: %w", err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("failed to compute application log row: %w", err)
	}

	row := app.Row()
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to append application log row: %w", err)
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save application log: %w", err)
	}

	return nil
}

// open opens the existing workbook and classifies it. A workbook that opens
// but cannot be read row-wise counts as corrupt, same as one that does not
// open at all.
func (s *Store) open() (*excelize.File, openState) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		s.logger.Warn("application log is not a readable workbook",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return nil, stateCorrupt
	}

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		s.logger.Warn("failed to read rows from application log",
			zap.String("path", s.path),
			zap.Error(err),
		)
		_ = f.Close()
		return nil, stateCorrupt
	}

	// An empty or headerless workbook: at most one row whose first cell
	// holds nothing.
	if len(rows) == 0 || (len(rows) == 1 && firstCell(rows[0]) == "") {
		return f, stateNeedsHeader
	}

	return f, stateReady
}

// backupCorrupt moves the corrupted workbook aside. The rename is
// best-effort: a failure is logged and ignored so the fresh workbook can
// still be created; a pre-existing backup is overwritten.
func (s *Store) backupCorrupt() {
	backup := backupPath(s.path)
	if err := os.Rename(s.path, backup); err != nil {
		s.logger.Warn("failed to move corrupted application log aside",
			zap.String("path", s.path),
			zap.String("backup", backup),
			zap.Error(err),
		)
		return
	}

	s.logger.Warn("corrupted application log moved aside, starting fresh",
		zap.String("path", s.path),
		zap.String("backup", backup),
	)
}

func (s *Store) newWorkbook() *excelize.File {
	f := excelize.NewFile()
	if name := f.GetSheetName(0); name != s.sheet {
		_ = f.SetSheetName(name, s.sheet)
	}
	return f
}

func firstCell(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// backupPath inserts a ".bad" marker before the workbook extension, e.g.
// applications.xlsx -> applications.bad.xlsx
func backupPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".bad" + ext
}
