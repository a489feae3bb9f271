package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/xuri/excelize/v2"

	apperrors "suppqc/internal/errors"
	"suppqc/internal/logx"
	"suppqc/ports"
)

// FileSource reads supplementary files into tables. It handles delimited text
// (CSV/TSV and friends), Excel workbooks, gzip-compressed variants of both,
// and tar.gz archives containing any of them.
type FileSource struct {
	cfg Config
	log *logx.Logger
}

// NewFileSource creates a file source with the given ingestion configuration.
func NewFileSource(cfg Config, logger *logx.Logger) *FileSource {
	if logger == nil {
		logger = logx.DefaultLogger
	}
	return &FileSource{cfg: cfg, log: logger}
}

// Produce extracts all tables from one source path. Member-level read
// failures come back as error-bearing ProducedTable entries instead of
// aborting the batch; the returned error is reserved for cancellation.
func (s *FileSource) Produce(ctx context.Context, path string) ([]ports.ProducedTable, error) {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".tar.gz") || strings.HasSuffix(base, ".tgz") {
		return s.produceArchive(ctx, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return []ports.ProducedTable{{ID: base, Err: apperrors.IngestionError(base, err)}}, nil
	}
	tables, err := s.memberTables(base, base, data)
	if err != nil {
		return []ports.ProducedTable{{ID: base, Err: apperrors.IngestionError(base, err)}}, nil
	}
	s.log.Info("[Ingest] %s: %d table(s)", base, len(tables))
	return tables, nil
}

// memberTables dispatches one logical file (flat file or archive member) to
// the workbook or delimited reader, decompressing gzip payloads first.
func (s *FileSource) memberTables(id, name string, data []byte) ([]ports.ProducedTable, error) {
	if strings.HasSuffix(name, ".gz") {
		gz, err := pgzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		data, err = io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress: %w", err)
		}
		name = strings.TrimSuffix(name, ".gz")
	}
	if s.cfg.Workbook.MatchString(name) {
		return s.workbookTables(id, data)
	}
	t, err := s.delimitedTable(id, data)
	if err != nil {
		return nil, err
	}
	return []ports.ProducedTable{{ID: id, Table: t}}, nil
}

// workbookTables reads every non-empty sheet of a workbook into its own table
// named <id>-sheet-<sheet>.
func (s *FileSource) workbookTables(id string, data []byte) ([]ports.ProducedTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var out []ports.ProducedTable
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		rows = dropCommentRows(rows)
		if len(rows) < 2 {
			// Header only or empty sheet.
			continue
		}
		name := id + "-sheet-" + sheet
		t, err := tableFromRows(name, rows, s.cfg.HeaderScanRows)
		if err != nil {
			return nil, err
		}
		out = append(out, ports.ProducedTable{ID: name, Table: t})
	}
	return out, nil
}

// dropCommentRows removes rows whose first cell starts with '#'.
func dropCommentRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		if len(row) > 0 && strings.HasPrefix(strings.TrimSpace(row[0]), "#") {
			continue
		}
		out = append(out, row)
	}
	return out
}
