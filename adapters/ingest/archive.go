package ingest

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"

	apperrors "suppqc/internal/errors"
	"suppqc/ports"
)

// produceArchive walks a tar.gz submission archive and reads every member
// whose name matches the keep pattern. Per-member failures become
// error-bearing entries keyed by the member identity.
func (s *FileSource) produceArchive(ctx context.Context, path string) ([]ports.ProducedTable, error) {
	base := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		return []ports.ProducedTable{{ID: base, Err: apperrors.IngestionError(base, err)}}, nil
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return []ports.ProducedTable{{ID: base, Err: apperrors.IngestionError(base, err)}}, nil
	}
	defer gz.Close()

	prefix := s.cfg.Accession.FindString(base)
	tr := tar.NewReader(gz)
	var out []ports.ProducedTable
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			out = append(out, ports.ProducedTable{ID: base, Err: apperrors.IngestionError(base, err)})
			break
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := hdr.Name
		if strings.HasPrefix(filepath.Base(name), ".") || !s.cfg.Keep.MatchString(name) {
			continue
		}
		id := prefix + strings.ReplaceAll(name, "/", "_")
		data, err := io.ReadAll(tr)
		if err != nil {
			out = append(out, ports.ProducedTable{ID: id, Err: apperrors.IngestionError(id, err)})
			continue
		}
		tables, err := s.memberTables(id, filepath.Base(name), data)
		if err != nil {
			out = append(out, ports.ProducedTable{ID: id, Err: apperrors.IngestionError(id, err)})
			continue
		}
		out = append(out, tables...)
	}
	s.log.Info("[Ingest] %s: %d member table(s)", base, len(out))
	return out, nil
}
