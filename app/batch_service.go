package app

import (
	"context"
	"path/filepath"
	"regexp"

	"golang.org/x/sync/errgroup"

	"suppqc/domain/core"
	"suppqc/domain/pvalue"
	"suppqc/internal/logx"
	"suppqc/ports"
)

var sheetID = regexp.MustCompile(`^.*-(sheet-.*)$`)

// BatchService runs the per-table pipeline over a batch of input files:
// ingestion, p-value column selection and summarization. Tables are
// independent, so summarization fans out across workers; the combined result
// keeps the deterministic input order regardless of completion order.
type BatchService struct {
	source     ports.TableSource
	selector   ports.ColumnSelector
	summarizer *pvalue.Summarizer
	cfg        pvalue.Config
	workers    int
	log        *logx.Logger
}

// NewBatchService creates a batch service. workers bounds the summarization
// fan-out; values below one run sequentially.
func NewBatchService(
	source ports.TableSource,
	selector ports.ColumnSelector,
	summarizer *pvalue.Summarizer,
	cfg pvalue.Config,
	workers int,
	logger *logx.Logger,
) *BatchService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logx.DefaultLogger
	}
	return &BatchService{
		source:     source,
		selector:   selector,
		summarizer: summarizer,
		cfg:        cfg,
		workers:    workers,
		log:        logger,
	}
}

// Run processes every input path and returns one summary per table, plus one
// note record per unreadable member and per file without p-value columns. A
// batch always completes; only cancellation aborts it.
func (s *BatchService) Run(ctx context.Context, paths []string) (core.RunID, []pvalue.TableSummary, error) {
	runID := core.NewRunID()
	s.log.Info("[Batch] run %s over %d file(s)", runID, len(paths))

	type job struct {
		slot int
		id   string
		in   pvalue.Input
	}
	var results []pvalue.TableSummary
	var jobs []job

	for _, path := range paths {
		filename := filepath.Base(path)
		produced, err := s.source.Produce(ctx, path)
		if err != nil {
			return runID, nil, err
		}

		withPValues := 0
		for _, p := range produced {
			if p.Err != nil {
				results = append(results, pvalue.TableSummary{ID: p.ID, Record: pvalue.NoteSummary(p.Err.Error())})
				continue
			}
			if !s.selector.HasPValueColumn(p.Table) {
				continue
			}
			in, ok := s.selector.Select(p.Table, s.cfg.Variables)
			if !ok {
				continue
			}
			withPValues++
			results = append(results, pvalue.TableSummary{ID: s.displayID(p.ID, filename)})
			jobs = append(jobs, job{slot: len(results) - 1, id: p.ID, in: in})
		}
		if withPValues == 0 {
			results = append(results, pvalue.TableSummary{ID: filename, Record: pvalue.NoteSummary(pvalue.NoteNoPValues)})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[j.slot].Record = s.summarizer.Summarize(j.in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return runID, nil, err
	}

	s.log.Info("[Batch] run %s produced %d record(s)", runID, len(results))
	return runID, results, nil
}

// displayID renders the table identity for output. Sheet-derived tables are
// reported as "sheet-<name> from <file>"; archive members keep their prefixed
// member name followed by the archive; a flat file keeps its own name.
func (s *BatchService) displayID(id, filename string) string {
	if id == filename {
		return id
	}
	if m := sheetID.FindStringSubmatch(id); m != nil {
		return m[1] + " from " + filename
	}
	return id + " from " + filename
}
