package ports

import (
	"context"

	"suppqc/domain/core"
	"suppqc/domain/pvalue"
)

// SummaryWriter serializes a completed batch of table summaries.
type SummaryWriter interface {
	Write(ctx context.Context, summaries []pvalue.TableSummary) error
}

// SummaryRepository persists table summaries per run.
type SummaryRepository interface {
	SaveRun(ctx context.Context, runID core.RunID, summaries []pvalue.TableSummary) error
	ListRun(ctx context.Context, runID core.RunID) ([]pvalue.TableSummary, error)
}
