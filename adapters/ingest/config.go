package ingest

import (
	"regexp"
)

// Config holds the immutable ingestion patterns and limits.
type Config struct {
	// Keep matches archive member names worth parsing, by extension, each
	// optionally gzip-compressed.
	Keep *regexp.Regexp
	// Workbook matches spreadsheet files handled by the workbook reader.
	Workbook *regexp.Regexp
	// Accession captures the series accession prefix from archive names so
	// member tables stay attributable to their submission.
	Accession *regexp.Regexp
	// HeaderScanRows bounds the search for a late header row.
	HeaderScanRows int
	// SniffRows bounds the sample used for delimiter sniffing.
	SniffRows int
}

// DefaultConfig returns the patterns used for expression submission
// supplementary files.
func DefaultConfig() Config {
	return Config{
		Keep:           regexp.MustCompile(`\.(tab|xlsx|diff|tsv|xls|csv|txt|rtf)(\.gz)?$`),
		Workbook:       regexp.MustCompile(`xls`),
		Accession:      regexp.MustCompile(`GSE\d+_`),
		HeaderScanRows: 20,
		SniffRows:      100,
	}
}
