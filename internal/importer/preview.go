package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"mediaetl/internal/csvreader"
	"mediaetl/pkg/records"
)

// PreviewRecord is one transformed and validated record of a dry run.
type PreviewRecord struct {
	Row    int            `json:"row"`
	Record records.Record `json:"record"`
	Valid  bool           `json:"valid"`
	Errors []string       `json:"errors,omitempty"`
}

// Preview is the result of a dry run: the normalized headers and the first
// few transformed records, with their validation outcome.
type Preview struct {
	Entity  string          `json:"entity"`
	File    string          `json:"file"`
	Headers []string        `json:"headers"`
	Total   int             `json:"total_records"`
	Records []PreviewRecord `json:"records"`
}

// DryRun transforms and validates the first cfg.PreviewRows records of path
// without opening a write transaction; nothing is persisted. Foreign-key
// resolution is skipped, so cross-table references are previewed in their
// external form.
func (imp *Importer) DryRun(ctx context.Context, entityType, path string) (Preview, error) {
	tr, err := NewTransformer(entityType)
	if err != nil {
		return Preview{}, err
	}
	spec := tr.Spec()

	rd, err := csvreader.Open(path, imp.cfg.DelimiterRune())
	if err != nil {
		return Preview{}, err
	}
	defer rd.Close()

	total, err := rd.Count()
	if err != nil {
		return Preview{}, fmt.Errorf("count records: %w", err)
	}

	pv := Preview{
		Entity:  spec.Name,
		File:    path,
		Headers: rd.Headers(),
		Total:   total,
	}
	for len(pv.Records) < imp.cfg.PreviewRows {
		raw, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return pv, fmt.Errorf("read row: %w", err)
		}

		rec := tr.Transform(raw)
		valid := tr.Validate(rec)
		pv.Records = append(pv.Records, PreviewRecord{
			Row:    rd.Line(),
			Record: rec,
			Valid:  valid,
			Errors: tr.ValidationErrors(),
		})
	}
	return pv, nil
}
