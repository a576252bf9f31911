// Package importer orchestrates a whole import run: it wires the reader,
// the entity transformer, the upserting writer and the stats tracker per
// record, owns the single enclosing transaction, and turns the outcome into
// a Summary.
//
// Failure policy: per-record problems (validation, write rejection, even a
// panic while processing one row) are recorded in the stats and processing
// continues. Only run-level failures (file errors, transaction or connection
// loss) abort the run, roll back, and are returned as an error.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"mediaetl/internal/config"
	"mediaetl/internal/csvreader"
	"mediaetl/internal/entity"
	"mediaetl/internal/metrics"
	"mediaetl/internal/progress"
	"mediaetl/internal/storage"
	"mediaetl/internal/writer"
	"mediaetl/pkg/records"
)

// Logger receives the pipeline's log events. The default implementation
// writes key=value lines via the standard log package.
type Logger interface {
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

type stdLogger struct{}

func (stdLogger) Infof(format string, args ...any)  { log.Printf(format, args...) }
func (stdLogger) Errorf(format string, args ...any) { log.Printf("ERROR "+format, args...) }

// Summary is the result of one import run.
type Summary struct {
	RunID    string         `json:"run_id"`
	Entity   string         `json:"entity"`
	File     string         `json:"file"`
	Checksum string         `json:"checksum"`
	Total    int            `json:"total_records"`
	Stats    progress.Stats `json:"stats"`

	// Success means the run completed and no record failed.
	Success bool `json:"success"`
}

// Importer runs imports against one store.
type Importer struct {
	store storage.Store
	cfg   config.Import
	log   Logger
}

// New returns an Importer over store tuned by cfg. A nil logger falls back
// to the standard log package.
func New(store storage.Store, cfg config.Import, logger Logger) *Importer {
	if logger == nil {
		logger = stdLogger{}
	}
	return &Importer{store: store, cfg: cfg, log: logger}
}

// Import runs a full import of path into the destination table of
// entityType. Per-record failures are reflected in the Summary stats; the
// returned error is non-nil only for run-level failures, in which case all
// writes of the run have been rolled back.
func (imp *Importer) Import(ctx context.Context, entityType, path string) (Summary, error) {
	started := time.Now()
	runID := uuid.NewString()
	summary := Summary{RunID: runID, Entity: entityType, File: path}

	tr, err := NewTransformer(entityType)
	if err != nil {
		return summary, err
	}
	spec := tr.Spec()
	summary.Entity = spec.Name

	rd, err := csvreader.Open(path, imp.cfg.DelimiterRune())
	if err != nil {
		return summary, err
	}
	defer rd.Close()

	sum, err := fileChecksum(path)
	if err != nil {
		return summary, err
	}
	summary.Checksum = sum

	total, err := rd.Count()
	if err != nil {
		return summary, fmt.Errorf("count records: %w", err)
	}
	summary.Total = total

	imp.log.Infof("import start run_id=%s entity=%s file=%s checksum=%s records=%d",
		runID, spec.Name, path, sum, total)

	tracker := progress.New(imp.cfg.RecentErrorCap, imp.cfg.ProgressEvery)
	w := writer.New(imp.store)
	if err := w.Begin(ctx); err != nil {
		tracker.Fail(err.Error())
		summary.Stats = tracker.Snapshot()
		return summary, err
	}

	runErr := imp.processAll(ctx, rd, tr, spec, w, tracker)
	if runErr == nil {
		runErr = w.Finalize(ctx)
	}
	if runErr == nil {
		runErr = w.Commit(ctx)
	}
	if runErr != nil {
		if rbErr := w.Rollback(ctx); rbErr != nil {
			imp.log.Errorf("rollback failed run_id=%s err=%v", runID, rbErr)
		}
		tracker.Fail(runErr.Error())
	} else {
		tracker.Complete()
	}

	stats := tracker.Snapshot()
	summary.Stats = stats
	summary.Success = runErr == nil && stats.Failed == 0

	metrics.RecordRun(spec.Name, runErr, time.Since(started))
	metrics.RecordRows(spec.Name, "processed", int64(stats.Processed))
	metrics.RecordRows(spec.Name, "inserted", int64(stats.Inserted))
	metrics.RecordRows(spec.Name, "updated", int64(stats.Updated))
	metrics.RecordRows(spec.Name, "failed", int64(stats.Failed))

	if runErr != nil {
		imp.log.Errorf("import failed run_id=%s entity=%s err=%v", runID, spec.Name, runErr)
		return summary, runErr
	}
	imp.log.Infof("import done run_id=%s entity=%s processed=%d inserted=%d updated=%d failed=%d duration=%s",
		runID, spec.Name, stats.Processed, stats.Inserted, stats.Updated, stats.Failed, stats.Duration)
	return summary, nil
}

func (imp *Importer) processAll(ctx context.Context, rd *csvreader.Reader, tr entity.Transformer, spec entity.Spec, w *writer.Writer, tracker *progress.Tracker) error {
	for {
		raw, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}

		if err := imp.processRecord(ctx, rd.Line(), raw, tr, spec, w, tracker); err != nil {
			return err
		}
		if tracker.ShouldReportProgress() {
			s := tracker.Snapshot()
			imp.log.Infof("import progress entity=%s processed=%d failed=%d", spec.Name, s.Processed, s.Failed)
		}
	}
}

// processRecord handles one record end to end. The recover guard turns a
// panic while processing this row into a recorded failure so one pathological
// row cannot take down the run; run-level errors still propagate.
func (imp *Importer) processRecord(ctx context.Context, row int, raw records.Record, tr entity.Transformer, spec entity.Spec, w *writer.Writer, tracker *progress.Tracker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			tracker.RecordFailure(row, progress.FailurePanic, fmt.Sprintf("%v", r))
			imp.log.Errorf("record panic row=%d err=%v", row, r)
			err = nil
		}
	}()

	tracker.RecordProcessed()

	rec := tr.Transform(raw)
	if fk, ok := tr.(entity.ForeignKeyResolver); ok {
		rec, err = fk.ResolveForeignKeys(ctx, rec, w.Lookup())
		if err != nil {
			return err
		}
	}
	if !tr.Validate(rec) {
		details := strings.Join(tr.ValidationErrors(), "; ")
		tracker.RecordFailure(row, progress.FailureValidation, details)
		imp.log.Errorf("record invalid row=%d entity=%s err=%q raw=%v transformed=%v",
			row, spec.Name, details, raw, rec)
		return nil
	}

	if !w.WriteRecord(ctx, spec, rec) {
		tracker.RecordFailure(row, progress.FailureWrite, w.LastError())
		imp.log.Errorf("record write failed row=%d entity=%s err=%q transformed=%v",
			row, spec.Name, w.LastError(), rec)
		return nil
	}
	tracker.RecordSuccess()
	switch w.LastOperation() {
	case writer.OpInserted:
		tracker.RecordInsert()
	case writer.OpUpdated:
		tracker.RecordUpdate()
	}
	return nil
}

// fileChecksum hashes the source file so a run can be tied to the exact
// input it saw.
func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
