package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mediaetl/internal/config"
	"mediaetl/internal/progress"
	"mediaetl/internal/storage"
	"mediaetl/internal/storage/sqlite"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openSQLite(t *testing.T) storage.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), storage.Config{
		Kind:      "sqlite",
		DSN:       ":memory:",
		Bootstrap: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestImporter(t *testing.T, s storage.Store) *Importer {
	t.Helper()
	cfg := config.Default().Import
	return New(s, cfg, nil)
}

const usersCSV = `User ID,Email,First Name,Last Name,Age,Gender,Country,City,Subscription Plan,Is Active
u1,ann@example.com,ann,smith,30,f,usa,denver,basic,yes
u2,bob@example.com,bob,jones,41,m,canada,toronto,premium plus,no
`

const moviesCSV = `Movie ID,Title,Content Type,Genre Primary,Release Year,Language,Country Of Origin
m1,Foo,Movie,Action,2023,English,USA
`

func TestImportUsersEndToEnd(t *testing.T) {
	s := openSQLite(t)
	imp := newTestImporter(t, s)
	path := writeFile(t, "users.csv", usersCSV)

	sum, err := imp.Import(context.Background(), "users", path)
	require.NoError(t, err)
	require.True(t, sum.Success)
	require.Equal(t, "users", sum.Entity)
	require.Equal(t, 2, sum.Total)
	require.Equal(t, 2, sum.Stats.Processed)
	require.Equal(t, 2, sum.Stats.Inserted)
	require.Equal(t, 0, sum.Stats.Updated)
	require.Equal(t, 0, sum.Stats.Failed)
	require.NotEmpty(t, sum.RunID)
	require.NotEmpty(t, sum.Checksum)
}

func TestImportIsIdempotent(t *testing.T) {
	s := openSQLite(t)
	imp := newTestImporter(t, s)
	path := writeFile(t, "users.csv", usersCSV)

	_, err := imp.Import(context.Background(), "users", path)
	require.NoError(t, err)

	sum, err := imp.Import(context.Background(), "users", path)
	require.NoError(t, err)
	require.True(t, sum.Success)
	require.Equal(t, 0, sum.Stats.Inserted)
	require.Equal(t, 2, sum.Stats.Updated)

	// Row count is unchanged: upserts never duplicate.
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback(context.Background())
	_, found, err := tx.FindByKey(context.Background(), "users", "email", "ann@example.com")
	require.NoError(t, err)
	require.True(t, found)
}

func TestImportRecordsValidationFailures(t *testing.T) {
	s := openSQLite(t)
	imp := newTestImporter(t, s)
	csv := `User ID,Email,First Name,Last Name,Country,City,Subscription Plan
u1,ann@example.com,Ann,Smith,USA,Denver,Basic
u2,not-an-email,Bob,Jones,USA,Boston,Basic
`
	path := writeFile(t, "users.csv", csv)

	sum, err := imp.Import(context.Background(), "users", path)
	require.NoError(t, err, "per-record failures must not abort the run")
	require.False(t, sum.Success)
	require.Equal(t, 2, sum.Stats.Processed)
	require.Equal(t, 1, sum.Stats.Inserted)
	require.Equal(t, 1, sum.Stats.Failed)
	require.Len(t, sum.Stats.Recent, 1)
	require.Equal(t, progress.FailureValidation, sum.Stats.Recent[0].Type)
	require.Contains(t, sum.Stats.Recent[0].Details, "Email must be a valid email address")
}

// captureLogger records formatted log lines for assertions.
type captureLogger struct {
	infos  []string
	errors []string
}

func (l *captureLogger) Infof(format string, args ...any) {
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *captureLogger) Errorf(format string, args ...any) {
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func TestImportLogsFailedRecordData(t *testing.T) {
	s := openSQLite(t)
	lg := &captureLogger{}
	imp := New(s, config.Default().Import, lg)
	csv := `User ID,Email,First Name,Last Name,Country,City,Subscription Plan
u1,not-an-email,Ann,Smith,USA,Denver,Basic
`
	path := writeFile(t, "users.csv", csv)

	_, err := imp.Import(context.Background(), "users", path)
	require.NoError(t, err)
	require.NotEmpty(t, lg.errors)

	// The failure line carries both the raw row and its transformed form
	// so a failed record can be reconstructed from the log alone.
	line := lg.errors[0]
	require.Contains(t, line, "row=2")
	require.Contains(t, line, "raw=")
	require.Contains(t, line, "transformed=")
	require.Contains(t, line, "not-an-email")
}

func TestImportReviewsResolvesForeignKeys(t *testing.T) {
	s := openSQLite(t)
	imp := newTestImporter(t, s)
	ctx := context.Background()

	_, err := imp.Import(ctx, "users", writeFile(t, "users.csv", usersCSV))
	require.NoError(t, err)
	_, err = imp.Import(ctx, "movies", writeFile(t, "movies.csv", moviesCSV))
	require.NoError(t, err)

	reviewsCSV := `Review ID,User ID,Movie ID,Rating,Review Date,Device Type
r1,u1,m1,5,2024-02-10,mobile
r2,u1,m999,4,2024-02-11,tablet
`
	sum, err := imp.Import(ctx, "reviews", writeFile(t, "reviews.csv", reviewsCSV))
	require.NoError(t, err)
	require.False(t, sum.Success)
	require.Equal(t, 1, sum.Stats.Inserted)
	require.Equal(t, 1, sum.Stats.Failed)
	require.Contains(t, sum.Stats.Recent[0].Details, "Movie not found: m999")

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)
	_, found, err := tx.FindByKey(ctx, "reviews", "external_review_id", "r1")
	require.NoError(t, err)
	require.True(t, found)
	_, found, err = tx.FindByKey(ctx, "reviews", "external_review_id", "r2")
	require.NoError(t, err)
	require.False(t, found, "invalid review must never be written")
}

func TestImportUnsupportedEntity(t *testing.T) {
	imp := newTestImporter(t, openSQLite(t))
	_, err := imp.Import(context.Background(), "albums", writeFile(t, "x.csv", usersCSV))
	require.ErrorIs(t, err, ErrUnsupportedEntity)
}

func TestImportFileNotFound(t *testing.T) {
	imp := newTestImporter(t, openSQLite(t))
	_, err := imp.Import(context.Background(), "users", filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestImportRollsBackOnCommitFailure(t *testing.T) {
	s := &failingStore{inner: openSQLite(t)}
	imp := newTestImporter(t, s)
	path := writeFile(t, "users.csv", usersCSV)

	sum, err := imp.Import(context.Background(), "users", path)
	require.Error(t, err)
	require.False(t, sum.Success)
	require.Equal(t, progress.StatusFailed, sum.Stats.Status)
	require.True(t, s.tx.rolledBack)
}

// failingStore wraps a real store but fails every Commit.
type failingStore struct {
	inner storage.Store
	tx    *failingTx
}

func (s *failingStore) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	s.tx = &failingTx{Tx: tx}
	return s.tx, nil
}

func (s *failingStore) Close() error { return s.inner.Close() }

type failingTx struct {
	storage.Tx
	rolledBack bool
}

func (t *failingTx) Commit(context.Context) error { return errors.New("connection lost") }

func (t *failingTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return t.Tx.Rollback(ctx)
}

func TestDryRunWritesNothing(t *testing.T) {
	s := openSQLite(t)
	imp := newTestImporter(t, s)
	path := writeFile(t, "users.csv", usersCSV)

	pv, err := imp.DryRun(context.Background(), "users", path)
	require.NoError(t, err)
	require.Equal(t, "users", pv.Entity)
	require.Equal(t, 2, pv.Total)
	require.Len(t, pv.Records, 2)
	require.Contains(t, pv.Headers, "user_id")
	require.True(t, pv.Records[0].Valid)
	require.Equal(t, "ann@example.com", pv.Records[0].Record.String("email"))

	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback(context.Background())
	_, found, err := tx.FindByKey(context.Background(), "users", "email", "ann@example.com")
	require.NoError(t, err)
	require.False(t, found, "dry run must not persist records")
}

func TestDryRunCapsPreviewRows(t *testing.T) {
	imp := newTestImporter(t, openSQLite(t))
	imp.cfg.PreviewRows = 1
	path := writeFile(t, "users.csv", usersCSV)

	pv, err := imp.DryRun(context.Background(), "users", path)
	require.NoError(t, err)
	require.Len(t, pv.Records, 1)
	require.Equal(t, 2, pv.Total)
}

func TestNewTransformerCaseInsensitive(t *testing.T) {
	for _, name := range []string{"Users", "MOVIES", " reviews "} {
		tr, err := NewTransformer(name)
		require.NoError(t, err, name)
		require.NotNil(t, tr)
	}
}
