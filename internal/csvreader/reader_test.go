package csvreader

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"mediaetl/pkg/records"
)

// writeCSV drops a file with the given body into a temp dir and returns its path.
func writeCSV(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func drain(t *testing.T, r *Reader) []records.Record {
	t.Helper()
	var out []records.Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		out = append(out, rec)
	}
}

func TestOpen_FileNotFound(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"), ',')
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
}

func TestOpen_EmptyFileIsMalformedHeader(t *testing.T) {
	_, err := Open(writeCSV(t, ""), ',')
	if !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("err = %v, want ErrMalformedHeader", err)
	}
}

func TestHeaders_Normalized(t *testing.T) {
	r, err := Open(writeCSV(t, "User ID,First-Name, Email \nu1,Ann,a@b.c\n"), ',')
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	want := []string{"user_id", "first_name", "email"}
	got := r.Headers()
	if len(got) != len(want) {
		t.Fatalf("headers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("header[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRead_SkipsBlankAndPadsShortRows(t *testing.T) {
	body := "a,b,c\n1,2,3\n,,\n\n4,5\n"
	r, err := Open(writeCSV(t, body), ',')
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	recs := drain(t, r)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2 (blank rows skipped)", len(recs))
	}
	// The short row is padded to header length with "".
	last := recs[1]
	if last.String("a") != "4" || last.String("b") != "5" || last.String("c") != "" {
		t.Errorf("padded row = %v", last)
	}
	if len(last) != 3 {
		t.Errorf("record has %d keys, want one entry per header (3)", len(last))
	}
}

func TestRead_CustomDelimiterAndQuotes(t *testing.T) {
	body := "id;title\nm1;\"Foo; the movie\"\n"
	r, err := Open(writeCSV(t, body), ';')
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	recs := drain(t, r)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if got := recs[0].String("title"); got != "Foo; the movie" {
		t.Errorf("title = %q", got)
	}
}

func TestCount_ExcludesHeaderAndBlankRows(t *testing.T) {
	body := "a,b\n1,2\n,,\n3,4\n\n5,6\n"
	r, err := Open(writeCSV(t, body), ',')
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	n, err := r.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestCount_DoesNotDisturbReadPosition(t *testing.T) {
	body := "a\nx\ny\nz\n"
	r, err := Open(writeCSV(t, body), ',')
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	first, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if first.String("a") != "x" {
		t.Fatalf("first = %v", first)
	}

	if _, err := r.Count(); err != nil {
		t.Fatalf("Count: %v", err)
	}

	// Reading resumes exactly where it left off.
	second, err := r.Read()
	if err != nil {
		t.Fatalf("Read after Count: %v", err)
	}
	if second.String("a") != "y" {
		t.Errorf("second = %v, want y", second)
	}
}

func TestCount_Cached(t *testing.T) {
	p := writeCSV(t, "a\n1\n2\n")
	r, err := Open(p, ',')
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if n, _ := r.Count(); n != 2 {
		t.Fatalf("Count = %d, want 2", n)
	}

	// Remove the file; the cached count must still be served.
	if err := os.Remove(p); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if n, err := r.Count(); err != nil || n != 2 {
		t.Errorf("cached Count = (%d, %v), want (2, nil)", n, err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	r, err := Open(writeCSV(t, "a\n1\n"), ',')
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := r.Read(); err == nil || err == io.EOF {
		t.Errorf("Read after Close should fail, got %v", err)
	}
}
