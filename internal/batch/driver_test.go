package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/facturas-tools/extractor/constants"
	"github.com/facturas-tools/extractor/internal/invoice"
)

type stubSpawner struct {
	fn func(ctx context.Context, path string) ([]invoice.Row, error)
}

func (s *stubSpawner) Extract(ctx context.Context, path string) ([]invoice.Row, error) {
	return s.fn(ctx, path)
}

// testDriver skips NewDriver so tests can use timeouts below the floor.
func testDriver(timeout time.Duration, s Spawner) *Driver {
	d := NewDriver(Config{}, s, nil)
	d.cfg.ChildTimeout = timeout
	return d
}

func TestDriverTimeoutRowAndContinues(t *testing.T) {
	spawner := &stubSpawner{fn: func(ctx context.Context, path string) ([]invoice.Row, error) {
		if strings.Contains(path, "colgada") {
			<-ctx.Done() // hang until the driver gives up
			return nil, ctx.Err()
		}
		return []invoice.Row{{InvoiceNumber: "ok-1"}}, nil
	}}
	d := testDriver(30*time.Millisecond, spawner)

	rows := d.Run(context.Background(), []string{"/in/colgada.pdf", "/in/buena.pdf"})
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want the batch to continue past the timeout", len(rows))
	}

	var timeoutRow, okRow *invoice.Row
	for i := range rows {
		switch rows[i].InvoiceNumber {
		case "colgada":
			timeoutRow = &rows[i]
		case "ok-1":
			okRow = &rows[i]
		}
	}
	if timeoutRow == nil {
		t.Fatal("no diagnostic row for the hung document")
	}
	if !strings.HasPrefix(timeoutRow.Notes, "Timeout") {
		t.Errorf("Notes = %q, want a Timeout marker", timeoutRow.Notes)
	}
	if okRow == nil {
		t.Error("the healthy document's row is missing")
	}
}

func TestDriverNoDataRow(t *testing.T) {
	tests := []struct {
		name string
		fn   func(ctx context.Context, path string) ([]invoice.Row, error)
	}{
		{"worker error", func(context.Context, string) ([]invoice.Row, error) {
			return nil, errors.New("exit status 2")
		}},
		{"empty output", func(context.Context, string) ([]invoice.Row, error) {
			return nil, nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDriver(time.Second, &stubSpawner{fn: tt.fn})
			rows := d.Run(context.Background(), []string{"/in/rota.pdf"})
			if len(rows) != 1 {
				t.Fatalf("rows = %d, want 1", len(rows))
			}
			if rows[0].Notes != constants.NoteNoChildData {
				t.Errorf("Notes = %q, want %q", rows[0].Notes, constants.NoteNoChildData)
			}
			if rows[0].InvoiceNumber != "rota" {
				t.Errorf("InvoiceNumber = %q, want stem", rows[0].InvoiceNumber)
			}
		})
	}
}

func TestDriverSortsByDateThenNumber(t *testing.T) {
	byPath := map[string][]invoice.Row{
		"/in/a.pdf": {{InvoiceDate: "2024-05-01", InvoiceNumber: "b"}},
		"/in/b.pdf": {{InvoiceDate: "", InvoiceNumber: "sin-fecha"}},
		"/in/c.pdf": {{InvoiceDate: "2024-01-15", InvoiceNumber: "z"}},
		"/in/d.pdf": {{InvoiceDate: "2024-05-01", InvoiceNumber: "a"}},
	}
	spawner := &stubSpawner{fn: func(_ context.Context, path string) ([]invoice.Row, error) {
		return byPath[path], nil
	}}
	d := testDriver(time.Second, spawner)

	rows := d.Run(context.Background(), []string{"/in/a.pdf", "/in/b.pdf", "/in/c.pdf", "/in/d.pdf"})
	var got []string
	for _, r := range rows {
		got = append(got, r.InvoiceNumber)
	}
	want := []string{"z", "a", "b", "sin-fecha"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v (dated ascending, undated last)", got, want)
		}
	}
}

func TestFindPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"b.pdf", "A.PDF", "nota.txt"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "c.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err := FindPDFs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 {
		t.Fatalf("found %d files, want 3 (case-insensitive, recursive, no .txt)", len(paths))
	}
	for i := 1; i < len(paths); i++ {
		if paths[i-1] > paths[i] {
			t.Errorf("paths not sorted: %v", paths)
		}
	}
}

func TestFindPDFsMissingDir(t *testing.T) {
	if _, err := FindPDFs("/no/such/dir"); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestDriverConfigFloors(t *testing.T) {
	d := NewDriver(Config{ChildTimeout: time.Second}, nil, nil)
	if d.cfg.ChildTimeout != 30*time.Second {
		t.Errorf("ChildTimeout = %v, want the 30s floor", d.cfg.ChildTimeout)
	}
	if d.cfg.ThrottleEvery != 6 || d.cfg.ThrottleSleep != 800*time.Millisecond {
		t.Errorf("throttle defaults = %d/%v", d.cfg.ThrottleEvery, d.cfg.ThrottleSleep)
	}
}
