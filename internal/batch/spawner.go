package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/facturas-tools/extractor/internal/invoice"
)

// WorkerCommand is the hidden subcommand the binary re-execs itself with.
const WorkerCommand = "worker"

// workerGrace is how long a signalled worker gets before SIGKILL.
const workerGrace = 5 * time.Second

// ProcessSpawner isolates each document in a fresh copy of this binary. A
// crash inside a PDF or image library then costs one document, not the batch.
type ProcessSpawner struct {
	args   []string // flags forwarded to the worker (ocr, dpi, tool paths)
	logger *slog.Logger
}

func NewProcessSpawner(args []string, logger *slog.Logger) *ProcessSpawner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessSpawner{args: args, logger: logger}
}

// Extract re-execs this binary as `worker <flags> <path>` and decodes the
// one-shot JSON row list from its stdout.
func (s *ProcessSpawner) Extract(ctx context.Context, path string) ([]invoice.Row, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate own binary: %w", err)
	}

	args := append([]string{WorkerCommand}, s.args...)
	args = append(args, path)

	cmd := exec.CommandContext(ctx, self, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = workerGrace

	if err := cmd.Run(); err != nil {
		s.logger.Warn("worker process failed",
			"path", path,
			"error", err,
			"stderr", truncate(errb.String(), 4<<10))
		return nil, err
	}

	var rows []invoice.Row
	if err := json.Unmarshal(out.Bytes(), &rows); err != nil {
		return nil, fmt.Errorf("decode worker output: %w", err)
	}
	return rows, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
