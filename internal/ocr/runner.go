package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// execRunner shells out to poppler/tesseract, timing each call and logging
// through the extractor's logger.
type execRunner struct {
	logger *slog.Logger
}

// stderrCap keeps a tesseract page dump from flooding the log.
const stderrCap = 8 << 10

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()

	attrs := []any{
		"cmd", name,
		"args", strings.Join(args, " "),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		r.logger.Error("exec failed", append(attrs,
			"error", err,
			"stderr", truncate(errb.String(), stderrCap))...)
	} else {
		r.logger.Debug("exec ok", append(attrs,
			"stdout_bytes", out.Len(),
			"stderr_bytes", errb.Len())...)
	}

	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
