package batch

import (
	"context"
	"encoding/json"
	"io"

	"github.com/facturas-tools/extractor/internal/extract"
)

// RunWorker is the child side of the isolation boundary: extract one document
// and write its rows as a single JSON document. The parent reads stdout once
// and never talks back.
func RunWorker(ctx context.Context, o *extract.Orchestrator, path string, w io.Writer) error {
	rows := o.Extract(ctx, path)
	return json.NewEncoder(w).Encode(rows)
}
