package driven

import (
	"context"

	"github.com/kitsumori/fanvault/internal/core/domain"
)

// FileImporter is the binary import pipeline. It takes staged temp
// files, moves them into permanent storage and records the presence
// flags on the placeholder atomically with ingestion, so a crash
// between transfer and import leaves at worst an orphaned temp file.
type FileImporter interface {
	// Import ingests the staged original and/or thumbnail for a
	// placeholder. Either path may be empty when that binary is not
	// part of this import. When move is true the importer takes
	// ownership of the temp files.
	Import(ctx context.Context, file *domain.File, origPath, thumbPath string, move bool) error
}
