package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
)

//go:embed schema.sql
var schemaSQL string

// ApplySchema creates any missing table or index.
func ApplySchema(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
