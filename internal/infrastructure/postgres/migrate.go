package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schema string

// Migrate aplica el esquema (CREATE ... IF NOT EXISTS). Sin argumentos, pgx usa el protocolo simple
// y acepta varias sentencias en un solo Exec.
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}
