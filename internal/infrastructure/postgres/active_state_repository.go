package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
)

var _ repository.ActiveStateRepository = (*ActiveStateRepo)(nil)

// ActiveStateRepo caché del flag active sobre PostgreSQL (tabla product_active_cache).
type ActiveStateRepo struct {
	q Querier
}

// NewActiveStateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewActiveStateRepository(q Querier) *ActiveStateRepo {
	return &ActiveStateRepo{q: q}
}

// GetBatch devuelve el último estado conocido por producto en una sola consulta.
// Los productos sin fila no aparecen en el mapa: nunca fueron observados.
func (r *ActiveStateRepo) GetBatch(ctx context.Context, productIDs []string) (map[string]entity.TriState, error) {
	states := make(map[string]entity.TriState, len(productIDs))
	if len(productIDs) == 0 {
		return states, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT product_id, active FROM product_active_cache WHERE product_id = ANY($1)`,
		productIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("get active states: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pid string
		var active *bool
		if err := rows.Scan(&pid, &active); err != nil {
			return nil, fmt.Errorf("scan active state: %w", err)
		}
		if active == nil {
			states[pid] = entity.StateUnknown
		} else {
			states[pid] = entity.TriStateFromBool(*active)
		}
	}
	return states, rows.Err()
}

// PutBatch reemplaza las filas completas en un solo round trip (upsert).
// Un estado desconocido se persiste como NULL.
func (r *ActiveStateRepo) PutBatch(ctx context.Context, states map[string]entity.TriState) error {
	if len(states) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for pid, state := range states {
		var active *bool
		if v, ok := state.Bool(); ok {
			active = &v
		}
		batch.Queue(`
			INSERT INTO product_active_cache (product_id, active, updated)
			VALUES ($1, $2, CURRENT_TIMESTAMP)
			ON CONFLICT (product_id)
			DO UPDATE SET active = EXCLUDED.active, updated = CURRENT_TIMESTAMP`,
			pid, active,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range states {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert active states: %w", err)
		}
	}
	return nil
}
