package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo caché del conjunto de categorías sobre PostgreSQL
// (tabla product_category_cache; el conjunto se guarda como texto separado por comas).
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// GetBatch devuelve los conjuntos conocidos por producto. Fila ausente = nunca observado.
func (r *CategoryRepo) GetBatch(ctx context.Context, productIDs []string) (map[string][]string, error) {
	sets := make(map[string][]string, len(productIDs))
	if len(productIDs) == 0 {
		return sets, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT product_id, categories FROM product_category_cache WHERE product_id = ANY($1)`,
		productIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("get category sets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pid string
		var cats *string
		if err := rows.Scan(&pid, &cats); err != nil {
			return nil, fmt.Errorf("scan category set: %w", err)
		}
		if cats == nil {
			sets[pid] = []string{}
		} else {
			sets[pid] = splitCategories(*cats)
		}
	}
	return sets, rows.Err()
}

// PutBatch reemplaza los conjuntos completos en un solo round trip (upsert).
func (r *CategoryRepo) PutBatch(ctx context.Context, sets map[string][]string) error {
	if len(sets) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for pid, cats := range sets {
		batch.Queue(`
			INSERT INTO product_category_cache (product_id, categories, updated)
			VALUES ($1, $2, CURRENT_TIMESTAMP)
			ON CONFLICT (product_id)
			DO UPDATE SET categories = EXCLUDED.categories, updated = CURRENT_TIMESTAMP`,
			pid, joinCategories(cats),
		)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range sets {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert category sets: %w", err)
		}
	}
	return nil
}
