package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo caché de cantidad por (producto, tienda) sobre PostgreSQL
// (tabla store_stock_cache).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get devuelve la última cantidad conocida y ok=false si el par nunca se observó.
func (r *StockLevelRepo) Get(ctx context.Context, productID, storeID string) (int, bool, error) {
	var qty int
	err := r.q.QueryRow(ctx,
		`SELECT last_qty FROM store_stock_cache WHERE product_id = $1 AND store_id = $2`,
		productID, storeID,
	).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get stock level: %w", err)
	}
	return qty, true, nil
}

// Put reemplaza la fila completa (upsert), se haya detectado cambio o no.
func (r *StockLevelRepo) Put(ctx context.Context, productID, storeID string, qty int) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO store_stock_cache (product_id, store_id, last_qty, last_checked)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (product_id, store_id)
		DO UPDATE SET last_qty = EXCLUDED.last_qty, last_checked = CURRENT_TIMESTAMP`,
		productID, storeID, qty,
	)
	if err != nil {
		return fmt.Errorf("upsert stock level: %w", err)
	}
	return nil
}
