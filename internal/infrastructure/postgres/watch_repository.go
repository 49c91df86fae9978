package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
)

var _ repository.WatchRepository = (*WatchRepo)(nil)

// WatchRepo implementación de WatchRepository sobre PostgreSQL (tabla watchlist).
type WatchRepo struct {
	q Querier
}

// NewWatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWatchRepository(q Querier) *WatchRepo {
	return &WatchRepo{q: q}
}

// Add agrega un producto a la lista del usuario. Devuelve false si ya estaba.
func (r *WatchRepo) Add(ctx context.Context, w *entity.Watch) (bool, error) {
	var pid string
	err := r.q.QueryRow(ctx, `
		INSERT INTO watchlist (user_id, user_name, product_id, product_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id) DO NOTHING
		RETURNING product_id`,
		w.UserID, w.UserName, w.ProductID, w.ProductName,
	).Scan(&pid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("add watch: %w", err)
	}
	return true, nil
}

// Remove quita un producto de la lista del usuario. Devuelve false si no estaba.
func (r *WatchRepo) Remove(ctx context.Context, userID, productID string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`DELETE FROM watchlist WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	)
	if err != nil {
		return false, fmt.Errorf("remove watch: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// ListByUser lista los productos seguidos por un usuario.
func (r *WatchRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Watch, error) {
	rows, err := r.q.Query(ctx, `
		SELECT user_id, user_name, product_id, product_name, added_at
		FROM watchlist WHERE user_id = $1 ORDER BY added_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list watches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Watch
	for rows.Next() {
		var w entity.Watch
		if err := rows.Scan(&w.UserID, &w.UserName, &w.ProductID, &w.ProductName, &w.AddedAt); err != nil {
			return nil, fmt.Errorf("scan watch: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

// UsersWatching devuelve los user_id distintos que siguen un producto.
func (r *WatchRepo) UsersWatching(ctx context.Context, productID string) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT DISTINCT user_id FROM watchlist WHERE product_id = $1`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("users watching: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// UsersWithWatches devuelve los user_id con al menos un producto seguido
// (destinatarios del reporte diario).
func (r *WatchRepo) UsersWithWatches(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT user_id FROM watchlist`)
	if err != nil {
		return nil, fmt.Errorf("users with watches: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
