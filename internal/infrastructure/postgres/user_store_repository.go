package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
)

var _ repository.UserStoreRepository = (*UserStoreRepo)(nil)

// UserStoreRepo implementación de UserStoreRepository sobre PostgreSQL (tabla user_stores).
type UserStoreRepo struct {
	q Querier
}

// NewUserStoreRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUserStoreRepository(q Querier) *UserStoreRepo {
	return &UserStoreRepo{q: q}
}

// Add registra una tienda seguida por el usuario. Devuelve false si ya estaba.
func (r *UserStoreRepo) Add(ctx context.Context, us *entity.UserStore) (bool, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO user_stores (user_id, store_id, city, address1)
		VALUES ($1, $2, $3, $4)`,
		us.UserID, us.StoreID, us.City, us.Address,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("add user store: %w", err)
	}
	return true, nil
}

// Remove quita una tienda seguida. Devuelve false si no estaba.
func (r *UserStoreRepo) Remove(ctx context.Context, userID, storeID string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`DELETE FROM user_stores WHERE user_id = $1 AND store_id = $2`,
		userID, storeID,
	)
	if err != nil {
		return false, fmt.Errorf("remove user store: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// ListByUser lista las tiendas seguidas por un usuario.
func (r *UserStoreRepo) ListByUser(ctx context.Context, userID string) ([]*entity.UserStore, error) {
	rows, err := r.q.Query(ctx, `
		SELECT user_id, store_id, city, address1, added_at
		FROM user_stores WHERE user_id = $1 ORDER BY added_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user stores: %w", err)
	}
	defer rows.Close()
	var list []*entity.UserStore
	for rows.Next() {
		var us entity.UserStore
		if err := rows.Scan(&us.UserID, &us.StoreID, &us.City, &us.Address, &us.AddedAt); err != nil {
			return nil, fmt.Errorf("scan user store: %w", err)
		}
		list = append(list, &us)
	}
	return list, rows.Err()
}

// IsTracked indica si el usuario sigue la tienda (filtro de alertas de stock).
func (r *UserStoreRepo) IsTracked(ctx context.Context, userID, storeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_stores WHERE user_id = $1 AND store_id = $2)`,
		userID, storeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("is store tracked: %w", err)
	}
	return exists, nil
}
