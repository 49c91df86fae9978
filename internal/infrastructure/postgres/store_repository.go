package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo implementación de StoreRepository sobre PostgreSQL (tabla stores).
// Datos de referencia: se cargan con cmd/seedstores y el resto del sistema solo lee.
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

// GetByID obtiene una tienda por ID. Devuelve (nil, nil) si no existe.
func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	var s entity.Store
	err := r.q.QueryRow(ctx, `
		SELECT store_id, city, address1, state, zip_code, phone, latitude, longitude, last_updated
		FROM stores WHERE store_id = $1`, id,
	).Scan(&s.ID, &s.City, &s.Address, &s.State, &s.ZipCode, &s.Phone, &s.Latitude, &s.Longitude, &s.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &s, nil
}

// ListAll devuelve el directorio completo de tiendas.
func (r *StoreRepo) ListAll(ctx context.Context) ([]*entity.Store, error) {
	rows, err := r.q.Query(ctx, `
		SELECT store_id, city, address1, state, zip_code, phone, latitude, longitude, last_updated
		FROM stores ORDER BY city, store_id`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()
	var list []*entity.Store
	for rows.Next() {
		var s entity.Store
		if err := rows.Scan(&s.ID, &s.City, &s.Address, &s.State, &s.ZipCode, &s.Phone, &s.Latitude, &s.Longitude, &s.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// UpsertBatch carga el directorio completo en un solo round trip. Devuelve filas escritas.
func (r *StoreRepo) UpsertBatch(ctx context.Context, stores []*entity.Store) (int, error) {
	if len(stores) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, s := range stores {
		batch.Queue(`
			INSERT INTO stores (store_id, city, address1, state, zip_code, phone, latitude, longitude, last_updated)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP)
			ON CONFLICT (store_id) DO UPDATE SET
				city = EXCLUDED.city,
				address1 = EXCLUDED.address1,
				state = EXCLUDED.state,
				zip_code = EXCLUDED.zip_code,
				phone = EXCLUDED.phone,
				latitude = EXCLUDED.latitude,
				longitude = EXCLUDED.longitude,
				last_updated = CURRENT_TIMESTAMP`,
			s.ID, s.City, s.Address, s.State, s.ZipCode, s.Phone, s.Latitude, s.Longitude,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	written := 0
	for range stores {
		if _, err := br.Exec(); err != nil {
			return written, fmt.Errorf("upsert store: %w", err)
		}
		written++
	}
	return written, nil
}
