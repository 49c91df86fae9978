package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL.
// Guarda la última foto completa de cada producto (tabla products).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Upsert reemplaza la fila completa del producto con los datos recién observados.
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	var active *bool
	if v, ok := p.Active.Bool(); ok {
		active = &v
	}
	query := `
		INSERT INTO products (product_id, name, categories, active, in_stock, allocated, lottery, price, order_limit, product_url, thumbnail_url, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, CURRENT_TIMESTAMP)
		ON CONFLICT (product_id) DO UPDATE SET
			name = EXCLUDED.name,
			categories = EXCLUDED.categories,
			active = EXCLUDED.active,
			in_stock = EXCLUDED.in_stock,
			allocated = EXCLUDED.allocated,
			lottery = EXCLUDED.lottery,
			price = EXCLUDED.price,
			order_limit = EXCLUDED.order_limit,
			product_url = EXCLUDED.product_url,
			thumbnail_url = EXCLUDED.thumbnail_url,
			last_updated = CURRENT_TIMESTAMP`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, joinCategories(p.Categories), active, p.InStock,
		p.Allocated, p.Lottery, p.Price, p.OrderLimit, p.ProductURL, p.ThumbnailURL,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. Devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.q.QueryRow(ctx, `
		SELECT product_id, name, categories, active, in_stock, allocated, lottery, price, order_limit, product_url, thumbnail_url, last_updated
		FROM products WHERE product_id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListIDs devuelve todos los IDs de productos seguidos (el working set de los sweeps).
func (r *ProductRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT product_id FROM products ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListAll devuelve todos los productos con su última foto completa.
func (r *ProductRepo) ListAll(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, name, categories, active, in_stock, allocated, lottery, price, order_limit, product_url, thumbnail_url, last_updated
		FROM products`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var cats string
	var active *bool
	if err := row.Scan(
		&p.ID, &p.Name, &cats, &active, &p.InStock, &p.Allocated, &p.Lottery,
		&p.Price, &p.OrderLimit, &p.ProductURL, &p.ThumbnailURL, &p.LastUpdated,
	); err != nil {
		return nil, err
	}
	p.Categories = splitCategories(cats)
	if active == nil {
		p.Active = entity.StateUnknown
	} else {
		p.Active = entity.TriStateFromBool(*active)
	}
	return &p, nil
}
