package repository

import (
	"context"

	"github.com/jhoicas/spiritwatch/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Upsert reemplaza la fila completa: los productos se sobreescriben, nunca se
// mezclan campo a campo.
type ProductRepository interface {
	Upsert(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ListIDs(ctx context.Context) ([]string, error)
	ListAll(ctx context.Context) ([]*entity.Product, error)
}
