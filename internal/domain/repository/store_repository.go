package repository

import (
	"context"

	"github.com/jhoicas/spiritwatch/internal/domain/entity"
)

// StoreRepository define el puerto de persistencia para el directorio de
// tiendas (datos de referencia, solo lectura para el núcleo).
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Store, error)
	ListAll(ctx context.Context) ([]*entity.Store, error)
	// UpsertBatch carga el directorio completo (cmd/seedstores).
	UpsertBatch(ctx context.Context, stores []*entity.Store) (int, error)
}
