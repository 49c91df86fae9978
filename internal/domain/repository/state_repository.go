package repository

import (
	"context"

	"github.com/jhoicas/spiritwatch/internal/domain/entity"
)

// Puertos de la caché de estado, una interfaz por dimensión monitoreada.
// Cada sweep lee y escribe solo las filas de su dimensión, así los sweeps
// concurrentes de distinto tipo no se pisan entre sí.
//
// En los GetBatch una clave ausente del mapa significa "nunca observado";
// el clasificador no debe tratarla como false/vacío.

// ActiveStateRepository caché del flag active por producto.
type ActiveStateRepository interface {
	GetBatch(ctx context.Context, productIDs []string) (map[string]entity.TriState, error)
	PutBatch(ctx context.Context, states map[string]entity.TriState) error
}

// CategoryRepository caché del conjunto de categorías por producto.
type CategoryRepository interface {
	GetBatch(ctx context.Context, productIDs []string) (map[string][]string, error)
	PutBatch(ctx context.Context, sets map[string][]string) error
}

// StockLevelRepository caché de cantidad por (producto, tienda).
type StockLevelRepository interface {
	// Get devuelve la última cantidad y ok=false si nunca se observó el par.
	Get(ctx context.Context, productID, storeID string) (qty int, ok bool, err error)
	Put(ctx context.Context, productID, storeID string, qty int) error
}
