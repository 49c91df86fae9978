package entity

import "time"

// Entradas de caché de estado: el último valor observado de cada dimensión,
// usado como línea base de comparación. Una fila ausente significa "nunca
// observado", no "false"/"vacío". Cada sweep reemplaza la fila completa.

// ActiveState última observación del flag active de un producto.
type ActiveState struct {
	ProductID string
	State     TriState
	UpdatedAt time.Time
}

// CategorySet último conjunto de categorías observado para un producto.
// Se almacena completo aunque la categoría objetivo no esté involucrada,
// para soportar nuevos tags sin cambiar el esquema.
type CategorySet struct {
	ProductID  string
	Categories []string
	UpdatedAt  time.Time
}

// StockLevel última cantidad observada de un producto en una tienda.
type StockLevel struct {
	ProductID string
	StoreID   string
	Quantity  int
	CheckedAt time.Time
}
