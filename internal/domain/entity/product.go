package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa el último estado observado de un producto del catálogo remoto.
// El ID es el token opaco del proveedor (repositoryId) y es la clave primaria.
// Los productos nunca se borran: cada sweep reemplaza la fila completa.
type Product struct {
	ID           string
	Name         string
	Categories   []string // tokens de categoría en minúsculas
	Active       TriState
	InStock      int
	Allocated    string // flags del proveedor; llegan como "true"/"false"/"N/A"
	Lottery      string
	Price        decimal.Decimal // precio de lista
	OrderLimit   string
	ProductURL   string
	ThumbnailURL string
	LastUpdated  time.Time
}

// HasCategory indica si el producto pertenece a la categoría dada (token en minúsculas).
func (p *Product) HasCategory(token string) bool {
	for _, c := range p.Categories {
		if c == token {
			return true
		}
	}
	return false
}
