package entity

import "time"

// Store representa una tienda física del proveedor. Datos de referencia:
// se cargan una vez vía cmd/seedstores y el núcleo solo los lee.
type Store struct {
	ID          string
	City        string
	Address     string
	State       string
	ZipCode     string
	Phone       string
	Latitude    *float64
	Longitude   *float64
	LastUpdated time.Time
}
