package entity

import "time"

// Watch relaciona un suscriptor con un producto que quiere seguir (N:M).
type Watch struct {
	UserID      string
	UserName    string
	ProductID   string
	ProductName string
	AddedAt     time.Time
}

// UserStore relaciona un suscriptor con una tienda física que le interesa
// para alertas de stock (N:M).
type UserStore struct {
	UserID  string
	StoreID string
	City    string
	Address string
	AddedAt time.Time
}
