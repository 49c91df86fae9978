package entity

import "time"

// EventKind clasifica los cambios semánticos que generan alertas.
type EventKind string

const (
	EventBecameActive    EventKind = "became_active"
	EventBecameInactive  EventKind = "became_inactive"
	EventCategoryEntered EventKind = "category_entered"
	EventStockIncreased  EventKind = "stock_increased"
)

// Event es una alerta producida por el clasificador de deltas. La emisión es
// una función pura de (anterior, actual): el mismo par produce siempre la
// misma decisión.
type Event struct {
	ID          string // uuid
	Kind        EventKind
	ProductID   string
	ProductName string
	ProductURL  string
	Category    string // solo category_entered
	StoreID     string // solo stock_increased
	StoreCity   string
	StoreAddr   string
	PrevQty     int // solo stock_increased
	CurrQty     int
	At          time.Time
}
