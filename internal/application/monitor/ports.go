package monitor

import (
	"context"

	"github.com/jhoicas/spiritwatch/internal/domain/entity"
)

// CatalogAPI es el puerto hacia el catálogo remoto que consumen los sweeps.
// Lo implementa infrastructure/catalog.Client.
type CatalogAPI interface {
	FetchActive(ctx context.Context, pid string) (entity.TriState, error)
	FetchCategories(ctx context.Context, pid string) ([]string, error)
	FetchProduct(ctx context.Context, pid, referenceStore string) (*entity.Product, error)
	FetchStock(ctx context.Context, pid string, storeIDs []string) (map[string]int, error)
	FetchStore(ctx context.Context, storeID string) (*entity.Store, error)
}

// Notifier es el puerto hacia el canal de notificaciones. Cada envío puede
// fallar de forma independiente por destinatario.
type Notifier interface {
	SendText(ctx context.Context, chatID, text string) error
	SendDocument(ctx context.Context, chatID, filePath, caption string) error
}
