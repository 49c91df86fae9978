package repository

import (
	"context"

	"github.com/jhoicas/spiritwatch/internal/domain/entity"
)

// WatchRepository define el puerto de persistencia para Watch (DIP).
// El núcleo de monitoreo solo lee; Add/Remove los usan los comandos del bot.
type WatchRepository interface {
	Add(ctx context.Context, watch *entity.Watch) (bool, error)
	Remove(ctx context.Context, userID, productID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Watch, error)
	// UsersWatching devuelve los user_id distintos que siguen un producto.
	UsersWatching(ctx context.Context, productID string) ([]string, error)
	// UsersWithWatches devuelve los user_id con al menos un producto seguido.
	UsersWithWatches(ctx context.Context) ([]string, error)
}

// UserStoreRepository define el puerto para las tiendas seguidas por usuario.
type UserStoreRepository interface {
	Add(ctx context.Context, us *entity.UserStore) (bool, error)
	Remove(ctx context.Context, userID, storeID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.UserStore, error)
	IsTracked(ctx context.Context, userID, storeID string) (bool, error)
}
