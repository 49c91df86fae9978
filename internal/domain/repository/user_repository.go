package repository

import (
	"context"
	"time"

	"github.com/jhoicas/spiritwatch/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Get(ctx context.Context, userID string) (*entity.User, error)
	// Upsert crea el usuario o actualiza su nombre; no toca la suscripción de
	// usuarios existentes.
	Upsert(ctx context.Context, user *entity.User) error
	// ExtendSubscription extiende el vencimiento: desde el vencimiento actual
	// si sigue vigente, desde ahora si ya venció. Devuelve el nuevo vencimiento.
	ExtendSubscription(ctx context.Context, userID string, days int) (*time.Time, error)
	SetAdmin(ctx context.Context, userID string, isAdmin bool) error
	ListAll(ctx context.Context) ([]string, error)
}
