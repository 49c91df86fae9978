package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación de UserRepository sobre PostgreSQL (tabla users).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Get obtiene un usuario por ID. Devuelve (nil, nil) si no existe.
func (r *UserRepo) Get(ctx context.Context, userID string) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(ctx, `
		SELECT user_id, COALESCE(full_name, ''), is_admin, is_subscribed, subscription_expiry, joined
		FROM users WHERE user_id = $1`, userID,
	).Scan(&u.UserID, &u.FullName, &u.IsAdmin, &u.IsSubscribed, &u.SubscriptionExpiry, &u.Joined)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Upsert crea el usuario con su estado inicial de suscripción; si ya existe
// solo refresca el nombre, sin tocar la suscripción.
func (r *UserRepo) Upsert(ctx context.Context, u *entity.User) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (user_id, full_name, is_admin, is_subscribed, subscription_expiry, joined)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET full_name = EXCLUDED.full_name`,
		u.UserID, u.FullName, u.IsAdmin, u.IsSubscribed, u.SubscriptionExpiry,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// ExtendSubscription extiende el vencimiento: desde el vencimiento vigente si
// existe, desde ahora si ya venció. Devuelve el nuevo vencimiento.
func (r *UserRepo) ExtendSubscription(ctx context.Context, userID string, days int) (*time.Time, error) {
	var expiry time.Time
	err := r.q.QueryRow(ctx, `
		UPDATE users
		SET is_subscribed = TRUE,
			subscription_expiry = CASE
				WHEN subscription_expiry > CURRENT_TIMESTAMP
				THEN subscription_expiry + $2 * INTERVAL '1 day'
				ELSE CURRENT_TIMESTAMP + $2 * INTERVAL '1 day'
			END
		WHERE user_id = $1
		RETURNING subscription_expiry`,
		userID, days,
	).Scan(&expiry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("extend subscription: %w", err)
	}
	return &expiry, nil
}

// SetAdmin otorga o revoca estado de admin (los admins no requieren suscripción).
func (r *UserRepo) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (user_id, is_admin, is_subscribed, subscription_expiry)
		VALUES ($1, $2, TRUE, NULL)
		ON CONFLICT (user_id) DO UPDATE SET
			is_admin = EXCLUDED.is_admin,
			is_subscribed = TRUE,
			subscription_expiry = NULL`,
		userID, isAdmin,
	)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	return nil
}

// ListAll devuelve todos los user_id registrados.
func (r *UserRepo) ListAll(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT user_id FROM users`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}
