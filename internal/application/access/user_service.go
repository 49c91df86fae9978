package access

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/spiritwatch/internal/domain"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
	"github.com/jhoicas/spiritwatch/pkg/logger"
)

// UserService administra el ciclo de vida de la suscripción de un usuario.
type UserService struct {
	users            repository.UserRepository
	trialDays        int
	subscriptionDays int
	log              *logger.Logger
	now              func() time.Time
}

// NewUserService construye el servicio de usuarios.
func NewUserService(users repository.UserRepository, trialDays, subscriptionDays int, log *logger.Logger) *UserService {
	return &UserService{
		users:            users,
		trialDays:        trialDays,
		subscriptionDays: subscriptionDays,
		log:              log,
		now:              time.Now,
	}
}

// Register registra al usuario en su primer contacto con el período de prueba
// ya corriendo. Si ya existe, solo refresca el nombre.
func (s *UserService) Register(ctx context.Context, userID, fullName string) (*entity.User, error) {
	existing, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("consultar usuario: %w", err)
	}
	if existing != nil {
		existing.FullName = fullName
		if err := s.users.Upsert(ctx, existing); err != nil {
			return nil, fmt.Errorf("actualizar usuario: %w", err)
		}
		return existing, nil
	}

	now := s.now()
	expiry := now.AddDate(0, 0, s.trialDays)
	user := &entity.User{
		UserID:             userID,
		FullName:           fullName,
		IsSubscribed:       true,
		SubscriptionExpiry: &expiry,
		Joined:             now,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("registrar usuario: %w", err)
	}
	s.log.Info().Str("user_id", userID).Time("trial_until", expiry).Msg("usuario registrado con trial")
	return user, nil
}

// Check devuelve la decisión de acceso vigente para el usuario.
func (s *UserService) Check(ctx context.Context, userID string) (Decision, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return NoAccount, fmt.Errorf("consultar usuario: %w", err)
	}
	return Decide(user, s.now(), s.trialDays), nil
}

// ExtendSubscription agrega el período de suscripción: al vencimiento vigente
// si existe, desde ahora si ya venció. Devuelve el nuevo vencimiento.
func (s *UserService) ExtendSubscription(ctx context.Context, userID string) (*time.Time, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("consultar usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNoAccount
	}
	expiry, err := s.users.ExtendSubscription(ctx, userID, s.subscriptionDays)
	if err != nil {
		return nil, fmt.Errorf("extender suscripción: %w", err)
	}
	s.log.Info().Str("user_id", userID).Time("until", *expiry).Msg("suscripción extendida")
	return expiry, nil
}

// SetAdmin marca o desmarca al usuario como administrador.
func (s *UserService) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("consultar usuario: %w", err)
	}
	if user == nil {
		return domain.ErrNoAccount
	}
	if err := s.users.SetAdmin(ctx, userID, isAdmin); err != nil {
		return fmt.Errorf("marcar admin: %w", err)
	}
	return nil
}

// CountRegistered devuelve cuántos usuarios están registrados.
func (s *UserService) CountRegistered(ctx context.Context) (int, error) {
	ids, err := s.users.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("listar usuarios: %w", err)
	}
	return len(ids), nil
}
