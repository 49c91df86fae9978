// Package access decide qué nivel de acceso tiene un usuario en un instante
// dado. La decisión es una enumeración cerrada: las categorías no se solapan.
package access

import (
	"time"

	"github.com/jhoicas/spiritwatch/internal/domain/entity"
)

// Decision es el resultado del chequeo de acceso de un usuario.
type Decision int

const (
	// NoAccount el usuario nunca fue registrado.
	NoAccount Decision = iota
	// Admin acceso permanente, sin vencimiento.
	Admin
	// Trial dentro del período de prueba inicial.
	Trial
	// Paid suscripción vigente, fuera del período de prueba.
	Paid
	// Expired la suscripción venció.
	Expired
)

// String devuelve el nombre de la decisión para logs.
func (d Decision) String() string {
	switch d {
	case NoAccount:
		return "no_account"
	case Admin:
		return "admin"
	case Trial:
		return "trial"
	case Paid:
		return "paid"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Allowed indica si la decisión habilita el uso del servicio.
func (d Decision) Allowed() bool {
	return d == Admin || d == Trial || d == Paid
}

// Decide clasifica al usuario en exactamente una categoría. Admin domina a
// todo lo demás; trial y paid requieren suscripción vigente y se distinguen
// solo por la antigüedad de la cuenta.
func Decide(user *entity.User, now time.Time, trialDays int) Decision {
	if user == nil {
		return NoAccount
	}
	if user.IsAdmin {
		return Admin
	}
	if user.SubscriptionExpiry == nil || !now.Before(*user.SubscriptionExpiry) {
		return Expired
	}
	trialEnd := user.Joined.AddDate(0, 0, trialDays)
	if now.Before(trialEnd) {
		return Trial
	}
	return Paid
}
