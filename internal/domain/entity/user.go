package entity

import "time"

// User representa un suscriptor del canal de notificaciones. El UserID es el
// chat id del canal externo, en texto.
type User struct {
	UserID             string
	FullName           string
	IsAdmin            bool
	IsSubscribed       bool
	SubscriptionExpiry *time.Time // nil = sin vencimiento (admins)
	Joined             time.Time
}
