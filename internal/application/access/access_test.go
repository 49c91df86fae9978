package access_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/spiritwatch/internal/application/access"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
)

const trialDays = 14

var now = time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

func user(joined time.Time, expiry *time.Time, admin bool) *entity.User {
	return &entity.User{
		UserID:             "u1",
		IsAdmin:            admin,
		SubscriptionExpiry: expiry,
		Joined:             joined,
	}
}

func ptr(t time.Time) *time.Time { return &t }

// Cada usuario cae en exactamente una categoría; no hay solapamientos.
func TestDecide_CategoriasExcluyentes(t *testing.T) {
	cases := []struct {
		name string
		u    *entity.User
		want access.Decision
	}{
		{"sin cuenta", nil, access.NoAccount},
		{"admin sin vencimiento", user(now.AddDate(-1, 0, 0), nil, true), access.Admin},
		{"admin gana aunque este vencido", user(now.AddDate(-1, 0, 0), ptr(now.AddDate(0, 0, -5)), true), access.Admin},
		{"trial recien unido", user(now.AddDate(0, 0, -3), ptr(now.AddDate(0, 0, 11)), false), access.Trial},
		{"paid fuera del trial", user(now.AddDate(0, 0, -60), ptr(now.AddDate(0, 0, 20)), false), access.Paid},
		{"vencido", user(now.AddDate(0, 0, -60), ptr(now.AddDate(0, 0, -1)), false), access.Expired},
		{"sin vencimiento y sin admin es vencido", user(now.AddDate(0, 0, -3), nil, false), access.Expired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, access.Decide(tc.u, now, trialDays))
		})
	}
}

// El borde del trial: el día 14 exacto ya no es trial sino paid.
func TestDecide_BordeDelTrial(t *testing.T) {
	expiry := ptr(now.AddDate(0, 0, 30))

	justInside := user(now.AddDate(0, 0, -trialDays).Add(time.Minute), expiry, false)
	assert.Equal(t, access.Trial, access.Decide(justInside, now, trialDays))

	exactEnd := user(now.AddDate(0, 0, -trialDays), expiry, false)
	assert.Equal(t, access.Paid, access.Decide(exactEnd, now, trialDays))
}

// El vencimiento exacto ya no habilita: now == expiry es Expired.
func TestDecide_VencimientoExacto(t *testing.T) {
	u := user(now.AddDate(0, 0, -60), ptr(now), false)
	assert.Equal(t, access.Expired, access.Decide(u, now, trialDays))
}

func TestAllowed(t *testing.T) {
	assert.True(t, access.Admin.Allowed())
	assert.True(t, access.Trial.Allowed())
	assert.True(t, access.Paid.Allowed())
	assert.False(t, access.Expired.Allowed())
	assert.False(t, access.NoAccount.Allowed())
}
