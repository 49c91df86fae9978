package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// joinCategories serializa el conjunto de categorías como texto separado por
// comas, siempre en minúsculas (formato de la caché y de products).
func joinCategories(categories []string) string {
	lower := make([]string, 0, len(categories))
	for _, c := range categories {
		lower = append(lower, strings.ToLower(strings.TrimSpace(c)))
	}
	return strings.Join(lower, ",")
}

// splitCategories deserializa el texto de categorías; cadena vacía = conjunto vacío.
func splitCategories(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
