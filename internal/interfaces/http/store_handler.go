package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
)

// StoreHandler expone el directorio de tiendas de referencia.
type StoreHandler struct {
	stores repository.StoreRepository
}

// NewStoreHandler construye el handler.
func NewStoreHandler(stores repository.StoreRepository) *StoreHandler {
	return &StoreHandler{stores: stores}
}

// List devuelve todas las tiendas del directorio.
func (h *StoreHandler) List(c *fiber.Ctx) error {
	out, err := h.stores.ListAll(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
