package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
)

// ProductHandler maneja las peticiones HTTP de solo lectura sobre el
// inventario observado.
type ProductHandler struct {
	products repository.ProductRepository
}

// NewProductHandler construye el handler.
func NewProductHandler(products repository.ProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

// List devuelve la última foto conocida de todos los productos observados.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	out, err := h.products.ListAll(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetByID devuelve un producto observado por su id.
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.products.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Code: "NOT_FOUND", Message: "producto no observado"})
	}
	return c.JSON(out)
}
