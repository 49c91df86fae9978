// Package http expone la superficie administrativa del watcher: salud,
// inventario observado y disparo manual del reporte.
package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Products      repository.ProductRepository
	Stores        repository.StoreRepository
	TriggerJob    func(name string) bool
	ReportJobName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	productHandler := NewProductHandler(deps.Products)
	api.Get("/products", productHandler.List)
	api.Get("/products/:id", productHandler.GetByID)

	storeHandler := NewStoreHandler(deps.Stores)
	api.Get("/stores", storeHandler.List)

	reportHandler := NewReportHandler(deps.TriggerJob, deps.ReportJobName)
	api.Post("/report/run", reportHandler.Run)
}
