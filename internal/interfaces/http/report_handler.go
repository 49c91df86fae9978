package http

import (
	"github.com/gofiber/fiber/v2"
)

// ReportHandler dispara manualmente el reporte diario a través del scheduler,
// bajo el mismo lock de corrida que el disparo programado.
type ReportHandler struct {
	trigger func(name string) bool
	jobName string
}

// NewReportHandler construye el handler.
func NewReportHandler(trigger func(string) bool, jobName string) *ReportHandler {
	return &ReportHandler{trigger: trigger, jobName: jobName}
}

// Run encola una corrida del reporte del día. Si ya hay una en vuelo, el
// disparo se omite silenciosamente (semántica del lock del scheduler).
func (h *ReportHandler) Run(c *fiber.Ctx) error {
	if !h.trigger(h.jobName) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Code: "NOT_READY", Message: "job de reporte no registrado"})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "report scheduled"})
}
