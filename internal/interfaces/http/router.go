package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farhan-syah/myinvois-client-sub000/internal/application/einvoice"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateEInvoice *einvoice.CreateEInvoiceUseCase
	Orchestrator   *einvoice.Orchestrator
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	einvoices := api.Group("/einvoices")
	handler := NewEInvoiceHandler(deps.CreateEInvoice, deps.Orchestrator)
	einvoices.Post("/", handler.Create)
	einvoices.Get("/", handler.List)
	einvoices.Get("/:id", handler.GetByID)
	einvoices.Post("/:id/refresh", handler.Refresh)
	einvoices.Post("/:id/cancel", handler.Cancel)
}
