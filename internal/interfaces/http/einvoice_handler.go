package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/farhan-syah/myinvois-client-sub000/internal/application/dto"
	"github.com/farhan-syah/myinvois-client-sub000/internal/application/einvoice"
	"github.com/farhan-syah/myinvois-client-sub000/internal/domain"
	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/entity"
)

// EInvoiceHandler maneja las peticiones HTTP de documentos electrónicos.
type EInvoiceHandler struct {
	uc           *einvoice.CreateEInvoiceUseCase
	orchestrator *einvoice.Orchestrator
}

// NewEInvoiceHandler construye el handler.
func NewEInvoiceHandler(uc *einvoice.CreateEInvoiceUseCase, orchestrator *einvoice.Orchestrator) *EInvoiceHandler {
	return &EInvoiceHandler{uc: uc, orchestrator: orchestrator}
}

// Create crea un documento y dispara firma + envío en background.
// POST /api/einvoices
func (h *EInvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.CreateEInvoice(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "code_number ya registrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// GetByID obtiene el estado actual de un documento.
// GET /api/einvoices/:id
func (h *EInvoiceHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	resp, err := h.uc.GetEInvoice(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "documento no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}

// List lista documentos por estado.
// GET /api/einvoices?status=SUBMITTED&limit=50
func (h *EInvoiceHandler) List(c *fiber.Ctx) error {
	status := c.Query("status", entity.EInvoiceStatusSubmitted)
	limit := c.QueryInt("limit", 50)
	resp, err := h.uc.ListEInvoices(c.Context(), status, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}

// Refresh consulta el estado de validación en la plataforma y lo sincroniza.
// POST /api/einvoices/:id/refresh
func (h *EInvoiceHandler) Refresh(c *fiber.Ctx) error {
	id := c.Params("id")
	inv, err := h.orchestrator.RefreshStatus(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "PLATFORM", Message: err.Error()})
	}
	return c.JSON(einvoice.ToEInvoiceResponse(inv))
}

// Cancel cancela un documento validado (ventana de 72 h).
// POST /api/einvoices/:id/cancel
func (h *EInvoiceHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.CancelEInvoiceRequest
	if err := c.BodyParser(&in); err != nil || in.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reason requerido"})
	}
	if err := h.orchestrator.Cancel(c.Context(), id, in.Reason); err != nil {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CANCEL_FAILED", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
