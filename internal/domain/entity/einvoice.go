package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un documento electrónico LHDN.
const (
	EInvoiceStatusDraft           = "DRAFT"            // Guardado para reservar el consecutivo
	EInvoiceStatusSigned          = "SIGNED"           // JSON firmado, pendiente de envío
	EInvoiceStatusSubmitted       = "SUBMITTED"        // Enviado a la plataforma, validación pendiente
	EInvoiceStatusValid           = "VALID"            // Validado por MyInvois
	EInvoiceStatusInvalid         = "INVALID"          // Rechazado por MyInvois con errores
	EInvoiceStatusCancelled       = "CANCELLED"        // Cancelado dentro de la ventana de 72 h
	EInvoiceStatusErrorGeneration = "ERROR_GENERATION" // Falló la construcción o la firma
)

// EInvoice representa la cabecera de un documento electrónico y su estado de
// envío a la plataforma MyInvois.
type EInvoice struct {
	ID             string
	CodeNumber     string // número interno (eInvoiceCodeOrNumber)
	TypeCode       string // 01, 02, 03, 04, 11..14
	SupplierTIN    string
	CustomerTIN    string
	CustomerName   string
	IssueDate      time.Time
	Currency       string
	NetTotal       decimal.Decimal
	TaxTotal       decimal.Decimal
	GrandTotal     decimal.Decimal
	Status         string
	JSONSigned     string // documento firmado completo (JSON minificado)
	DocumentUUID   string // UUID asignado por la plataforma al aceptar
	SubmissionUID  string // UID de la submission
	LongID         string // identificador largo para el enlace público de validación
	PlatformErrors string // errores de rechazo devueltos por la plataforma
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
