// Package myinvois implementa la integración con el portal MyInvois de LHDN:
// construcción del documento UBL-JSON, cliente HTTP de la plataforma
// (login, envío, consulta, cancelación) y tipos de intercambio.
package myinvois

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Contexto de construcción del documento ────────────────────────────────────

// PartyData identifica a un contribuyente (emisor o receptor).
type PartyData struct {
	TIN            string // Tax Identification Number
	RegistrationID string // NRIC / BRN / pasaporte
	IDType         string // TIN, NRIC, BRN, PASSPORT
	Name           string
	Address        string
	City           string
	CountryCode    string // ISO 3166-1 alpha-3 (MYS)
	SSTNumber      string // registro SST, opcional
}

// InvoiceLineData línea de factura con montos decimales exactos.
type InvoiceLineData struct {
	ID             string
	Description    string
	ClassCode      string // código de clasificación del ítem (SDK LHDN)
	Quantity       decimal.Decimal
	UnitCode       string
	UnitPrice      decimal.Decimal
	Subtotal       decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	TaxTypeCode    string
}

// InvoiceBuildContext datos necesarios para construir el cuerpo UBL-JSON de la
// factura (sin firma; los campos reservados quedan ausentes).
type InvoiceBuildContext struct {
	CodeNumber       string // número interno del documento (eInvoiceCodeOrNumber)
	DocumentTypeCode string // 01, 02, 03, 04, 11..14
	IssueDate        time.Time
	CurrencyCode     string // vacío = MYR
	Supplier         PartyData
	Customer         PartyData
	Lines            []InvoiceLineData
	NetTotal         decimal.Decimal
	TaxTotal         decimal.Decimal
	GrandTotal       decimal.Decimal
}

// ── Intercambio con la API de la plataforma ───────────────────────────────────

// DocumentPayload documento firmado listo para el endpoint de submissions.
type DocumentPayload struct {
	Format       string `json:"format"`       // siempre "JSON"
	Document     string `json:"document"`     // JSON firmado en Base64
	DocumentHash string `json:"documentHash"` // SHA-256 hex del JSON firmado
	CodeNumber   string `json:"codeNumber"`   // número interno del documento
}

// submissionRequest cuerpo de POST /api/v1.0/documentsubmissions.
type submissionRequest struct {
	Documents []DocumentPayload `json:"documents"`
}

// AcceptedDocument documento aceptado dentro de una submission.
type AcceptedDocument struct {
	UUID       string `json:"uuid"`
	CodeNumber string `json:"invoiceCodeNumber"`
}

// RejectedDocument documento rechazado en la validación inicial.
type RejectedDocument struct {
	CodeNumber string         `json:"invoiceCodeNumber"`
	Error      map[string]any `json:"error"`
}

// SubmissionResult respuesta del envío de documentos.
type SubmissionResult struct {
	SubmissionUID     string             `json:"submissionUid"`
	AcceptedDocuments []AcceptedDocument `json:"acceptedDocuments"`
	RejectedDocuments []RejectedDocument `json:"rejectedDocuments"`
}

// SubmissionStatus estado de una submission ya enviada.
type SubmissionStatus struct {
	SubmissionUID  string                  `json:"submissionUid"`
	OverallStatus  string                  `json:"overallStatus"` // InProgress | Valid | Invalid | Partial
	DocumentCount  int                     `json:"documentCount"`
	DocumentStates []SubmissionDocumentRef `json:"documentSummary"`
}

// SubmissionDocumentRef resumen de un documento dentro de la submission.
type SubmissionDocumentRef struct {
	UUID       string `json:"uuid"`
	LongID     string `json:"longId"`
	CodeNumber string `json:"internalId"`
	Status     string `json:"status"` // Submitted | Valid | Invalid | Cancelled
}

// tokenResponse respuesta de POST /connect/token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// apiError cuerpo de error estándar de la plataforma.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
