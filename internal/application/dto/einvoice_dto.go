package dto

import "github.com/shopspring/decimal"

// PartyRequest identifica a un contribuyente en la petición.
type PartyRequest struct {
	TIN            string `json:"tin"`
	RegistrationID string `json:"registration_id,omitempty"`
	IDType         string `json:"id_type,omitempty"` // TIN, NRIC, BRN, PASSPORT
	Name           string `json:"name"`
	Address        string `json:"address,omitempty"`
	City           string `json:"city,omitempty"`
	CountryCode    string `json:"country_code,omitempty"`
	SSTNumber      string `json:"sst_number,omitempty"`
}

// EInvoiceLineRequest línea de documento (subtotal e impuesto se calculan).
type EInvoiceLineRequest struct {
	Description string          `json:"description"`
	ClassCode   string          `json:"class_code,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCode    string          `json:"unit_code,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"` // porcentaje (6 = 6 %)
	TaxTypeCode string          `json:"tax_type_code,omitempty"`
}

// CreateEInvoiceRequest body para POST /api/einvoices.
type CreateEInvoiceRequest struct {
	CodeNumber string                `json:"code_number"`
	TypeCode   string                `json:"type_code,omitempty"` // 01 por defecto
	Currency   string                `json:"currency,omitempty"`  // MYR por defecto
	IssueDate  string                `json:"issue_date,omitempty"`
	Supplier   PartyRequest          `json:"supplier"`
	Customer   PartyRequest          `json:"customer"`
	Lines      []EInvoiceLineRequest `json:"lines"`
}

// EInvoiceResponse documento en respuestas.
type EInvoiceResponse struct {
	ID             string          `json:"id"`
	CodeNumber     string          `json:"code_number"`
	TypeCode       string          `json:"type_code"`
	SupplierTIN    string          `json:"supplier_tin"`
	CustomerTIN    string          `json:"customer_tin"`
	CustomerName   string          `json:"customer_name,omitempty"`
	IssueDate      string          `json:"issue_date"`
	Currency       string          `json:"currency"`
	NetTotal       decimal.Decimal `json:"net_total"`
	TaxTotal       decimal.Decimal `json:"tax_total"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	Status         string          `json:"status"`
	DocumentUUID   string          `json:"document_uuid,omitempty"`
	SubmissionUID  string          `json:"submission_uid,omitempty"`
	LongID         string          `json:"long_id,omitempty"`
	PlatformErrors string          `json:"platform_errors,omitempty"`
}

// CancelEInvoiceRequest body para POST /api/einvoices/:id/cancel.
type CancelEInvoiceRequest struct {
	Reason string `json:"reason"`
}
