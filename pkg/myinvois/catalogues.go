// Catálogos de códigos del anexo técnico MyInvois (SDK LHDN) usados al
// construir el documento UBL-JSON.

package myinvois

// =============================================================================
// e-Invoice Type Codes (SDK LHDN - Document Types)
// =============================================================================

const (
	DocTypeInvoice              = "01" // Invoice
	DocTypeCreditNote           = "02" // Credit Note
	DocTypeDebitNote            = "03" // Debit Note
	DocTypeRefundNote           = "04" // Refund Note
	DocTypeSelfBilledInvoice    = "11" // Self-billed Invoice
	DocTypeSelfBilledCreditNote = "12" // Self-billed Credit Note
	DocTypeSelfBilledDebitNote  = "13" // Self-billed Debit Note
	DocTypeSelfBilledRefundNote = "14" // Self-billed Refund Note
)

// ValidDocumentTypeCodes tipos de documento aceptados por el portal.
var ValidDocumentTypeCodes = map[string]bool{
	DocTypeInvoice: true, DocTypeCreditNote: true, DocTypeDebitNote: true,
	DocTypeRefundNote: true, DocTypeSelfBilledInvoice: true,
	DocTypeSelfBilledCreditNote: true, DocTypeSelfBilledDebitNote: true,
	DocTypeSelfBilledRefundNote: true,
}

// DocumentTypeVersion versión del tipo de documento (listVersionID en InvoiceTypeCode).
const DocumentTypeVersion = "1.1" // 1.1 = documento firmado; 1.0 = sin firma

// =============================================================================
// Tax Type Codes (SDK LHDN - Tax Types)
// =============================================================================

const (
	TaxTypeSalesTax      = "01" // Sales Tax
	TaxTypeServiceTax    = "02" // Service Tax
	TaxTypeTourismTax    = "03" // Tourism Tax
	TaxTypeHighValueTax  = "04" // High-Value Goods Tax
	TaxTypeLowVoltage    = "05" // Sales Tax on Low Value Goods
	TaxTypeNotApplicable = "06" // Not Applicable
	TaxTypeExempt        = "E"  // Tax exemption
)

// ValidTaxTypeCodes códigos de impuesto válidos en líneas y totales.
var ValidTaxTypeCodes = map[string]bool{
	TaxTypeSalesTax: true, TaxTypeServiceTax: true, TaxTypeTourismTax: true,
	TaxTypeHighValueTax: true, TaxTypeLowVoltage: true,
	TaxTypeNotApplicable: true, TaxTypeExempt: true,
}

// =============================================================================
// Identificadores de contribuyente (TIN / registro)
// =============================================================================

const (
	IDTypeTIN      = "TIN"  // Tax Identification Number
	IDTypeNRIC     = "NRIC" // National Registration Identity Card
	IDTypeBRN      = "BRN"  // Business Registration Number
	IDTypePassport = "PASSPORT"
)

// ValidIDTypes esquemas de identificación aceptados en las Party.
var ValidIDTypes = map[string]bool{
	IDTypeTIN: true, IDTypeNRIC: true, IDTypeBRN: true, IDTypePassport: true,
}

// DefaultCurrency moneda por defecto de los documentos (Ringgit malasio).
const DefaultCurrency = "MYR"
