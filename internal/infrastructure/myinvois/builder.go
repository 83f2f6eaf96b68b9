// Construcción del cuerpo UBL-JSON de la factura electrónica MyInvois.
// El formato UBL-JSON envuelve cada elemento en un array de objetos y los
// escalares bajo la clave "_" (serialización oficial del SDK LHDN).

package myinvois

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/document"
	pkgmyinvois "github.com/farhan-syah/myinvois-client-sub000/pkg/myinvois"
)

// Namespaces del wrapper de envío UBL-JSON.
const (
	nsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	nsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	nsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

// DocumentBuilderService construye el cuerpo de la factura (sin firma).
// Los campos reservados UBLExtensions y Signature quedan ausentes: los escribe
// después el firmador.
type DocumentBuilderService struct{}

// NewDocumentBuilderService crea el servicio.
func NewDocumentBuilderService() *DocumentBuilderService {
	return &DocumentBuilderService{}
}

// Build genera el cuerpo UBL-JSON de la factura. El orden de inserción de los
// campos es el que se firma y se envía: no cambiarlo sin revalidar contra el
// portal.
func (s *DocumentBuilderService) Build(ctx *InvoiceBuildContext) (*document.Object, error) {
	if err := validateBuildContext(ctx); err != nil {
		return nil, err
	}
	currency := ctx.CurrencyCode
	if currency == "" {
		currency = pkgmyinvois.DefaultCurrency
	}
	docType := ctx.DocumentTypeCode
	if docType == "" {
		docType = pkgmyinvois.DocTypeInvoice
	}

	issueDate := ctx.IssueDate.UTC()
	body := document.NewObject().
		Set("ID", txt(ctx.CodeNumber)).
		Set("IssueDate", txt(issueDate.Format("2006-01-02"))).
		Set("IssueTime", txt(issueDate.Format("15:04:05Z"))).
		Set("InvoiceTypeCode", document.Array{document.NewObject().
			Set("_", document.String(docType)).
			Set("listVersionID", document.String(pkgmyinvois.DocumentTypeVersion))}).
		Set("DocumentCurrencyCode", txt(currency)).
		Set("AccountingSupplierParty", document.Array{document.NewObject().
			Set("Party", document.Array{buildParty(ctx.Supplier)})}).
		Set("AccountingCustomerParty", document.Array{document.NewObject().
			Set("Party", document.Array{buildParty(ctx.Customer)})}).
		Set("TaxTotal", document.Array{document.NewObject().
			Set("TaxAmount", amt(ctx.TaxTotal, currency))}).
		Set("LegalMonetaryTotal", document.Array{document.NewObject().
			Set("LineExtensionAmount", amt(ctx.NetTotal, currency)).
			Set("TaxExclusiveAmount", amt(ctx.NetTotal, currency)).
			Set("TaxInclusiveAmount", amt(ctx.GrandTotal, currency)).
			Set("PayableAmount", amt(ctx.GrandTotal, currency))})

	lines := make(document.Array, len(ctx.Lines))
	for i, line := range ctx.Lines {
		lines[i] = buildInvoiceLine(i+1, line, currency)
	}
	body.Set("InvoiceLine", lines)

	return body, nil
}

// WrapForSubmission envuelve el cuerpo (ya firmado) en el sobre de envío
// UBL-JSON con los namespaces del esquema.
func WrapForSubmission(body *document.Object) *document.Object {
	return document.NewObject().
		Set("_D", document.String(nsInvoice)).
		Set("_A", document.String(nsCac)).
		Set("_B", document.String(nsCbc)).
		Set("Invoice", document.Array{body})
}

// ── helpers de construcción ───────────────────────────────────────────────────

func buildParty(p PartyData) *document.Object {
	idType := p.IDType
	if idType == "" {
		idType = pkgmyinvois.IDTypeBRN
	}
	identifications := document.Array{
		document.NewObject().Set("ID", document.Array{document.NewObject().
			Set("_", document.String(p.TIN)).
			Set("schemeID", document.String(pkgmyinvois.IDTypeTIN))}),
	}
	if p.RegistrationID != "" {
		identifications = append(identifications,
			document.NewObject().Set("ID", document.Array{document.NewObject().
				Set("_", document.String(p.RegistrationID)).
				Set("schemeID", document.String(idType))}))
	}

	countryCode := p.CountryCode
	if countryCode == "" {
		countryCode = "MYS"
	}
	address := document.NewObject().
		Set("CityName", txt(p.City)).
		Set("AddressLine", document.Array{document.NewObject().
			Set("Line", txt(p.Address))}).
		Set("Country", document.Array{document.NewObject().
			Set("IdentificationCode", txt(countryCode))})

	party := document.NewObject().
		Set("PartyIdentification", identifications).
		Set("PostalAddress", document.Array{address}).
		Set("PartyLegalEntity", document.Array{document.NewObject().
			Set("RegistrationName", txt(p.Name))})
	if p.SSTNumber != "" {
		party.Set("PartyTaxScheme", document.Array{document.NewObject().
			Set("CompanyID", txt(p.SSTNumber))})
	}
	return party
}

func buildInvoiceLine(n int, line InvoiceLineData, currency string) *document.Object {
	id := line.ID
	if id == "" {
		id = strconv.Itoa(n)
	}
	taxType := line.TaxTypeCode
	if taxType == "" {
		taxType = pkgmyinvois.TaxTypeNotApplicable
	}

	item := document.NewObject().
		Set("Description", txt(line.Description))
	if line.ClassCode != "" {
		item.Set("CommodityClassification", document.Array{document.NewObject().
			Set("ItemClassificationCode", document.Array{document.NewObject().
				Set("_", document.String(line.ClassCode)).
				Set("listID", document.String("CLASS"))})})
	}

	taxSubtotal := document.NewObject().
		Set("TaxableAmount", amt(line.Subtotal, currency)).
		Set("TaxAmount", amt(line.TaxAmount, currency)).
		Set("TaxCategory", document.Array{document.NewObject().
			Set("ID", txt(taxType)).
			Set("Percent", num(line.TaxRate)).
			Set("TaxScheme", document.Array{document.NewObject().
				Set("ID", txt("OTH"))})})

	unitCode := line.UnitCode
	if unitCode == "" {
		unitCode = "C62" // unidad (UNECE)
	}
	return document.NewObject().
		Set("ID", txt(id)).
		Set("InvoicedQuantity", document.Array{document.NewObject().
			Set("_", document.Number(line.Quantity.String())).
			Set("unitCode", document.String(unitCode))}).
		Set("LineExtensionAmount", amt(line.Subtotal, currency)).
		Set("TaxTotal", document.Array{document.NewObject().
			Set("TaxAmount", amt(line.TaxAmount, currency)).
			Set("TaxSubtotal", document.Array{taxSubtotal})}).
		Set("Item", document.Array{item}).
		Set("Price", document.Array{document.NewObject().
			Set("PriceAmount", amt(line.UnitPrice, currency))})
}

// txt envuelve un escalar de texto en la forma UBL-JSON [{"_": v}].
func txt(v string) document.Array {
	return document.Array{document.NewObject().Set("_", document.String(v))}
}

// amt envuelve un monto con su moneda: [{"_": 1500.00, "currencyID": "MYR"}].
// Montos siempre con dos decimales, sin separador de miles.
func amt(d decimal.Decimal, currency string) document.Array {
	return document.Array{document.NewObject().
		Set("_", document.Number(d.Round(2).StringFixed(2))).
		Set("currencyID", document.String(currency))}
}

// num envuelve un número sin unidad.
func num(d decimal.Decimal) document.Array {
	return document.Array{document.NewObject().Set("_", document.Number(d.String()))}
}

func validateBuildContext(ctx *InvoiceBuildContext) error {
	if ctx == nil {
		return fmt.Errorf("myinvois: contexto de construcción nulo")
	}
	if ctx.CodeNumber == "" {
		return fmt.Errorf("myinvois: CodeNumber es obligatorio")
	}
	if ctx.Supplier.TIN == "" {
		return fmt.Errorf("myinvois: TIN del emisor es obligatorio")
	}
	if ctx.Customer.TIN == "" {
		return fmt.Errorf("myinvois: TIN del receptor es obligatorio")
	}
	if len(ctx.Lines) == 0 {
		return fmt.Errorf("myinvois: la factura debe tener al menos una línea")
	}
	if ctx.DocumentTypeCode != "" && !pkgmyinvois.ValidDocumentTypeCodes[ctx.DocumentTypeCode] {
		return fmt.Errorf("myinvois: tipo de documento inválido %q", ctx.DocumentTypeCode)
	}
	if ctx.Supplier.IDType != "" && !pkgmyinvois.ValidIDTypes[ctx.Supplier.IDType] {
		return fmt.Errorf("myinvois: tipo de identificación del emisor inválido %q", ctx.Supplier.IDType)
	}
	if ctx.Customer.IDType != "" && !pkgmyinvois.ValidIDTypes[ctx.Customer.IDType] {
		return fmt.Errorf("myinvois: tipo de identificación del receptor inválido %q", ctx.Customer.IDType)
	}
	for i, line := range ctx.Lines {
		if line.TaxTypeCode != "" && !pkgmyinvois.ValidTaxTypeCodes[line.TaxTypeCode] {
			return fmt.Errorf("myinvois: tipo de impuesto inválido %q en la línea %d", line.TaxTypeCode, i+1)
		}
	}
	if ctx.IssueDate.IsZero() {
		return fmt.Errorf("myinvois: IssueDate es obligatoria")
	}
	return nil
}
