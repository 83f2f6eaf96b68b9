package einvoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farhan-syah/myinvois-client-sub000/internal/application/dto"
	"github.com/farhan-syah/myinvois-client-sub000/internal/domain"
	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/entity"
	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/repository"
	inframyinvois "github.com/farhan-syah/myinvois-client-sub000/internal/infrastructure/myinvois"
	pkgmyinvois "github.com/farhan-syah/myinvois-client-sub000/pkg/myinvois"
)

// CreateEInvoiceUseCase crea el documento en estado DRAFT y dispara el ciclo
// de firma y envío en background.
type CreateEInvoiceUseCase struct {
	repo         repository.EInvoiceRepository
	orchestrator *Orchestrator
	newID        pkgmyinvois.IDGenerator
}

// NewCreateEInvoiceUseCase construye el caso de uso. idGen puede ser nil:
// en ese caso se usan UUIDs v4 (inyectable para tests deterministas).
func NewCreateEInvoiceUseCase(repo repository.EInvoiceRepository, orchestrator *Orchestrator, idGen pkgmyinvois.IDGenerator) *CreateEInvoiceUseCase {
	if idGen == nil {
		idGen = uuid.NewString
	}
	return &CreateEInvoiceUseCase{repo: repo, orchestrator: orchestrator, newID: idGen}
}

// CreateEInvoice valida la petición, calcula los totales, persiste el DRAFT y
// dispara el procesamiento asíncrono. Responde de inmediato con el DRAFT.
func (uc *CreateEInvoiceUseCase) CreateEInvoice(ctx context.Context, in dto.CreateEInvoiceRequest) (*dto.EInvoiceResponse, error) {
	if in.CodeNumber == "" || in.Supplier.TIN == "" || in.Customer.TIN == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.TypeCode != "" && !pkgmyinvois.ValidDocumentTypeCodes[in.TypeCode] {
		return nil, domain.ErrInvalidInput
	}

	// Número interno único
	existing, err := uc.repo.GetByCodeNumber(ctx, in.CodeNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	issueDate := time.Now().UTC()
	if in.IssueDate != "" {
		parsed, err := time.Parse(time.RFC3339, in.IssueDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		issueDate = parsed.UTC()
	}

	typeCode := in.TypeCode
	if typeCode == "" {
		typeCode = pkgmyinvois.DocTypeInvoice
	}
	currency := in.Currency
	if currency == "" {
		currency = pkgmyinvois.DefaultCurrency
	}

	// Totales a partir de las líneas (subtotal = cantidad × precio,
	// impuesto = subtotal × tasa / 100, todo redondeado a 2 decimales).
	lines := make([]inframyinvois.InvoiceLineData, len(in.Lines))
	netTotal, taxTotal := decimal.Zero, decimal.Zero
	for i, l := range in.Lines {
		if l.Quantity.Sign() <= 0 || l.UnitPrice.Sign() < 0 {
			return nil, domain.ErrInvalidInput
		}
		subtotal := l.Quantity.Mul(l.UnitPrice).Round(2)
		taxAmount := subtotal.Mul(l.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
		lines[i] = inframyinvois.InvoiceLineData{
			Description: l.Description,
			ClassCode:   l.ClassCode,
			Quantity:    l.Quantity,
			UnitCode:    l.UnitCode,
			UnitPrice:   l.UnitPrice,
			Subtotal:    subtotal,
			TaxRate:     l.TaxRate,
			TaxAmount:   taxAmount,
			TaxTypeCode: l.TaxTypeCode,
		}
		netTotal = netTotal.Add(subtotal)
		taxTotal = taxTotal.Add(taxAmount)
	}
	grandTotal := netTotal.Add(taxTotal)

	now := time.Now()
	inv := &entity.EInvoice{
		ID:           uc.newID(),
		CodeNumber:   in.CodeNumber,
		TypeCode:     typeCode,
		SupplierTIN:  in.Supplier.TIN,
		CustomerTIN:  in.Customer.TIN,
		CustomerName: in.Customer.Name,
		IssueDate:    issueDate,
		Currency:     currency,
		NetTotal:     netTotal,
		TaxTotal:     taxTotal,
		GrandTotal:   grandTotal,
		Status:       entity.EInvoiceStatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	uc.orchestrator.ProcessAsync(inv.ID, &inframyinvois.InvoiceBuildContext{
		CodeNumber:       in.CodeNumber,
		DocumentTypeCode: typeCode,
		IssueDate:        issueDate,
		CurrencyCode:     currency,
		Supplier:         toPartyData(in.Supplier),
		Customer:         toPartyData(in.Customer),
		Lines:            lines,
		NetTotal:         netTotal,
		TaxTotal:         taxTotal,
		GrandTotal:       grandTotal,
	})

	return ToEInvoiceResponse(inv), nil
}

// GetEInvoice obtiene un documento por ID.
func (uc *CreateEInvoiceUseCase) GetEInvoice(ctx context.Context, id string) (*dto.EInvoiceResponse, error) {
	inv, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return ToEInvoiceResponse(inv), nil
}

// ListEInvoices lista documentos por estado.
func (uc *CreateEInvoiceUseCase) ListEInvoices(ctx context.Context, status string, limit int) ([]*dto.EInvoiceResponse, error) {
	invs, err := uc.repo.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.EInvoiceResponse, len(invs))
	for i, inv := range invs {
		out[i] = ToEInvoiceResponse(inv)
	}
	return out, nil
}

func toPartyData(p dto.PartyRequest) inframyinvois.PartyData {
	return inframyinvois.PartyData{
		TIN:            p.TIN,
		RegistrationID: p.RegistrationID,
		IDType:         p.IDType,
		Name:           p.Name,
		Address:        p.Address,
		City:           p.City,
		CountryCode:    p.CountryCode,
		SSTNumber:      p.SSTNumber,
	}
}

// ToEInvoiceResponse mapea la entidad a su DTO de respuesta.
func ToEInvoiceResponse(inv *entity.EInvoice) *dto.EInvoiceResponse {
	return &dto.EInvoiceResponse{
		ID:             inv.ID,
		CodeNumber:     inv.CodeNumber,
		TypeCode:       inv.TypeCode,
		SupplierTIN:    inv.SupplierTIN,
		CustomerTIN:    inv.CustomerTIN,
		CustomerName:   inv.CustomerName,
		IssueDate:      inv.IssueDate.Format("2006-01-02"),
		Currency:       inv.Currency,
		NetTotal:       inv.NetTotal,
		TaxTotal:       inv.TaxTotal,
		GrandTotal:     inv.GrandTotal,
		Status:         inv.Status,
		DocumentUUID:   inv.DocumentUUID,
		SubmissionUID:  inv.SubmissionUID,
		LongID:         inv.LongID,
		PlatformErrors: inv.PlatformErrors,
	}
}
