package einvoice_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhan-syah/myinvois-client-sub000/internal/application/dto"
	"github.com/farhan-syah/myinvois-client-sub000/internal/application/einvoice"
	"github.com/farhan-syah/myinvois-client-sub000/internal/domain"
	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/entity"
)

func createRequest() dto.CreateEInvoiceRequest {
	return dto.CreateEInvoiceRequest{
		CodeNumber: "INV-0100",
		Supplier:   dto.PartyRequest{TIN: "C1234567890", Name: "ACME Sdn Bhd"},
		Customer:   dto.PartyRequest{TIN: "C0987654321", Name: "Cliente Sdn Bhd"},
		Lines: []dto.EInvoiceLineRequest{{
			Description: "Servicio de consultoría",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.NewFromInt(500),
			TaxRate:     decimal.NewFromInt(6),
			TaxTypeCode: "02",
		}},
	}
}

func newCreateUC(t *testing.T, repo *memRepo) *einvoice.CreateEInvoiceUseCase {
	t.Helper()
	var seq int
	idGen := func() string {
		seq++
		return fmt.Sprintf("id-%04d", seq)
	}
	return einvoice.NewCreateEInvoiceUseCase(repo, newOrchestrator(t, repo, nil, "dev"), idGen)
}

func TestCreateEInvoice_TotalesYEstadoInicial(t *testing.T) {
	repo := newMemRepo()
	uc := newCreateUC(t, repo)

	resp, err := uc.CreateEInvoice(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Equal(t, "id-0001", resp.ID, "el ID sale del generador inyectado")
	assert.Equal(t, entity.EInvoiceStatusDraft, resp.Status)
	assert.Equal(t, "01", resp.TypeCode, "factura por defecto")
	assert.Equal(t, "MYR", resp.Currency)

	// neto = 2 × 500 = 1000; impuesto = 6 % = 60; total = 1060
	assert.True(t, resp.NetTotal.Equal(decimal.NewFromInt(1000)), "neto: %s", resp.NetTotal)
	assert.True(t, resp.TaxTotal.Equal(decimal.NewFromInt(60)), "impuesto: %s", resp.TaxTotal)
	assert.True(t, resp.GrandTotal.Equal(decimal.NewFromInt(1060)), "total: %s", resp.GrandTotal)
}

func TestCreateEInvoice_CodeNumberDuplicado(t *testing.T) {
	repo := newMemRepo()
	uc := newCreateUC(t, repo)

	_, err := uc.CreateEInvoice(context.Background(), createRequest())
	require.NoError(t, err)

	_, err = uc.CreateEInvoice(context.Background(), createRequest())
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateEInvoice_Validaciones(t *testing.T) {
	repo := newMemRepo()
	uc := newCreateUC(t, repo)

	cases := map[string]func(*dto.CreateEInvoiceRequest){
		"sin code_number":      func(r *dto.CreateEInvoiceRequest) { r.CodeNumber = "" },
		"sin TIN del emisor":   func(r *dto.CreateEInvoiceRequest) { r.Supplier.TIN = "" },
		"sin TIN del receptor": func(r *dto.CreateEInvoiceRequest) { r.Customer.TIN = "" },
		"sin líneas":           func(r *dto.CreateEInvoiceRequest) { r.Lines = nil },
		"tipo inválido":        func(r *dto.CreateEInvoiceRequest) { r.TypeCode = "99" },
		"cantidad cero":        func(r *dto.CreateEInvoiceRequest) { r.Lines[0].Quantity = decimal.Zero },
		"fecha malformada":     func(r *dto.CreateEInvoiceRequest) { r.IssueDate = "01/06/2025" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := createRequest()
			mutate(&req)
			_, err := uc.CreateEInvoice(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestGetEInvoice_NoEncontrado(t *testing.T) {
	repo := newMemRepo()
	uc := newCreateUC(t, repo)

	_, err := uc.GetEInvoice(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
