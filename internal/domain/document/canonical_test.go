package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/document"
)

// ──────────────────────────────────────────────────────────────────────────────
// La canonicalización es el eslabón crítico de toda la firma: si estos tests
// fallan, ninguna firma emitida verifica contra el portal MyInvois. El formato
// pactado es JSON minificado con orden de inserción preservado (nunca
// ordenado alfabéticamente) y literales numéricos intactos.
// ──────────────────────────────────────────────────────────────────────────────

func TestCanonicalize_FacturaMinima(t *testing.T) {
	doc := document.NewObject().
		Set("ID", document.String("INV-1")).
		Set("Amount", document.NumberFromInt(100))

	got, err := document.Canonicalize(doc, []string{"UBLExtensions", "Signature"})
	require.NoError(t, err)
	assert.Equal(t, `{"ID":"INV-1","Amount":100}`, string(got),
		"la forma canónica debe ser el JSON minificado exacto, sin los campos reservados")
}

func TestCanonicalize_Determinista(t *testing.T) {
	doc := buildSampleInvoice()

	b1, err1 := document.Canonicalize(doc, []string{"UBLExtensions", "Signature"})
	b2, err2 := document.Canonicalize(doc, []string{"UBLExtensions", "Signature"})

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, b1, b2, "la misma entrada siempre debe producir los mismos bytes")
}

// TestCanonicalize_OrdenDeClavesSignificativo fija la decisión de diseño:
// el orden de inserción se preserva, NO se normaliza. Dos documentos con las
// mismas claves en distinto orden producen bytes (y por tanto digests)
// distintos.
func TestCanonicalize_OrdenDeClavesSignificativo(t *testing.T) {
	ab := document.NewObject().
		Set("a", document.NumberFromInt(1)).
		Set("b", document.NumberFromInt(2))
	ba := document.NewObject().
		Set("b", document.NumberFromInt(2)).
		Set("a", document.NumberFromInt(1))

	bytesAB, err := document.Canonicalize(ab, nil)
	require.NoError(t, err)
	bytesBA, err := document.Canonicalize(ba, nil)
	require.NoError(t, err)

	assert.Equal(t, `{"a":1,"b":2}`, string(bytesAB))
	assert.Equal(t, `{"b":2,"a":1}`, string(bytesBA))
	assert.NotEqual(t, bytesAB, bytesBA,
		"documentos con distinto orden de claves deben canonicalizar distinto")
}

func TestCanonicalize_ExclusionSoloPrimerNivel(t *testing.T) {
	nested := document.NewObject().
		Set("Signature", document.String("interno")) // anidado: debe conservarse
	doc := document.NewObject().
		Set("ID", document.String("INV-9")).
		Set("Signature", document.String("stub")). // primer nivel: se elimina
		Set("Detalle", nested)

	got, err := document.Canonicalize(doc, []string{"Signature"})
	require.NoError(t, err)
	assert.Equal(t, `{"ID":"INV-9","Detalle":{"Signature":"interno"}}`, string(got))
}

func TestCanonicalize_CampoExcluidoAusenteNoEsError(t *testing.T) {
	doc := document.NewObject().Set("ID", document.String("X"))
	got, err := document.Canonicalize(doc, []string{"UBLExtensions", "Signature"})
	require.NoError(t, err)
	assert.Equal(t, `{"ID":"X"}`, string(got))
}

func TestCanonicalize_NoMutaElDocumento(t *testing.T) {
	doc := document.NewObject().
		Set("ID", document.String("INV-2")).
		Set("Signature", document.String("stub"))

	_, err := document.Canonicalize(doc, []string{"Signature"})
	require.NoError(t, err)

	_, ok := doc.Get("Signature")
	assert.True(t, ok, "Canonicalize debe operar sobre una copia, nunca sobre el original")
}

func TestCanonicalize_DocumentoNulo(t *testing.T) {
	_, err := document.Canonicalize(nil, nil)
	assert.Error(t, err)
}

func TestCanonicalize_LiteralesNumericosIntactos(t *testing.T) {
	doc := document.NewObject().
		Set("Total", document.Number("1500.00")).
		Set("Qty", document.Number("3"))

	got, err := document.Canonicalize(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"Total":1500.00,"Qty":3}`, string(got),
		"los montos deben serializarse con el literal exacto (1500.00, no 1500)")
}

func TestCanonicalize_SinEscapeHTML(t *testing.T) {
	doc := document.NewObject().
		Set("Name", document.String(`Gómez & Hijos <S.A.>`))

	got, err := document.Canonicalize(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"Name":"Gómez & Hijos <S.A.>"}`, string(got),
		"no se aplica escape HTML: &, < y > van literales como en el verificador")
}

// ── helper ────────────────────────────────────────────────────────────────────

func buildSampleInvoice() *document.Object {
	line := document.NewObject().
		Set("ID", document.String("1")).
		Set("LineExtensionAmount", document.Number("100.00"))
	return document.NewObject().
		Set("ID", document.String("INV-0001")).
		Set("IssueDate", document.String("2025-06-01")).
		Set("DocumentCurrencyCode", document.String("MYR")).
		Set("InvoiceLine", document.Array{line})
}
