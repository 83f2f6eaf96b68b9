package signer_test

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/document"
	"github.com/farhan-syah/myinvois-client-sub000/internal/infrastructure/myinvois/signer"
	"github.com/farhan-syah/myinvois-client-sub000/pkg/myinvois"
)

// ──────────────────────────────────────────────────────────────────────────────
// Round-trip completo de firma: estos tests reproducen las cuatro
// comprobaciones que hace el verificador remoto — (a) quitar los campos
// reservados, (b) recomputar los dos digests, (c) verificar la firma RSA
// contra los bytes canónicos y (d) comparar digests grabados vs. recomputados.
// Las cuatro deben pasar; no hay crédito parcial.
// ──────────────────────────────────────────────────────────────────────────────

var fixedClock = func() time.Time {
	return time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
}

func TestSignDocument_RoundTripVerificable(t *testing.T) {
	cert, key := generateTestCertificate(t)
	svc := signer.NewDocumentSignatureService(signer.WithClock(fixedClock))

	doc := document.NewObject().
		Set("ID", document.String("INV-1")).
		Set("Amount", document.NumberFromInt(100))

	signed, err := svc.SignDocument(context.Background(), doc, cert)
	require.NoError(t, err)

	// (a) quitar los campos reservados y recomputar los bytes canónicos
	canonical, err := document.Canonicalize(signed, []string{"UBLExtensions", "Signature"})
	require.NoError(t, err)
	assert.Equal(t, `{"ID":"INV-1","Amount":100}`, string(canonical),
		"los bytes canónicos del documento firmado deben ser el JSON minificado original")

	envelope := extractEnvelope(t, signed)

	// (b)+(d) DocumentDigest grabado == digest recomputado
	docRef := reference(t, envelope, 0)
	assert.Equal(t, signer.Digest(canonical), str(t, docRef, "DigestValue"),
		"el DocumentDigest grabado debe coincidir con el recomputado")
	assert.Equal(t, "", str(t, docRef, "URI"), "la Reference #1 apunta al documento completo")

	// (c) la firma RSA verifica contra los bytes canónicos exactos
	sigB64 := str(t, envelope, "SignatureValue")
	rawSig, err := base64.StdEncoding.DecodeString(sigB64)
	require.NoError(t, err)
	hash := sha256.Sum256(canonical)
	assert.NoError(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, hash[:], rawSig),
		"la firma debe verificar contra los bytes canónicos con la llave pública del emisor")
}

func TestSignDocument_PropertiesDigestLigado(t *testing.T) {
	cert, _ := generateTestCertificate(t)
	svc := signer.NewDocumentSignatureService(signer.WithClock(fixedClock))

	signed, err := svc.SignDocument(context.Background(), sampleInvoice(), cert)
	require.NoError(t, err)
	envelope := extractEnvelope(t, signed)

	// SignedProperties embebido en Object/QualifyingProperties
	qualifying := obj(t, obj(t, envelope, "Object"), "QualifyingProperties")
	assert.Equal(t, "#signature", str(t, qualifying, "Target"))
	signedProps := obj(t, qualifying, "SignedProperties")

	propsBytes, err := document.Canonicalize(signedProps, nil)
	require.NoError(t, err)

	propsRef := reference(t, envelope, 1)
	assert.Equal(t, signer.Digest(propsBytes), str(t, propsRef, "DigestValue"),
		"el PropertiesDigest grabado debe coincidir con el digest del bloque embebido")
	assert.Equal(t, "#id-xades-signed-props", str(t, propsRef, "URI"))
	assert.Equal(t, "http://uri.etsi.org/01903/v1.3.2#SignedProperties", str(t, propsRef, "Type"))
}

// TestSignDocument_OrdenDeReferences fija el contrato: Reference del documento
// primero, Reference de SignedProperties después. Invertirlas produce un
// SignedInfo estructuralmente distinto que el portal rechaza.
func TestSignDocument_OrdenDeReferences(t *testing.T) {
	cert, _ := generateTestCertificate(t)
	svc := signer.NewDocumentSignatureService(signer.WithClock(fixedClock))

	signed, err := svc.SignDocument(context.Background(), sampleInvoice(), cert)
	require.NoError(t, err)
	envelope := extractEnvelope(t, signed)

	first := reference(t, envelope, 0)
	second := reference(t, envelope, 1)
	assert.Equal(t, "id-doc-signed-data", str(t, first, "Id"))
	_, hasType := first.Get("Type")
	assert.False(t, hasType, "la Reference del documento no lleva Type")
	assert.Equal(t, "#id-xades-signed-props", str(t, second, "URI"))
}

func TestSignDocument_NoMutaElOriginal(t *testing.T) {
	cert, _ := generateTestCertificate(t)
	svc := signer.NewDocumentSignatureService(signer.WithClock(fixedClock))

	original := sampleInvoice()
	before, err := document.Canonicalize(original, nil)
	require.NoError(t, err)

	_, err = svc.SignDocument(context.Background(), original, cert)
	require.NoError(t, err)

	after, err := document.Canonicalize(original, nil)
	require.NoError(t, err)
	assert.Equal(t, before, after, "el documento de entrada nunca se modifica")

	_, hasExt := original.Get("UBLExtensions")
	_, hasSig := original.Get("Signature")
	assert.False(t, hasExt)
	assert.False(t, hasSig)
}

func TestSignDocument_ConservaExtensionesPreexistentes(t *testing.T) {
	cert, _ := generateTestCertificate(t)
	svc := signer.NewDocumentSignatureService(signer.WithClock(fixedClock))

	otherExt := document.NewObject().
		Set("ExtensionURI", document.String("urn:example:other-extension")).
		Set("ExtensionContent", document.NewObject())
	doc := sampleInvoice()
	doc.Set("UBLExtensions", document.Array{otherExt})

	signed, err := svc.SignDocument(context.Background(), doc, cert)
	require.NoError(t, err)

	extVal, ok := signed.Get("UBLExtensions")
	require.True(t, ok)
	extensions := extVal.(document.Array)
	require.Len(t, extensions, 2, "la extensión preexistente se conserva y se agrega exactamente una")
	assert.Equal(t, "urn:example:other-extension",
		str(t, extensions[0].(*document.Object), "ExtensionURI"))
	assert.Equal(t, "urn:oasis:names:specification:ubl:dsig:enveloped:xades",
		str(t, extensions[1].(*document.Object), "ExtensionURI"))
}

func TestSignDocument_StubConReferenciasCruzadas(t *testing.T) {
	cert, _ := generateTestCertificate(t)
	svc := signer.NewDocumentSignatureService(signer.WithClock(fixedClock))

	signed, err := svc.SignDocument(context.Background(), sampleInvoice(), cert)
	require.NoError(t, err)

	stubVal, ok := signed.Get("Signature")
	require.True(t, ok)
	stub := stubVal.(document.Array)[0].(*document.Object)
	assert.Equal(t, "urn:oasis:names:specification:ubl:signature:Invoice", str(t, stub, "ID"))
	assert.Equal(t, "urn:oasis:names:specification:ubl:dsig:enveloped:xades", str(t, stub, "SignatureMethod"))

	// El SignatureInformation de la extensión referencia el mismo ID del stub.
	extVal, _ := signed.Get("UBLExtensions")
	entry := extVal.(document.Array)[0].(*document.Object)
	sigInfo := obj(t, obj(t, entry, "ExtensionContent"), "UBLDocumentSignatures")
	info := sigInfo.Keys()
	require.Contains(t, info, "SignatureInformation")
	infoVal, _ := sigInfo.Get("SignatureInformation")
	first := infoVal.(document.Array)[0].(*document.Object)
	assert.Equal(t, str(t, stub, "ID"), str(t, first, "ReferencedSignatureID"))
}

func TestSignDocument_Determinista(t *testing.T) {
	cert, _ := generateTestCertificate(t)
	svc := signer.NewDocumentSignatureService(signer.WithClock(fixedClock))

	s1, err := svc.SignDocument(context.Background(), sampleInvoice(), cert)
	require.NoError(t, err)
	s2, err := svc.SignDocument(context.Background(), sampleInvoice(), cert)
	require.NoError(t, err)

	// PKCS#1 v1.5 es determinista: con reloj fijo los dos documentos firmados
	// deben ser byte-idénticos (estabilidad entre ejecuciones, sin salt).
	b1, err := document.Canonicalize(s1, nil)
	require.NoError(t, err)
	b2, err := document.Canonicalize(s2, nil)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestSignDocument_SigningTimeDelReloj(t *testing.T) {
	cert, _ := generateTestCertificate(t)
	svc := signer.NewDocumentSignatureService(signer.WithClock(fixedClock))

	signed, err := svc.SignDocument(context.Background(), sampleInvoice(), cert)
	require.NoError(t, err)
	envelope := extractEnvelope(t, signed)

	props := obj(t, obj(t, obj(t, envelope, "Object"), "QualifyingProperties"), "SignedProperties")
	sigProps := obj(t, props, "SignedSignatureProperties")
	assert.Equal(t, "2025-06-01T10:30:00Z", str(t, sigProps, "SigningTime"))
}

// ── Errores ───────────────────────────────────────────────────────────────────

func TestSignDocument_LlaveNoRSA(t *testing.T) {
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	cert, _ := generateTestCertificate(t)
	cert.PrivateKey = ecKey

	svc := signer.NewDocumentSignatureService()
	_, err = svc.SignDocument(context.Background(), sampleInvoice(), cert)
	require.Error(t, err)
	assert.ErrorIs(t, err, myinvois.ErrSigning,
		"una llave no RSA debe clasificarse como error de firma")
}

func TestSignDocument_DocumentoNulo(t *testing.T) {
	cert, _ := generateTestCertificate(t)
	svc := signer.NewDocumentSignatureService()
	_, err := svc.SignDocument(context.Background(), nil, cert)
	require.Error(t, err)
	assert.ErrorIs(t, err, myinvois.ErrSerialization)
}

func TestSignDocument_CertificadoVacio(t *testing.T) {
	svc := signer.NewDocumentSignatureService()
	_, err := svc.SignDocument(context.Background(), sampleInvoice(), tls.Certificate{})
	require.Error(t, err)
	assert.ErrorIs(t, err, myinvois.ErrValidation)
}

func TestBuildSignedProperties_MetadataIncompleta(t *testing.T) {
	cases := []myinvois.CertificateMetadata{
		{SerialNumber: "1", CertDigest: "x"},       // sin issuer
		{IssuerName: "CN=CA", CertDigest: "x"},     // sin serial
		{IssuerName: "CN=CA", SerialNumber: "1"},   // sin digest
	}
	for _, meta := range cases {
		_, err := signer.BuildSignedProperties(meta, "props-id", fixedClock)
		require.Error(t, err)
		assert.ErrorIs(t, err, myinvois.ErrValidation,
			"la metadata incompleta nunca se rellena en silencio")
	}
}

func TestRSALocalSigner_BytesVacios(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	s, err := signer.NewRSALocalSigner(key)
	require.NoError(t, err)

	_, err = s.Sign(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, myinvois.ErrSigning)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// generateTestCertificate genera una llave RSA-2048 y un certificado
// autofirmado de prueba (el subsistema no valida cadenas de confianza).
func generateTestCertificate(t *testing.T) (tls.Certificate, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(123456789),
		Subject:      pkix.Name{CommonName: "Pruebas MyInvois", Organization: []string{"ACME Sdn Bhd"}},
		NotBefore:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:     time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
		Leaf:        leaf,
	}, key
}

func sampleInvoice() *document.Object {
	return document.NewObject().
		Set("ID", document.String("INV-0001")).
		Set("IssueDate", document.String("2025-06-01")).
		Set("DocumentCurrencyCode", document.String("MYR")).
		Set("TaxTotal", document.Number("60.00")).
		Set("LegalMonetaryTotal", document.Number("1060.00"))
}

// extractEnvelope navega UBLExtensions hasta el sobre ds:Signature embebido.
func extractEnvelope(t *testing.T, signed *document.Object) *document.Object {
	t.Helper()
	extVal, ok := signed.Get("UBLExtensions")
	require.True(t, ok, "el documento firmado debe tener UBLExtensions")
	extensions := extVal.(document.Array)
	require.NotEmpty(t, extensions)
	entry := extensions[len(extensions)-1].(*document.Object)
	content := obj(t, entry, "ExtensionContent")
	sigs := obj(t, content, "UBLDocumentSignatures")
	infoVal, ok := sigs.Get("SignatureInformation")
	require.True(t, ok)
	info := infoVal.(document.Array)[0].(*document.Object)
	return obj(t, info, "Signature")
}

func reference(t *testing.T, envelope *document.Object, idx int) *document.Object {
	t.Helper()
	signedInfo := obj(t, envelope, "SignedInfo")
	refsVal, ok := signedInfo.Get("Reference")
	require.True(t, ok)
	refs := refsVal.(document.Array)
	require.Greater(t, len(refs), idx)
	return refs[idx].(*document.Object)
}

func obj(t *testing.T, o *document.Object, key string) *document.Object {
	t.Helper()
	v, ok := o.Get(key)
	require.True(t, ok, "falta el campo %s", key)
	out, ok := v.(*document.Object)
	require.True(t, ok, "el campo %s no es un objeto", key)
	return out
}

func str(t *testing.T, o *document.Object, key string) string {
	t.Helper()
	v, ok := o.Get(key)
	require.True(t, ok, "falta el campo %s", key)
	s, ok := v.(document.String)
	require.True(t, ok, "el campo %s no es string", key)
	return string(s)
}
