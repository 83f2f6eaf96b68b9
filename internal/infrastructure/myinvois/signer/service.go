// Servicio de firma digital JSON para factura electrónica MyInvois (LHDN).
// Produce el sobre XAdES-JSON y lo embebe en UBLExtensions + stub Signature.

package signer

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/document"
	"github.com/farhan-syah/myinvois-client-sub000/pkg/myinvois"
)

// DocumentSignatureService implementa myinvois.DocumentSigner: canonicaliza,
// hashea, firma y embebe en una sola operación secuencial. No guarda estado
// entre invocaciones: documentos independientes pueden firmarse en paralelo
// desde llamadores independientes.
type DocumentSignatureService struct {
	ids          myinvois.SignatureIDs
	now          func() time.Time
	cryptoSigner myinvois.CryptoSigner // nil = derivar RSALocalSigner del certificado
}

// Option configura el servicio de firma.
type Option func(*DocumentSignatureService)

// WithIDs fija los identificadores del sobre (tests o perfiles alternativos).
func WithIDs(ids myinvois.SignatureIDs) Option {
	return func(s *DocumentSignatureService) { s.ids = ids }
}

// WithClock fija el reloj del SigningTime (solo para tests deterministas).
func WithClock(now func() time.Time) Option {
	return func(s *DocumentSignatureService) { s.now = now }
}

// WithCryptoSigner sustituye el firmador local por otro backend (HSM, KMS).
func WithCryptoSigner(cs myinvois.CryptoSigner) Option {
	return func(s *DocumentSignatureService) { s.cryptoSigner = cs }
}

// NewDocumentSignatureService crea el servicio con los valores por defecto
// del validador MyInvois.
func NewDocumentSignatureService(opts ...Option) *DocumentSignatureService {
	s := &DocumentSignatureService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignDocument implementa myinvois.DocumentSigner. Toma el cuerpo de la
// factura sin firma y el certificado con llave privada, y devuelve una copia
// del documento con el sobre embebido. Ante cualquier fallo no se devuelve
// documento alguno: jamás un documento con la extensión a medio escribir.
func (s *DocumentSignatureService) SignDocument(ctx context.Context, doc *document.Object, cert tls.Certificate) (*document.Object, error) {
	if doc == nil {
		return nil, myinvois.NewStepError("canonicalize", myinvois.ErrSerialization,
			fmt.Errorf("documento nulo"))
	}
	if len(cert.Certificate) == 0 {
		return nil, myinvois.NewStepError("key-info", myinvois.ErrValidation,
			fmt.Errorf("certificado vacío"))
	}

	x509Cert := cert.Leaf
	if x509Cert == nil {
		parsed, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, myinvois.NewStepError("key-info", myinvois.ErrValidation,
				fmt.Errorf("parsear certificado: %w", err))
		}
		x509Cert = parsed
	}
	meta := MetadataFromCertificate(x509Cert)
	certB64 := base64.StdEncoding.EncodeToString(x509Cert.Raw)

	cryptoSigner := s.cryptoSigner
	if cryptoSigner == nil {
		local, err := NewRSALocalSigner(cert.PrivateKey)
		if err != nil {
			return nil, err
		}
		cryptoSigner = local
	}

	envelope, err := AssembleSignature(ctx, doc, cryptoSigner, meta, certB64, s.ids, s.now)
	if err != nil {
		return nil, err
	}
	return EmbedSignature(doc, envelope, ExtensionURI, SignatureStubID)
}

var _ myinvois.DocumentSigner = (*DocumentSignatureService)(nil)
