// Package myinvois: puertos y tipos compartidos para la integración con el
// portal de factura electrónica MyInvois de LHDN (Malasia).
package myinvois

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/document"
)

// DocumentSigner firma un documento UBL-JSON y devuelve el documento con la
// firma embebida (UBLExtensions + stub Signature). El documento de entrada
// nunca se modifica.
type DocumentSigner interface {
	// SignDocument toma el cuerpo de la factura (sin firma) y el certificado
	// con llave privada, y retorna una copia con el sobre de firma embebido.
	SignDocument(ctx context.Context, doc *document.Object, cert tls.Certificate) (*document.Object, error)
}

// CryptoSigner es la frontera criptográfica de la tubería de firma: recibe los
// bytes canónicos del documento y devuelve la firma asimétrica cruda. La
// implementación local usa una llave RSA en memoria; una implementación remota
// (HSM, servicio de llaves) puede sustituirla sin tocar el resto del pipeline,
// por eso recibe context.
type CryptoSigner interface {
	// Sign firma los bytes canónicos. El primitivo hashea internamente
	// (SHA-256) antes de aplicar RSA: el llamador NO debe pre-hashear.
	Sign(ctx context.Context, canonical []byte) ([]byte, error)
}

// CertificateMetadata son los datos del certificado del firmante que viajan en
// SignedProperties y KeyInfo. Se extraen del X.509 fuera de este subsistema
// (ver signer.MetadataFromCertificate).
type CertificateMetadata struct {
	IssuerName   string    // Issuer en forma RFC 2253
	SerialNumber string    // Serial del certificado en decimal
	CertDigest   string    // Base64 del SHA-256 del DER del certificado
	SigningTime  time.Time // Cero = capturar time.Now().UTC() al firmar (override solo para tests)
}

// SignatureIDs identifica las piezas del sobre de firma. Los valores por
// defecto son los que espera el validador MyInvois; se inyectan para que los
// tests puedan fijar salidas exactas.
type SignatureIDs struct {
	EnvelopeID    string // Id del ds:Signature ("signature")
	PropertiesID  string // Id del bloque SignedProperties ("id-xades-signed-props")
	DocumentRefID string // Id de la Reference al documento ("id-doc-signed-data")
}

// IDGenerator produce identificadores únicos para entidades y submissions.
// Reemplaza los contadores globales basados en timestamp del diseño original:
// inyectable para que los tests sean deterministas.
type IDGenerator func() string
