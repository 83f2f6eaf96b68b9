// Carga de certificado desde .p12 (PKCS#12) o par PEM.

package signer

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"

	"golang.org/x/crypto/pkcs12"

	"github.com/farhan-syah/myinvois-client-sub000/pkg/myinvois"
)

// LoadFromP12 carga certificado y llave privada desde un archivo .p12/.pfx.
// El password puede ser vacío si el archivo no está protegido.
func LoadFromP12(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("leer p12: %w", err)
	}
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decodificar p12: %w", err)
	}
	// pkcs12.Decode devuelve un solo certificado. Para MyInvois basta el
	// certificado hoja emitido por la CA autorizada.
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  priv,
		Leaf:        cert,
	}, nil
}

// LoadFromPEM carga certificado y llave desde archivos PEM (separados o el
// mismo archivo con cert+key).
func LoadFromPEM(certPath, keyPath string) (tls.Certificate, error) {
	if certPath == "" {
		return tls.Certificate{}, fmt.Errorf("cargar PEM: ruta del certificado vacía")
	}
	if keyPath == "" {
		return tls.LoadX509KeyPair(certPath, certPath)
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("cargar PEM: %w", err)
	}
	return cert, nil
}

// MetadataFromCertificate extrae la metadata que viaja en SignedProperties y
// KeyInfo: issuer RFC 2253, serial en decimal y SHA-256 del DER en Base64.
func MetadataFromCertificate(cert *x509.Certificate) myinvois.CertificateMetadata {
	h := sha256.Sum256(cert.Raw)
	return myinvois.CertificateMetadata{
		IssuerName:   cert.Issuer.String(),
		SerialNumber: cert.SerialNumber.String(),
		CertDigest:   base64.StdEncoding.EncodeToString(h[:]),
	}
}
