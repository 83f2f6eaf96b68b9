package einvoice

import (
	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/document"
	inframyinvois "github.com/farhan-syah/myinvois-client-sub000/internal/infrastructure/myinvois"
)

// DocumentBuilder construye el cuerpo UBL-JSON de un documento (sin firma).
type DocumentBuilder interface {
	Build(ctx *inframyinvois.InvoiceBuildContext) (*document.Object, error)
}

// PlatformConfig configuración del ciclo de firma y envío a MyInvois.
//
// AppEnv controla el modo de operación:
//   - "dev"  → construye y firma, NO envía a la plataforma (resultado simulado).
//   - "test" → envía al ambiente preprod de MyInvois.
//   - "prod" → envía al ambiente de producción.
type PlatformConfig struct {
	AppEnv       string
	CertPath     string // .p12/.pfx o certificado PEM
	CertKeyPath  string // llave PEM (solo si CertPath es PEM)
	CertPassword string
}
