package signer

import (
	"fmt"
	"time"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/document"
	"github.com/farhan-syah/myinvois-client-sub000/pkg/myinvois"
)

// BuildSignedProperties construye el bloque SignedProperties: metadata del
// certificado (digest, issuer, serial) más el instante de firma. El bloque se
// hashea aparte (PropertiesDigest) y la Reference #2 lo apunta por su Id.
//
// El SigningTime se captura al momento de la llamada (UTC) salvo que la
// metadata traiga un override explícito; now permite fijar el reloj en tests.
func BuildSignedProperties(meta myinvois.CertificateMetadata, propertiesID string, now func() time.Time) (*document.Object, error) {
	if err := validateMetadata(meta); err != nil {
		return nil, err
	}
	signingTime := meta.SigningTime
	if signingTime.IsZero() {
		if now == nil {
			now = time.Now
		}
		signingTime = now()
	}

	certDigest := document.NewObject().
		Set("DigestMethod", document.String(AlgSHA256)).
		Set("DigestValue", document.String(meta.CertDigest))

	issuerSerial := document.NewObject().
		Set("X509IssuerName", document.String(meta.IssuerName)).
		Set("X509SerialNumber", document.String(meta.SerialNumber))

	cert := document.NewObject().
		Set("CertDigest", certDigest).
		Set("IssuerSerial", issuerSerial)

	signedSigProps := document.NewObject().
		Set("SigningTime", document.String(signingTime.UTC().Format(SigningTimeLayout))).
		Set("SigningCertificate", document.NewObject().Set("Cert", cert))

	return document.NewObject().
		Set("Id", document.String(propertiesID)).
		Set("SignedSignatureProperties", signedSigProps), nil
}

// validateMetadata rechaza metadata incompleta: ningún campo se rellena en
// silencio (excepto el timestamp).
func validateMetadata(meta myinvois.CertificateMetadata) error {
	switch {
	case meta.IssuerName == "":
		return myinvois.NewStepError("signed-properties", myinvois.ErrValidation,
			fmt.Errorf("IssuerName del certificado vacío"))
	case meta.SerialNumber == "":
		return myinvois.NewStepError("signed-properties", myinvois.ErrValidation,
			fmt.Errorf("SerialNumber del certificado vacío"))
	case meta.CertDigest == "":
		return myinvois.NewStepError("signed-properties", myinvois.ErrValidation,
			fmt.Errorf("CertDigest del certificado vacío"))
	}
	return nil
}
