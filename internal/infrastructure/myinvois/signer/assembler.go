package signer

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/document"
	"github.com/farhan-syah/myinvois-client-sub000/pkg/myinvois"
)

// AssembleSignature ejecuta el protocolo completo de firma y devuelve el sobre
// (ds:Signature en JSON). El orden de los pasos es estricto: la salida de cada
// uno alimenta al siguiente y ninguno puede omitirse ni reordenarse.
//
//  1. Canonicalizar el documento sin UBLExtensions ni Signature → docBytes
//  2. DocumentDigest = base64(SHA256(docBytes))
//  3. Construir SignedProperties
//  4. Canonicalizar SignedProperties → PropertiesDigest
//  5. SignedInfo con las dos References (documento primero, propiedades después)
//  6. Firmar docBytes (los bytes crudos, NO el digest ni SignedInfo)
//  7. KeyInfo con certificado + issuer/serial
//  8. QualifyingProperties con Target = "#" + EnvelopeID
//  9. Sobre completo {Id, SignedInfo, SignatureValue, KeyInfo, Object}
//
// Cualquier fallo aborta el ensamblaje completo con un StepError; nunca se
// devuelve un sobre parcial.
func AssembleSignature(
	ctx context.Context,
	doc *document.Object,
	cryptoSigner myinvois.CryptoSigner,
	meta myinvois.CertificateMetadata,
	certB64 string,
	ids myinvois.SignatureIDs,
	now func() time.Time,
) (*document.Object, error) {
	if certB64 == "" {
		return nil, myinvois.NewStepError("key-info", myinvois.ErrValidation,
			fmt.Errorf("certificado en Base64 vacío"))
	}
	ids = withDefaultIDs(ids)

	// 1) Bytes canónicos del documento, sin los campos reservados.
	docBytes, err := document.Canonicalize(doc, []string{FieldUBLExtensions, FieldSignature})
	if err != nil {
		return nil, myinvois.NewStepError("canonicalize", myinvois.ErrSerialization, err)
	}

	// 2) Digest del documento.
	docDigest := Digest(docBytes)

	// 3) SignedProperties (metadata del certificado + SigningTime).
	signedProps, err := BuildSignedProperties(meta, ids.PropertiesID, now)
	if err != nil {
		return nil, err
	}

	// 4) Digest de SignedProperties (mismo serializador, sin exclusiones).
	propsBytes, err := document.Canonicalize(signedProps, nil)
	if err != nil {
		return nil, myinvois.NewStepError("properties-digest", myinvois.ErrSerialization, err)
	}
	propsDigest := Digest(propsBytes)

	// 5) SignedInfo. El orden de las References es parte del contrato:
	//    documento primero, propiedades después.
	docRef := document.NewObject().
		Set("Id", document.String(ids.DocumentRefID)).
		Set("URI", document.String("")).
		Set("DigestMethod", document.String(AlgSHA256)).
		Set("DigestValue", document.String(docDigest))
	propsRef := document.NewObject().
		Set("Type", document.String(TypeSignedProperties)).
		Set("URI", document.String("#"+ids.PropertiesID)).
		Set("DigestMethod", document.String(AlgSHA256)).
		Set("DigestValue", document.String(propsDigest))
	signedInfo := document.NewObject().
		Set("SignatureMethod", document.String(AlgRSASHA256)).
		Set("Reference", document.Array{docRef, propsRef})

	// 6) Firmar los bytes canónicos del documento.
	rawSig, err := cryptoSigner.Sign(ctx, docBytes)
	if err != nil {
		return nil, wrapSigningErr(err)
	}
	signatureValue := base64.StdEncoding.EncodeToString(rawSig)

	// 7) KeyInfo: certificado + issuer/serial duplicados de la metadata.
	keyInfo := document.NewObject().
		Set("X509Data", document.NewObject().
			Set("X509Certificate", document.String(certB64)).
			Set("X509IssuerSerial", document.NewObject().
				Set("X509IssuerName", document.String(meta.IssuerName)).
				Set("X509SerialNumber", document.String(meta.SerialNumber))))

	// 8) QualifyingProperties apuntando de vuelta al sobre.
	qualifying := document.NewObject().
		Set("Target", document.String("#"+ids.EnvelopeID)).
		Set("SignedProperties", signedProps)

	// 9) Sobre completo.
	envelope := document.NewObject().
		Set("Id", document.String(ids.EnvelopeID)).
		Set("SignedInfo", signedInfo).
		Set("SignatureValue", document.String(signatureValue)).
		Set("KeyInfo", keyInfo).
		Set("Object", document.NewObject().Set("QualifyingProperties", qualifying))
	return envelope, nil
}

// withDefaultIDs completa los identificadores no provistos con los valores
// que espera el validador MyInvois.
func withDefaultIDs(ids myinvois.SignatureIDs) myinvois.SignatureIDs {
	if ids.EnvelopeID == "" {
		ids.EnvelopeID = DefaultEnvelopeID
	}
	if ids.PropertiesID == "" {
		ids.PropertiesID = DefaultPropertiesID
	}
	if ids.DocumentRefID == "" {
		ids.DocumentRefID = DefaultDocumentRefID
	}
	return ids
}

// wrapSigningErr conserva el StepError si el firmador ya lo clasificó.
func wrapSigningErr(err error) error {
	if _, ok := err.(*myinvois.StepError); ok {
		return err
	}
	return myinvois.NewStepError("sign", myinvois.ErrSigning, err)
}
