package signer

import (
	"fmt"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/document"
	"github.com/farhan-syah/myinvois-client-sub000/pkg/myinvois"
)

// EmbedSignature envuelve el sobre de firma en el contenedor genérico
// UBLExtensions del documento y escribe el stub Signature en el cuerpo. Es el
// ÚNICO paso que toca el documento, y aun así lo hace sobre una copia: el
// documento de entrada nunca se modifica.
//
// Si UBLExtensions ya tiene entradas de otras extensiones se conservan; aquí
// solo se agrega exactamente una entrada nueva etiquetada con extensionURI.
func EmbedSignature(doc *document.Object, envelope *document.Object, extensionURI, signatureStubID string) (*document.Object, error) {
	if doc == nil {
		return nil, myinvois.NewStepError("embed", myinvois.ErrSerialization,
			fmt.Errorf("documento nulo"))
	}
	if envelope == nil {
		return nil, myinvois.NewStepError("embed", myinvois.ErrValidation,
			fmt.Errorf("sobre de firma nulo"))
	}
	if extensionURI == "" {
		extensionURI = ExtensionURI
	}
	if signatureStubID == "" {
		signatureStubID = SignatureStubID
	}

	signed := doc.CloneObject()

	// Entrada de extensión: URI + contenido con el sobre dentro de
	// UBLDocumentSignatures/SignatureInformation (forma fija del validador).
	sigInfo := document.NewObject().
		Set("ID", document.String(SignatureInformationID)).
		Set("ReferencedSignatureID", document.String(signatureStubID)).
		Set("Signature", envelope.CloneObject())
	entry := document.NewObject().
		Set("ExtensionURI", document.String(extensionURI)).
		Set("ExtensionContent", document.NewObject().
			Set("UBLDocumentSignatures", document.NewObject().
				Set("SignatureInformation", document.Array{sigInfo})))

	var extensions document.Array
	if existing, ok := signed.Get(FieldUBLExtensions); ok {
		arr, isArr := existing.(document.Array)
		if !isArr {
			return nil, myinvois.NewStepError("embed", myinvois.ErrSerialization,
				fmt.Errorf("el campo %s existe pero no es un array", FieldUBLExtensions))
		}
		extensions = arr
	}
	signed.Set(FieldUBLExtensions, append(extensions, entry))

	// Stub mínimo en el cuerpo: referencia cruzada con el sobre embebido.
	stub := document.NewObject().
		Set("ID", document.String(signatureStubID)).
		Set("SignatureMethod", document.String(extensionURI))
	signed.Set(FieldSignature, document.Array{stub})

	return signed, nil
}
