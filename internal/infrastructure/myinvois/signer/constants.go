// Constantes del sobre de firma JSON (perfil XAdES adaptado del SDK MyInvois).

package signer

// Algoritmos e identificadores fijos del contrato de verificación LHDN.
// Cualquier desviación (campo extra, otro orden de References, otra
// codificación de digest) hace que el portal rechace el documento.
const (
	AlgRSASHA256 = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	AlgSHA256    = "http://www.w3.org/2001/04/xmlenc#sha256"

	// TypeSignedProperties valor fijo del atributo Type de la Reference #2.
	TypeSignedProperties = "http://uri.etsi.org/01903/v1.3.2#SignedProperties"

	// ExtensionURI identifica la extensión de firma enveloped dentro de
	// UBLExtensions y es también el SignatureMethod del stub.
	ExtensionURI = "urn:oasis:names:specification:ubl:dsig:enveloped:xades"

	// SignatureStubID Id del elemento Signature del cuerpo del documento.
	SignatureStubID = "urn:oasis:names:specification:ubl:signature:Invoice"

	// SignatureInformationID Id del bloque SignatureInformation de la extensión.
	SignatureInformationID = "urn:oasis:names:specification:ubl:signature:1"
)

// Identificadores por defecto de las piezas del sobre.
const (
	DefaultEnvelopeID    = "signature"
	DefaultPropertiesID  = "id-xades-signed-props"
	DefaultDocumentRefID = "id-doc-signed-data"
)

// Campos reservados del documento. El conjunto de exclusión de la
// canonicalización debe coincidir EXACTAMENTE con los campos que el embedder
// escribe después: los bytes firmados representan el documento antes de que
// exista material de firma.
const (
	FieldUBLExtensions = "UBLExtensions"
	FieldSignature     = "Signature"
)

// SigningTimeLayout formato ISO-8601 UTC del SigningTime.
const SigningTimeLayout = "2006-01-02T15:04:05Z"
