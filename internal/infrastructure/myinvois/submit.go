package myinvois

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/document"
)

// BuildDocumentPayload prepara un documento firmado para el endpoint de
// submissions: el JSON minificado va en Base64 y su SHA-256 en hex. El hash se
// calcula sobre exactamente los mismos bytes que se codifican — cualquier
// divergencia hace que la plataforma rechace el envío por hash inválido.
func BuildDocumentPayload(signedDoc *document.Object, codeNumber string) (DocumentPayload, error) {
	if codeNumber == "" {
		return DocumentPayload{}, fmt.Errorf("myinvois: codeNumber vacío")
	}
	raw, err := document.Canonicalize(signedDoc, nil)
	if err != nil {
		return DocumentPayload{}, fmt.Errorf("myinvois: serializar documento firmado: %w", err)
	}
	sum := sha256.Sum256(raw)
	return DocumentPayload{
		Format:       "JSON",
		Document:     base64.StdEncoding.EncodeToString(raw),
		DocumentHash: hex.EncodeToString(sum[:]),
		CodeNumber:   codeNumber,
	}, nil
}

// SubmitDocuments envía el lote de documentos firmados.
// POST /api/v1.0/documentsubmissions
func (c *PlatformClient) SubmitDocuments(ctx context.Context, docs []DocumentPayload) (*SubmissionResult, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("myinvois: lote de documentos vacío")
	}
	var result SubmissionResult
	if err := c.doJSON(ctx, http.MethodPost, submissionsPath, submissionRequest{Documents: docs}, &result); err != nil {
		return nil, err
	}
	c.log.Info().
		Str("submission_uid", result.SubmissionUID).
		Int("accepted", len(result.AcceptedDocuments)).
		Int("rejected", len(result.RejectedDocuments)).
		Msg("submission enviada")
	return &result, nil
}

// GetSubmission consulta el estado de procesamiento de una submission.
// GET /api/v1.0/documentsubmissions/{submissionUid}
func (c *PlatformClient) GetSubmission(ctx context.Context, submissionUID string) (*SubmissionStatus, error) {
	if submissionUID == "" {
		return nil, fmt.Errorf("myinvois: submissionUID vacío")
	}
	var status SubmissionStatus
	path := submissionsPath + "/" + url.PathEscape(submissionUID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CancelDocument cancela un documento validado dentro de la ventana permitida.
// PUT /api/v1.0/documents/state/{uuid}/state
func (c *PlatformClient) CancelDocument(ctx context.Context, documentUUID, reason string) error {
	if documentUUID == "" {
		return fmt.Errorf("myinvois: UUID del documento vacío")
	}
	body := map[string]string{"status": "cancelled", "reason": reason}
	path := documentsPath + "/state/" + url.PathEscape(documentUUID) + "/state"
	if err := c.doJSON(ctx, http.MethodPut, path, body, nil); err != nil {
		return err
	}
	c.log.Info().Str("document_uuid", documentUUID).Msg("documento cancelado")
	return nil
}

// decodePayloadDocument decodifica el documento de un payload (solo para
// verificación en tests y herramientas).
func decodePayloadDocument(p DocumentPayload) (*document.Object, error) {
	raw, err := base64.StdEncoding.DecodeString(p.Document)
	if err != nil {
		return nil, fmt.Errorf("myinvois: decodificar documento: %w", err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("myinvois: el payload no contiene JSON válido")
	}
	return document.Parse(raw)
}
