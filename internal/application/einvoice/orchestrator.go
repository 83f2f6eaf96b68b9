package einvoice

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/document"
	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/entity"
	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/repository"
	inframyinvois "github.com/farhan-syah/myinvois-client-sub000/internal/infrastructure/myinvois"
	"github.com/farhan-syah/myinvois-client-sub000/internal/infrastructure/myinvois/signer"
	pkgmyinvois "github.com/farhan-syah/myinvois-client-sub000/pkg/myinvois"
)

// Orchestrator orquesta el ciclo completo de un documento electrónico MyInvois:
//
//	Cuerpo UBL-JSON → Firma JSON (perfil XAdES) → Sobre de envío → Submission → Update DB
//
// Se ejecuta siempre en goroutine independiente (ProcessAsync) con su propio
// context.Background() + timeout 30 s, desacoplado del ciclo HTTP.
type Orchestrator struct {
	repo      repository.EInvoiceRepository
	builder   DocumentBuilder
	docSigner pkgmyinvois.DocumentSigner
	submitter inframyinvois.Submitter // cliente de la plataforma; nil en dev
	config    PlatformConfig
	logger    zerolog.Logger
}

// NewOrchestrator construye el orquestador con todas sus dependencias.
// submitter puede ser nil: en ese caso el modo dev es el único que funciona.
func NewOrchestrator(
	repo repository.EInvoiceRepository,
	builder DocumentBuilder,
	docSigner pkgmyinvois.DocumentSigner,
	submitter inframyinvois.Submitter,
	config PlatformConfig,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		repo:      repo,
		builder:   builder,
		docSigner: docSigner,
		submitter: submitter,
		config:    config,
		logger:    logger.With().Str("component", "einvoice-orchestrator").Logger(),
	}
}

// ProcessAsync dispara el procesamiento en una goroutine independiente.
// invoiceID es el ID del documento ya persistido en estado DRAFT; buildCtx
// lleva los datos completos del documento (líneas incluidas).
func (o *Orchestrator) ProcessAsync(invoiceID string, buildCtx *inframyinvois.InvoiceBuildContext) {
	go o.Process(invoiceID, buildCtx)
}

// Process es el núcleo síncrono del orquestador. Siempre termina actualizando
// el estado en la DB (SUBMITTED, INVALID o ERROR_GENERATION).
func (o *Orchestrator) Process(invoiceID string, buildCtx *inframyinvois.InvoiceBuildContext) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := o.logger.With().Str("invoice_id", invoiceID).Logger()

	// markError actualiza el documento a ERROR_GENERATION y hace log del problema.
	markError := func(inv *entity.EInvoice, step, msg string) {
		inv.Status = entity.EInvoiceStatusErrorGeneration
		inv.PlatformErrors = msg
		inv.UpdatedAt = time.Now()
		if err := o.repo.Update(ctx, inv); err != nil {
			log.Error().Err(err).Msg("no se pudo persistir ERROR_GENERATION")
		}
		log.Error().Str("step", step).Msg(msg)
	}

	// ═══════════════════════════════════════════════════════════════════════════
	// 0. Re-fetch datos frescos (evita data races con el goroutine HTTP)
	// ═══════════════════════════════════════════════════════════════════════════
	inv, err := o.repo.GetByID(ctx, invoiceID)
	if err != nil || inv == nil {
		log.Error().Err(err).Msg("documento no encontrado")
		return
	}
	if inv.Status != entity.EInvoiceStatusDraft {
		log.Warn().Str("status", inv.Status).Msg("estado inesperado (ya procesado?), saltando")
		return
	}

	// ═══════════════════════════════════════════════════════════════════════════
	// 1. Construir el cuerpo UBL-JSON
	// ═══════════════════════════════════════════════════════════════════════════
	body, err := o.builder.Build(buildCtx)
	if err != nil {
		markError(inv, "build", err.Error())
		return
	}

	// ═══════════════════════════════════════════════════════════════════════════
	// 2. Firma digital (sobre JSON, perfil XAdES)
	// ═══════════════════════════════════════════════════════════════════════════
	cert, err := loadCertificate(o.config)
	if err != nil {
		markError(inv, "cert-load", err.Error())
		return
	}
	if len(cert.Certificate) == 0 || cert.PrivateKey == nil {
		markError(inv, "cert-load", "certificado vacío: verifica MYINVOIS_CERT_PATH y MYINVOIS_CERT_PASSWORD")
		return
	}

	signedBody, err := o.docSigner.SignDocument(ctx, body, cert)
	if err != nil {
		markError(inv, "sign", err.Error())
		return
	}

	// ═══════════════════════════════════════════════════════════════════════════
	// 3. Sobre de envío y payload (hash sobre los mismos bytes codificados)
	// ═══════════════════════════════════════════════════════════════════════════
	wrapped := inframyinvois.WrapForSubmission(signedBody)
	payload, err := inframyinvois.BuildDocumentPayload(wrapped, inv.CodeNumber)
	if err != nil {
		markError(inv, "payload", err.Error())
		return
	}

	// Persistir como SIGNED (JSON firmado disponible para descarga). La forma
	// canónica, nunca json.Marshal: el escape HTML de encoding/json cambiaría
	// los bytes respecto de lo que cubre la firma.
	wrappedJSON, err := document.Canonicalize(wrapped, nil)
	if err != nil {
		markError(inv, "payload", err.Error())
		return
	}
	inv.JSONSigned = string(wrappedJSON)
	inv.Status = entity.EInvoiceStatusSigned
	inv.UpdatedAt = time.Now()
	if err := o.repo.Update(ctx, inv); err != nil {
		log.Error().Err(err).Msg("error persistiendo SIGNED")
		return
	}

	// ═══════════════════════════════════════════════════════════════════════════
	// 4. Envío condicional a la plataforma
	// ═══════════════════════════════════════════════════════════════════════════
	appEnv := strings.ToLower(strings.TrimSpace(o.config.AppEnv))

	switch appEnv {
	case inframyinvois.AppEnvDev, "":
		// ── Modo desarrollo: simular respuesta, no enviar ──────────────────
		log.Info().Int("bytes", len(payload.Document)).Msg("[DEV] simulando envío a MyInvois")
		inv.SubmissionUID = "MOCK-SUBMISSION-123"
		inv.DocumentUUID = "MOCK-UUID-123"
		inv.Status = entity.EInvoiceStatusValid

	case inframyinvois.AppEnvTest, inframyinvois.AppEnvProd:
		// ── Modo test/prod: llamada real a la API ──────────────────────────
		if o.submitter == nil {
			markError(inv, "submit", "Submitter no inyectado para entorno "+appEnv)
			return
		}
		result, err := o.submitter.SubmitDocuments(ctx, []inframyinvois.DocumentPayload{payload})
		if err != nil {
			markError(inv, "submit", err.Error())
			return
		}
		inv.SubmissionUID = result.SubmissionUID

		if rejected := findRejected(result, inv.CodeNumber); rejected != nil {
			errJSON, _ := json.Marshal(rejected.Error)
			inv.PlatformErrors = string(errJSON)
			inv.Status = entity.EInvoiceStatusInvalid
			log.Warn().Str("submission_uid", result.SubmissionUID).
				Msg("documento rechazado en la validación inicial")
		} else {
			if accepted := findAccepted(result, inv.CodeNumber); accepted != nil {
				inv.DocumentUUID = accepted.UUID
			}
			inv.Status = entity.EInvoiceStatusSubmitted
			log.Info().Str("submission_uid", result.SubmissionUID).
				Str("document_uuid", inv.DocumentUUID).
				Msg("documento aceptado, validación en curso")
		}

	default:
		markError(inv, "config", fmt.Sprintf("MYINVOIS_ENV desconocido: %q (usar dev|test|prod)", appEnv))
		return
	}

	// ═══════════════════════════════════════════════════════════════════════════
	// 5. Persistir resultado final en DB
	// ═══════════════════════════════════════════════════════════════════════════
	inv.UpdatedAt = time.Now()
	if err := o.repo.Update(ctx, inv); err != nil {
		log.Error().Err(err).Str("status", inv.Status).Msg("error persistiendo estado final")
		return
	}
	log.Info().Str("status", inv.Status).Msg("documento procesado")
}

// RefreshStatus consulta el estado de la submission en la plataforma y
// sincroniza el registro local (Valid/Invalid y el longId del enlace público).
func (o *Orchestrator) RefreshStatus(ctx context.Context, invoiceID string) (*entity.EInvoice, error) {
	inv, err := o.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("einvoice %s no encontrado", invoiceID)
	}
	if inv.SubmissionUID == "" || o.submitter == nil {
		return inv, nil
	}

	status, err := o.submitter.GetSubmission(ctx, inv.SubmissionUID)
	if err != nil {
		return nil, fmt.Errorf("consultar submission: %w", err)
	}
	for _, doc := range status.DocumentStates {
		if doc.CodeNumber != inv.CodeNumber && doc.UUID != inv.DocumentUUID {
			continue
		}
		inv.DocumentUUID = doc.UUID
		inv.LongID = doc.LongID
		switch doc.Status {
		case "Valid":
			inv.Status = entity.EInvoiceStatusValid
		case "Invalid":
			inv.Status = entity.EInvoiceStatusInvalid
		case "Cancelled":
			inv.Status = entity.EInvoiceStatusCancelled
		}
	}
	inv.UpdatedAt = time.Now()
	if err := o.repo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("persistir estado: %w", err)
	}
	return inv, nil
}

// Cancel cancela un documento ya validado dentro de la ventana de 72 h.
func (o *Orchestrator) Cancel(ctx context.Context, invoiceID, reason string) error {
	inv, err := o.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv == nil {
		return fmt.Errorf("einvoice %s no encontrado", invoiceID)
	}
	if inv.DocumentUUID == "" {
		return fmt.Errorf("einvoice %s sin UUID de plataforma, no se puede cancelar", invoiceID)
	}
	if o.submitter != nil {
		if err := o.submitter.CancelDocument(ctx, inv.DocumentUUID, reason); err != nil {
			return err
		}
	}
	inv.Status = entity.EInvoiceStatusCancelled
	inv.UpdatedAt = time.Now()
	return o.repo.Update(ctx, inv)
}

// ── helpers privados ──────────────────────────────────────────────────────────

func loadCertificate(cfg PlatformConfig) (tls.Certificate, error) {
	if cfg.CertPath == "" {
		return tls.Certificate{}, fmt.Errorf("MYINVOIS_CERT_PATH no configurado")
	}
	lower := strings.ToLower(cfg.CertPath)
	if strings.HasSuffix(lower, ".p12") || strings.HasSuffix(lower, ".pfx") {
		return signer.LoadFromP12(cfg.CertPath, cfg.CertPassword)
	}
	return signer.LoadFromPEM(cfg.CertPath, cfg.CertKeyPath)
}

func findAccepted(r *inframyinvois.SubmissionResult, codeNumber string) *inframyinvois.AcceptedDocument {
	for i := range r.AcceptedDocuments {
		if r.AcceptedDocuments[i].CodeNumber == codeNumber {
			return &r.AcceptedDocuments[i]
		}
	}
	return nil
}

func findRejected(r *inframyinvois.SubmissionResult, codeNumber string) *inframyinvois.RejectedDocument {
	for i := range r.RejectedDocuments {
		if r.RejectedDocuments[i].CodeNumber == codeNumber {
			return &r.RejectedDocuments[i]
		}
	}
	return nil
}
