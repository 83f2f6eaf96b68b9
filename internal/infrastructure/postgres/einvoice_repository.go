package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/entity"
	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/repository"
)

var _ repository.EInvoiceRepository = (*EInvoiceRepo)(nil)

// EInvoiceRepo implementación de EInvoiceRepository (usable con pool o tx).
type EInvoiceRepo struct {
	q Querier
}

// NewEInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEInvoiceRepository(q Querier) *EInvoiceRepo {
	return &EInvoiceRepo{q: q}
}

const einvoiceColumns = `
	id, code_number, type_code, supplier_tin, customer_tin, customer_name,
	issue_date, currency, net_total, tax_total, grand_total, status,
	json_signed, document_uuid, submission_uid, long_id, platform_errors,
	created_at, updated_at`

// Create persiste la cabecera del documento electrónico.
func (r *EInvoiceRepo) Create(ctx context.Context, inv *entity.EInvoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO einvoices (` + einvoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.CodeNumber, inv.TypeCode, inv.SupplierTIN, inv.CustomerTIN, inv.CustomerName,
		inv.IssueDate, inv.Currency, inv.NetTotal, inv.TaxTotal, inv.GrandTotal, inv.Status,
		nullIfEmpty(inv.JSONSigned), nullIfEmpty(inv.DocumentUUID), nullIfEmpty(inv.SubmissionUID),
		nullIfEmpty(inv.LongID), nullIfEmpty(inv.PlatformErrors),
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("code number ya registrado: %w", err)
		}
		return fmt.Errorf("insert einvoice: %w", err)
	}
	return nil
}

// Update actualiza el estado de la plataforma y el documento firmado. Los
// identificadores que la plataforma asigna una sola vez se preservan con
// COALESCE: una actualización posterior con el campo vacío no los borra.
func (r *EInvoiceRepo) Update(ctx context.Context, inv *entity.EInvoice) error {
	query := `
		UPDATE einvoices
		SET status          = $2,
		    json_signed     = COALESCE($3, json_signed),
		    document_uuid   = COALESCE($4, document_uuid),
		    submission_uid  = COALESCE($5, submission_uid),
		    long_id         = COALESCE($6, long_id),
		    platform_errors = COALESCE($7, platform_errors),
		    updated_at      = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		inv.ID,
		inv.Status,
		nullIfEmpty(inv.JSONSigned),
		nullIfEmpty(inv.DocumentUUID),
		nullIfEmpty(inv.SubmissionUID),
		nullIfEmpty(inv.LongID),
		nullIfEmpty(inv.PlatformErrors),
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update einvoice: %w", err)
	}
	return nil
}

// GetByID obtiene un documento por ID. Devuelve (nil, nil) si no existe.
func (r *EInvoiceRepo) GetByID(ctx context.Context, id string) (*entity.EInvoice, error) {
	query := `SELECT ` + einvoiceColumns + ` FROM einvoices WHERE id = $1`
	inv, err := r.scanOne(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get einvoice: %w", err)
	}
	return inv, nil
}

// GetByCodeNumber obtiene un documento por su número interno.
func (r *EInvoiceRepo) GetByCodeNumber(ctx context.Context, codeNumber string) (*entity.EInvoice, error) {
	query := `SELECT ` + einvoiceColumns + ` FROM einvoices WHERE code_number = $1`
	inv, err := r.scanOne(r.q.QueryRow(ctx, query, codeNumber))
	if err != nil {
		return nil, fmt.Errorf("get einvoice por code number: %w", err)
	}
	return inv, nil
}

// ListByStatus lista documentos en un estado dado, los más recientes primero.
func (r *EInvoiceRepo) ListByStatus(ctx context.Context, status string, limit int) ([]*entity.EInvoice, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + einvoiceColumns + `
		FROM einvoices WHERE status = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list einvoices: %w", err)
	}
	defer rows.Close()

	var out []*entity.EInvoice
	for rows.Next() {
		inv, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan einvoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *EInvoiceRepo) scanOne(row pgx.Row) (*entity.EInvoice, error) {
	var inv entity.EInvoice
	var jsonSigned, docUUID, submissionUID, longID, platformErrors *string
	err := row.Scan(
		&inv.ID, &inv.CodeNumber, &inv.TypeCode, &inv.SupplierTIN, &inv.CustomerTIN, &inv.CustomerName,
		&inv.IssueDate, &inv.Currency, &inv.NetTotal, &inv.TaxTotal, &inv.GrandTotal, &inv.Status,
		&jsonSigned, &docUUID, &submissionUID, &longID, &platformErrors,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	inv.JSONSigned = deref(jsonSigned)
	inv.DocumentUUID = deref(docUUID)
	inv.SubmissionUID = deref(submissionUID)
	inv.LongID = deref(longID)
	inv.PlatformErrors = deref(platformErrors)
	return &inv, nil
}
