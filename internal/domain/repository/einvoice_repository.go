package repository

import (
	"context"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/entity"
)

// EInvoiceRepository persistencia de documentos electrónicos y su estado de
// envío a la plataforma.
type EInvoiceRepository interface {
	Create(ctx context.Context, inv *entity.EInvoice) error
	Update(ctx context.Context, inv *entity.EInvoice) error
	GetByID(ctx context.Context, id string) (*entity.EInvoice, error)
	GetByCodeNumber(ctx context.Context, codeNumber string) (*entity.EInvoice, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]*entity.EInvoice, error)
}
