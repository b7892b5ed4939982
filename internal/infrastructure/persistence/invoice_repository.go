package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/subflow/backend/internal/domain/finance"
	"github.com/subflow/backend/internal/domain/shared"
	"github.com/subflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice with its lines and adjustments
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Adjustments").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoiceNumber finds an invoice by its unique number
func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*finance.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Adjustments").
		Where("invoice_number = ?", invoiceNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter finance.InvoiceFilter) ([]finance.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]finance.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter finance.InvoiceFilter) (int64, error) {
	var count int64
	query := r.applyConditions(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an invoice together with its lines and adjustments
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *finance.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines", "Adjustments").Save(model).Error; err != nil {
			return err
		}
		return r.saveChildren(tx, model)
	})
}

// SaveWithLock saves with optimistic locking. The domain has already
// incremented the version, so the update matches the previous one.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *finance.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND version = ?", model.ID, model.Version-1).
			Updates(map[string]interface{}{
				"balance_due": model.BalanceDue,
				"status":      model.Status,
				"issued_at":   model.IssuedAt,
				"version":     model.Version,
				"updated_at":  model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.saveChildren(tx, model)
	})
}

// saveChildren upserts line rows and inserts any new adjustment rows.
// Adjustments are append-only; existing rows are never touched.
func (r *GormInvoiceRepository) saveChildren(tx *gorm.DB, model *models.InvoiceModel) error {
	for i := range model.Lines {
		model.Lines[i].InvoiceID = model.ID
		if err := tx.Save(&model.Lines[i]).Error; err != nil {
			return err
		}
	}
	for i := range model.Adjustments {
		model.Adjustments[i].InvoiceID = model.ID
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Adjustments[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// ExistsByInvoiceNumber checks whether an invoice number is already taken
func (r *GormInvoiceRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyConditions applies filter conditions without pagination or ordering
func (r *GormInvoiceRepository) applyConditions(query *gorm.DB, filter finance.InvoiceFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.TransactionClass != nil {
		query = query.Where("transaction_class = ?", filter.TransactionClass.String())
	}
	return query
}

// applyFilter applies filter conditions, ordering and pagination
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter finance.InvoiceFilter) *gorm.DB {
	query = r.applyConditions(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, invoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
