package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/subflow/backend/internal/domain/billing"
	"github.com/subflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillingEventRepository implements BillingEventRepository using GORM
type GormBillingEventRepository struct {
	db *gorm.DB
}

// NewGormBillingEventRepository creates a new GormBillingEventRepository
func NewGormBillingEventRepository(db *gorm.DB) *GormBillingEventRepository {
	return &GormBillingEventRepository{db: db}
}

// FindByID finds a billing event by its ID
func (r *GormBillingEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingEvent, error) {
	var model models.BillingEventModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists billing events matching the filter
func (r *GormBillingEventRepository) FindAll(ctx context.Context, filter billing.EventFilter) ([]billing.BillingEvent, error) {
	var eventModels []models.BillingEventModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BillingEventModel{}), filter)

	if err := query.Find(&eventModels).Error; err != nil {
		return nil, err
	}

	events := make([]billing.BillingEvent, len(eventModels))
	for i := range eventModels {
		events[i] = *eventModels[i].ToDomain()
	}
	return events, nil
}

// Count counts billing events matching the filter
func (r *GormBillingEventRepository) Count(ctx context.Context, filter billing.EventFilter) (int64, error) {
	var count int64
	query := r.applyConditions(r.db.WithContext(ctx).Model(&models.BillingEventModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsForLinePeriod checks whether an event already exists for the given
// product line and billing period. The generator calls this inside its insert
// transaction; the unique index on the same pair is the final guard.
func (r *GormBillingEventRepository) ExistsForLinePeriod(ctx context.Context, lineID uuid.UUID, periodKey string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BillingEventModel{}).
		Where("source_transaction_id = ? AND period_key = ?", lineID, periodKey).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save persists a billing event
func (r *GormBillingEventRepository) Save(ctx context.Context, event *billing.BillingEvent) error {
	model := models.BillingEventModelFromDomain(event)
	return r.db.WithContext(ctx).Save(model).Error
}

// applyConditions applies filter conditions without pagination or ordering
func (r *GormBillingEventRepository) applyConditions(query *gorm.DB, filter billing.EventFilter) *gorm.DB {
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.PeriodKey != nil {
		query = query.Where("period_key = ?", *filter.PeriodKey)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	return query
}

// applyFilter applies filter conditions, ordering and pagination
func (r *GormBillingEventRepository) applyFilter(query *gorm.DB, filter billing.EventFilter) *gorm.DB {
	query = r.applyConditions(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, billingEventSortFields, "event_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

var _ billing.BillingEventRepository = (*GormBillingEventRepository)(nil)
