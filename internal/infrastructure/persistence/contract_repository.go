package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/subflow/backend/internal/domain/contract"
	"github.com/subflow/backend/internal/domain/shared"
	"github.com/subflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubscriptionContractRepository implements SubscriptionContractRepository using GORM
type GormSubscriptionContractRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionContractRepository creates a new GormSubscriptionContractRepository
func NewGormSubscriptionContractRepository(db *gorm.DB) *GormSubscriptionContractRepository {
	return &GormSubscriptionContractRepository{db: db}
}

// FindByID finds a contract header without its lines or actions
func (r *GormSubscriptionContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.SubscriptionContract, error) {
	var model models.SubscriptionContractModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAggregateByID finds a contract with its full line list and its action
// history ordered most-recent-first, in one composed fetch
func (r *GormSubscriptionContractRepository) FindAggregateByID(ctx context.Context, id uuid.UUID) (*contract.SubscriptionContract, error) {
	var model models.SubscriptionContractModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("action_date DESC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByContractNumber finds a contract by its unique contract number
func (r *GormSubscriptionContractRepository) FindByContractNumber(ctx context.Context, contractNumber string) (*contract.SubscriptionContract, error) {
	var model models.SubscriptionContractModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("contract_number = ?", contractNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveWithLines returns all active contracts with their lines preloaded,
// for the billing sweep
func (r *GormSubscriptionContractRepository) FindActiveWithLines(ctx context.Context) ([]contract.SubscriptionContract, error) {
	var contractModels []models.SubscriptionContractModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("status = ?", contract.ContractStatusActive.String()).
		Order("contract_number ASC").
		Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]contract.SubscriptionContract, len(contractModels))
	for i := range contractModels {
		contracts[i] = *contractModels[i].ToDomain()
	}
	return contracts, nil
}

// FindAll lists contracts matching the filter
func (r *GormSubscriptionContractRepository) FindAll(ctx context.Context, filter contract.ContractFilter) ([]contract.SubscriptionContract, error) {
	var contractModels []models.SubscriptionContractModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SubscriptionContractModel{}), filter)

	if err := query.Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]contract.SubscriptionContract, len(contractModels))
	for i := range contractModels {
		contracts[i] = *contractModels[i].ToDomain()
	}
	return contracts, nil
}

// Count counts contracts matching the filter
func (r *GormSubscriptionContractRepository) Count(ctx context.Context, filter contract.ContractFilter) (int64, error) {
	var count int64
	query := r.applyConditions(r.db.WithContext(ctx).Model(&models.SubscriptionContractModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a contract together with its lines and actions.
// Actions are append-only; existing action rows are never touched.
func (r *GormSubscriptionContractRepository) Save(ctx context.Context, sc *contract.SubscriptionContract) error {
	model := models.SubscriptionContractModelFromDomain(sc)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines", "Actions").Save(model).Error; err != nil {
			return err
		}
		return r.saveChildren(tx, model)
	})
}

// SaveWithLock saves with optimistic locking. The domain has already
// incremented the version, so the update matches the previous one.
func (r *GormSubscriptionContractRepository) SaveWithLock(ctx context.Context, sc *contract.SubscriptionContract) error {
	model := models.SubscriptionContractModelFromDomain(sc)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.SubscriptionContractModel{}).
			Where("id = ? AND version = ?", model.ID, model.Version-1).
			Updates(map[string]interface{}{
				"end_date":     model.EndDate,
				"status":       model.Status,
				"total_tcv":    model.TotalTCV,
				"total_mrr":    model.TotalMRR,
				"renewal_type": model.RenewalType,
				"version":      model.Version,
				"updated_at":   model.UpdatedAt,
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

// saveChildren upserts line rows and inserts any new action rows
func (r *GormSubscriptionContractRepository) saveChildren(tx *gorm.DB, model *models.SubscriptionContractModel) error {
	for i := range model.Lines {
		model.Lines[i].ContractID = model.ID
		if err := tx.Save(&model.Lines[i]).Error; err != nil {
			return err
		}
	}
	for i := range model.Actions {
		model.Actions[i].ContractID = model.ID
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Actions[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// ExistsByContractNumber checks whether a contract number is already taken
func (r *GormSubscriptionContractRepository) ExistsByContractNumber(ctx context.Context, contractNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SubscriptionContractModel{}).
		Where("contract_number = ?", contractNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyConditions applies filter conditions without pagination or ordering
func (r *GormSubscriptionContractRepository) applyConditions(query *gorm.DB, filter contract.ContractFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.EndsBefore != nil {
		query = query.Where("end_date < ?", *filter.EndsBefore)
	}
	return query
}

// applyFilter applies filter conditions, ordering and pagination
func (r *GormSubscriptionContractRepository) applyFilter(query *gorm.DB, filter contract.ContractFilter) *gorm.DB {
	query = r.applyConditions(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, contractSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

var _ contract.SubscriptionContractRepository = (*GormSubscriptionContractRepository)(nil)

// GormSubscriptionActionRepository implements SubscriptionActionRepository using GORM
type GormSubscriptionActionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionActionRepository creates a new GormSubscriptionActionRepository
func NewGormSubscriptionActionRepository(db *gorm.DB) *GormSubscriptionActionRepository {
	return &GormSubscriptionActionRepository{db: db}
}

// FindByContract returns a contract's audit actions, most recent first
func (r *GormSubscriptionActionRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]contract.SubscriptionAction, error) {
	var actionModels []models.SubscriptionActionModel
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("action_date DESC").
		Find(&actionModels).Error; err != nil {
		return nil, err
	}

	actions := make([]contract.SubscriptionAction, len(actionModels))
	for i := range actionModels {
		actions[i] = *actionModels[i].ToDomain()
	}
	return actions, nil
}

// Append writes one audit action record
func (r *GormSubscriptionActionRepository) Append(ctx context.Context, action *contract.SubscriptionAction) error {
	model := models.SubscriptionActionModelFromDomain(action)
	return r.db.WithContext(ctx).Create(model).Error
}

var _ contract.SubscriptionActionRepository = (*GormSubscriptionActionRepository)(nil)
