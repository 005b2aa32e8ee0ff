package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
)

// Repository defines persistence operations for catalog items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.CatalogItem, error)
	ListFeatured(ctx context.Context) ([]models.CatalogItem, error)
	ListByCategory(ctx context.Context, category enums.ItemCategory) ([]models.CatalogItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CatalogItem, error)
	Create(ctx context.Context, item *models.CatalogItem) error
	Save(ctx context.Context, item *models.CatalogItem) error
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *repository) List(ctx context.Context) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := r.conn(ctx).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *repository) ListFeatured(ctx context.Context) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := r.conn(ctx).
		Where("is_featured = ?", true).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *repository) ListByCategory(ctx context.Context, category enums.ItemCategory) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := r.conn(ctx).
		Where("category = ?", category).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.conn(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDForUpdate loads the row with a write lock; only meaningful inside a transaction.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CatalogItem, error) {
	if len(ids) == 0 {
		return []models.CatalogItem{}, nil
	}
	var items []models.CatalogItem
	err := r.conn(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *repository) Create(ctx context.Context, item *models.CatalogItem) error {
	return r.conn(ctx).Create(item).Error
}

func (r *repository) Save(ctx context.Context, item *models.CatalogItem) error {
	return r.conn(ctx).Save(item).Error
}

func (r *repository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	res := r.conn(ctx).
		Model(&models.CatalogItem{}).
		Where("id = ?", id).
		Update("stock", stock)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.conn(ctx).Where("id = ?", id).Delete(&models.CatalogItem{})
	return res.RowsAffected, res.Error
}
