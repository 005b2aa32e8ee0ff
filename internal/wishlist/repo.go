package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUser loads the account's wishlist with its entries, oldest first.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	return r.findByUser(ctx, r.db.WithContext(ctx), userID)
}

// FindByUserForUpdate is FindByUser holding a row lock on the wishlist.
func (r *Repository) FindByUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	return r.findByUser(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *Repository) findByUser(ctx context.Context, query *gorm.DB, userID uuid.UUID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	if err := query.Where("user_id = ?", userID).First(&wishlist).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlist.ID).
		Order("created_at ASC").
		Find(&wishlist.Items).Error; err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// Create inserts an empty wishlist for the account. When another request got
// there first, the existing row is returned instead.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	wishlist := &models.Wishlist{UserID: userID}
	if err := r.db.WithContext(ctx).
		Omit("Items").
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(wishlist).Error; err != nil {
		return nil, err
	}
	return r.FindByUserForUpdate(ctx, userID)
}

// AddItem links a catalog item to the wishlist.
func (r *Repository) AddItem(ctx context.Context, wishlistID, itemID uuid.UUID) (*models.WishlistItem, error) {
	entry := &models.WishlistItem{WishlistID: wishlistID, ItemID: itemID}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// RemoveItem unlinks a catalog item and reports how many rows were removed.
func (r *Repository) RemoveItem(ctx context.Context, wishlistID, itemID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("wishlist_id = ? AND item_id = ?", wishlistID, itemID).
		Delete(&models.WishlistItem{})
	return res.RowsAffected, res.Error
}

// CountByUser returns the number of entries, or 0 when the account has no wishlist.
func (r *Repository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("wishlist_items wi").
		Joins("JOIN wishlists w ON w.id = wi.wishlist_id").
		Where("w.user_id = ?", userID).
		Count(&count).Error
	return count, err
}
