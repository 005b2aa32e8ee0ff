package models

// All lists every persisted model in dependency order, for gorm AutoMigrate
// against sqlite where the goose SQL files do not apply.
func All() []any {
	return []any{
		&CatalogItem{},
		&User{},
		&Order{},
		&OrderItem{},
		&Wishlist{},
		&WishlistItem{},
		&OutboxEvent{},
		&OutboxDeadLetter{},
	}
}
