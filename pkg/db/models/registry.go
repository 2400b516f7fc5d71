package models

// All lists every persisted model in dependency order, for AutoMigrate on
// SQLite where the goose Postgres migrations do not apply.
func All() []any {
	return []any{
		&User{},
		&Shop{},
		&Category{},
		&ShopCategory{},
		&Product{},
		&ProductInfo{},
		&Parameter{},
		&ProductParameter{},
		&Contact{},
		&Order{},
		&OrderItem{},
		&OutboxEvent{},
		&OutboxDLQ{},
		&Notification{},
	}
}
