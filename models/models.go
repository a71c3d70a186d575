// Package models holds the persisted entities.
package models

// All lists every entity for migration, dependencies first.
func All() []any {
	return []any{
		&User{},
		&Student{},
		&Provider{},
		&Review{},
		&ProviderSubscriber{},
		&MenuItem{},
		&MealPlan{},
		&Subscription{},
		&StudentSubscription{},
		&Order{},
		&OrderItem{},
		&OrderStatusHistory{},
	}
}
