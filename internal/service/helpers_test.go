package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkamenev/storefront/internal/models"
	"github.com/mkamenev/storefront/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return &repo.GormRepo{DB: newTestDB(t)}
}

func seedProduct(t *testing.T, r *repo.GormRepo, name, price string, stock int) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	require.NoError(t, r.DB.Create(p).Error)
	return p
}

func sessionIdentity(token string) models.CartIdentity {
	return models.CartIdentity{SessionToken: &token}
}

func accountIdentity(id uint) models.CartIdentity {
	return models.CartIdentity{AccountID: &id}
}

func testContact() models.ContactInfo {
	return models.ContactInfo{
		FullName:   "John Doe",
		Email:      "johndoe@example.com",
		Phone:      "+1 234 567 8900",
		Address:    "123 Main Street",
		City:       "New York",
		State:      "NY",
		PostalCode: "10001",
		Country:    "United States",
	}
}
