// Package seed fills reference tables that the service cannot run
// without.
package seed

import (
	currencydomain "github.com/clubworks/clubledger/internal/currency/domain"
	"gorm.io/gorm"
)

var defaultCurrencies = []currencydomain.Currency{
	{Code: "MYR", Name: "Malaysian Ringgit", IsActive: true},
	{Code: "SGD", Name: "Singapore Dollar", IsActive: true},
	{Code: "USD", Name: "United States Dollar", IsActive: true},
	{Code: "EUR", Name: "Euro", IsActive: true},
	{Code: "IDR", Name: "Indonesian Rupiah", IsActive: true},
}

// EnsureDefaultCurrencies inserts the starter currency list when the
// table is empty. Existing rows are never touched.
func EnsureDefaultCurrencies(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&currencydomain.Currency{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return conn.Create(&defaultCurrencies).Error
}
