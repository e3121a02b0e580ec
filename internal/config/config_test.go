package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.LowStockThreshold)
	assert.Equal(t, "usd", cfg.Currency)
	assert.Zero(t, cfg.ShippingFee)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "10")
	t.Setenv("SHIPPING_FEE", "4.5")
	t.Setenv("CURRENCY", "eur")

	cfg := Load()

	assert.Equal(t, 10, cfg.LowStockThreshold)
	assert.InDelta(t, 4.5, cfg.ShippingFee, 0.001)
	assert.Equal(t, "eur", cfg.Currency)
}

func TestLoad_ThresholdMayBeZeroOrNegative(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "-1")

	cfg := Load()
	assert.Equal(t, -1, cfg.LowStockThreshold)
}

func TestLoad_BadNumberFallsBack(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "lots")

	cfg := Load()
	assert.Equal(t, 3, cfg.LowStockThreshold)
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		MySQLUser:     "shop",
		MySQLPassword: "secret",
		MySQLHost:     "db",
		MySQLPort:     "3306",
		MySQLDatabase: "storefront",
	}

	assert.Equal(t,
		"shop:secret@tcp(db:3306)/storefront?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DSN())
}
