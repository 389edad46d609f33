package deliveryrules

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campuskart/campuskart-backend/pkg/db/models"
	"github.com/campuskart/campuskart-backend/pkg/enums"
)

func setupRulesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	rules := `
CREATE TABLE IF NOT EXISTS delivery_charge_rules (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  from_amount TEXT NOT NULL,
  to_amount TEXT,
  charge TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(rules).Error)
	require.NoError(t, db.Exec(`DELETE FROM delivery_charge_rules`).Error)
	return db
}

func seedRule(t *testing.T, db *gorm.DB, kind enums.DeliveryChargeKind, from int64, to *int64, charge int64, position int) models.DeliveryChargeRule {
	t.Helper()

	row := models.DeliveryChargeRule{
		ID:         uuid.New(),
		Kind:       kind,
		FromAmount: decimal.NewFromInt(from),
		Charge:     decimal.NewFromInt(charge),
		Position:   position,
	}
	if to != nil {
		upper := decimal.NewFromInt(*to)
		row.ToAmount = &upper
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestListByKindReturnsOrderedSet(t *testing.T) {
	db := setupRulesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	upper := int64(500)
	seedRule(t, db, enums.DeliveryChargeKindProduct, 500, nil, 20, 1)
	seedRule(t, db, enums.DeliveryChargeKindProduct, 0, &upper, 50, 0)
	seedRule(t, db, enums.DeliveryChargeKindXerox, 0, nil, 10, 0)

	rows, err := repo.ListByKind(ctx, enums.DeliveryChargeKindProduct)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].FromAmount.IsZero())
	assert.True(t, rows[1].FromAmount.Equal(decimal.NewFromInt(500)))
}

func TestReplaceForKindSwapsSet(t *testing.T) {
	db := setupRulesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedRule(t, db, enums.DeliveryChargeKindXerox, 0, nil, 10, 0)
	seedRule(t, db, enums.DeliveryChargeKindProduct, 0, nil, 50, 0)

	replacement := []models.DeliveryChargeRule{
		{ID: uuid.New(), Kind: enums.DeliveryChargeKindXerox, FromAmount: decimal.Zero, Charge: decimal.NewFromInt(15), Position: 0},
		{ID: uuid.New(), Kind: enums.DeliveryChargeKindXerox, FromAmount: decimal.NewFromInt(200), Charge: decimal.Zero, Position: 1},
	}
	require.NoError(t, repo.ReplaceForKind(ctx, nil, enums.DeliveryChargeKindXerox, replacement))

	rows, err := repo.ListByKind(ctx, enums.DeliveryChargeKindXerox)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Charge.Equal(decimal.NewFromInt(15)))

	// The other kind's set is untouched.
	productRows, err := repo.ListByKind(ctx, enums.DeliveryChargeKindProduct)
	require.NoError(t, err)
	assert.Len(t, productRows, 1)
}
