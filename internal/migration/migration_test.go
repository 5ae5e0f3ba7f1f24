package migration

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRunCreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migration?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Run(context.Background(), db))
	require.NoError(t, Run(context.Background(), db))

	for _, table := range []string{"shapes", "fill_types", "fabric_categories", "fabrics", "add_on_options", "profiles", "profile_pieces", "price_tiers", "calculator_settings"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestRunRequiresHandle(t *testing.T) {
	assert.Error(t, Run(context.Background(), nil))
}
