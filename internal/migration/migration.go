package migration

import (
	"context"
	"errors"

	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
	"gorm.io/gorm"
)

// Models lists every persisted catalog table.
var Models = []any{
	&catalogdomain.Shape{},
	&catalogdomain.FillType{},
	&catalogdomain.FabricCategory{},
	&catalogdomain.Fabric{},
	&catalogdomain.AddOnOption{},
	&catalogdomain.Profile{},
	&catalogdomain.ProfilePiece{},
	&catalogdomain.PriceTier{},
	&catalogdomain.CalculatorSettings{},
}

// Run creates or updates the catalog tables.
func Run(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}
	return db.WithContext(ctx).AutoMigrate(Models...)
}
