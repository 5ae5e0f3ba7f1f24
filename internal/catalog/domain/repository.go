package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

//go:generate mockgen -source=repository.go -destination=mock/repository_mock.go -package=mock

type Repository interface {
	ListShapes(ctx context.Context, db *gorm.DB, shop string) ([]Shape, error)
	ListFillTypes(ctx context.Context, db *gorm.DB, shop string) ([]FillType, error)
	ListFabricCategories(ctx context.Context, db *gorm.DB, shop string) ([]FabricCategory, error)
	ListFabrics(ctx context.Context, db *gorm.DB, shop string) ([]Fabric, error)
	ListAddOns(ctx context.Context, db *gorm.DB, shop string) ([]AddOnOption, error)
	FindProfile(ctx context.Context, db *gorm.DB, shop string, id snowflake.ID) (*Profile, error)
	FindSettings(ctx context.Context, db *gorm.DB, shop string) (*CalculatorSettings, error)
	ListPriceTiers(ctx context.Context, db *gorm.DB, shop string) ([]PriceTier, error)

	// Save inserts or updates a shop-owned entity. Updating an id that
	// belongs to another shop fails with ErrNotFound. On update the stored
	// creation time is kept and returned.
	Save(ctx context.Context, db *gorm.DB, shop string, id snowflake.ID, entity any) (*time.Time, error)
	Delete(ctx context.Context, db *gorm.DB, entity any, shop string, id snowflake.ID) (bool, error)
	SaveProfile(ctx context.Context, db *gorm.DB, profile *Profile) (*time.Time, error)
	ReplacePriceTiers(ctx context.Context, db *gorm.DB, shop string, tiers []PriceTier) error
	SaveSettings(ctx context.Context, db *gorm.DB, settings *CalculatorSettings) error
}
