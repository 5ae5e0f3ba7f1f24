package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

const catalogOrder = "sort_order ASC, id ASC"

func (r *repo) ListShapes(ctx context.Context, db *gorm.DB, shop string) ([]catalogdomain.Shape, error) {
	var items []catalogdomain.Shape
	err := db.WithContext(ctx).Where("shop = ?", shop).Order(catalogOrder).Find(&items).Error
	return items, err
}

func (r *repo) ListFillTypes(ctx context.Context, db *gorm.DB, shop string) ([]catalogdomain.FillType, error) {
	var items []catalogdomain.FillType
	err := db.WithContext(ctx).Where("shop = ?", shop).Order(catalogOrder).Find(&items).Error
	return items, err
}

func (r *repo) ListFabricCategories(ctx context.Context, db *gorm.DB, shop string) ([]catalogdomain.FabricCategory, error) {
	var items []catalogdomain.FabricCategory
	err := db.WithContext(ctx).Where("shop = ?", shop).Order(catalogOrder).Find(&items).Error
	return items, err
}

func (r *repo) ListFabrics(ctx context.Context, db *gorm.DB, shop string) ([]catalogdomain.Fabric, error) {
	var items []catalogdomain.Fabric
	err := db.WithContext(ctx).Where("shop = ?", shop).Order(catalogOrder).Find(&items).Error
	return items, err
}

func (r *repo) ListAddOns(ctx context.Context, db *gorm.DB, shop string) ([]catalogdomain.AddOnOption, error) {
	var items []catalogdomain.AddOnOption
	err := db.WithContext(ctx).Where("shop = ?", shop).Order(catalogOrder).Find(&items).Error
	return items, err
}

func (r *repo) FindProfile(ctx context.Context, db *gorm.DB, shop string, id snowflake.ID) (*catalogdomain.Profile, error) {
	var profile catalogdomain.Profile
	err := db.WithContext(ctx).
		Preload("Pieces", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC, id ASC")
		}).
		Where("shop = ? AND id = ?", shop, id).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repo) FindSettings(ctx context.Context, db *gorm.DB, shop string) (*catalogdomain.CalculatorSettings, error) {
	var settings catalogdomain.CalculatorSettings
	err := db.WithContext(ctx).Where("shop = ?", shop).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *repo) ListPriceTiers(ctx context.Context, db *gorm.DB, shop string) ([]catalogdomain.PriceTier, error) {
	var items []catalogdomain.PriceTier
	err := db.WithContext(ctx).Where("shop = ?", shop).Order("min_price ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, shop string, id snowflake.ID, entity any) (*time.Time, error) {
	var created *time.Time
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = saveOwned(tx, shop, id, entity)
		return err
	})
	return created, err
}

type ownedRow struct {
	Shop      string
	CreatedAt time.Time
}

// saveOwned inserts entity when id is unused and otherwise updates it in
// place, keeping the stored creation time. An id owned by another shop is
// ErrNotFound. The stored creation time is returned on update.
func saveOwned(tx *gorm.DB, shop string, id snowflake.ID, entity any) (*time.Time, error) {
	var stored ownedRow
	err := tx.Model(entity).Select("shop", "created_at").Where("id = ?", id).Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tx.Omit(clause.Associations).Create(entity).Error
	}
	if err != nil {
		return nil, err
	}
	if stored.Shop != shop {
		return nil, catalogdomain.ErrNotFound
	}

	res := tx.Select("*").Omit(clause.Associations, "created_at").Where("shop = ?", shop).Save(entity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, catalogdomain.ErrNotFound
	}
	return &stored.CreatedAt, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, entity any, shop string, id snowflake.ID) (bool, error) {
	var deleted bool
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("shop = ? AND id = ?", shop, id).Delete(entity)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		if _, ok := entity.(*catalogdomain.Profile); ok && deleted {
			return tx.Where("profile_id = ?", id).Delete(&catalogdomain.ProfilePiece{}).Error
		}
		return nil
	})
	return deleted, err
}

func (r *repo) SaveProfile(ctx context.Context, db *gorm.DB, profile *catalogdomain.Profile) (*time.Time, error) {
	var created *time.Time
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if created, err = saveOwned(tx, profile.Shop, profile.ID, profile); err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", profile.ID).Delete(&catalogdomain.ProfilePiece{}).Error; err != nil {
			return err
		}
		if len(profile.Pieces) == 0 {
			return nil
		}
		return tx.Create(&profile.Pieces).Error
	})
	return created, err
}

func (r *repo) ReplacePriceTiers(ctx context.Context, db *gorm.DB, shop string, tiers []catalogdomain.PriceTier) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop = ?", shop).Delete(&catalogdomain.PriceTier{}).Error; err != nil {
			return err
		}
		if len(tiers) == 0 {
			return nil
		}
		return tx.Create(&tiers).Error
	})
}

func (r *repo) SaveSettings(ctx context.Context, db *gorm.DB, settings *catalogdomain.CalculatorSettings) error {
	return db.WithContext(ctx).Save(settings).Error
}
