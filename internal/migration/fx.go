package migration

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, log *zap.Logger) error {
		if err := Run(context.Background(), conn); err != nil {
			return err
		}
		log.Named("migration").Info("catalog schema ready")
		return nil
	}),
)
