package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cushionly/internal/catalog"
	"github.com/smallbiznis/cushionly/internal/config"
	"github.com/smallbiznis/cushionly/internal/configcache"
	"github.com/smallbiznis/cushionly/internal/migration"
	"github.com/smallbiznis/cushionly/internal/observability"
	"github.com/smallbiznis/cushionly/internal/pricing"
	"github.com/smallbiznis/cushionly/internal/server"
	"github.com/smallbiznis/cushionly/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		configcache.Module,

		// Functional Domains
		catalog.Module,
		pricing.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
