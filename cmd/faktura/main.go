package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/fakturalabs/faktura/internal/access"
	"github.com/fakturalabs/faktura/internal/audit"
	"github.com/fakturalabs/faktura/internal/billing"
	"github.com/fakturalabs/faktura/internal/clock"
	"github.com/fakturalabs/faktura/internal/config"
	"github.com/fakturalabs/faktura/internal/events"
	"github.com/fakturalabs/faktura/internal/identity"
	"github.com/fakturalabs/faktura/internal/membership"
	"github.com/fakturalabs/faktura/internal/migration"
	"github.com/fakturalabs/faktura/internal/observability"
	"github.com/fakturalabs/faktura/internal/scheduler"
	"github.com/fakturalabs/faktura/internal/seed"
	"github.com/fakturalabs/faktura/internal/server"
	"github.com/fakturalabs/faktura/internal/tenant"
	"github.com/fakturalabs/faktura/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,

		tenant.Module,
		membership.Module,
		audit.Module,
		access.Module,
		identity.Module,
		events.Module,
		billing.Module,
		scheduler.Module,

		fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger, node *snowflake.Node) error {
			if err := migration.Run(conn, log); err != nil {
				return err
			}
			return seed.Run(cfg, conn, node)
		}),

		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
