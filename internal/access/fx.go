package access

import (
	"github.com/bwmarrin/snowflake"
	"github.com/fakturalabs/faktura/internal/cache"
	"go.uber.org/fx"
)

var Module = fx.Module("access.service",
	fx.Provide(cache.NewTTLCache[snowflake.ID, snowflake.ID]),
	fx.Provide(NewService),
)
