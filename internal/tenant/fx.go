package tenant

import (
	"github.com/fakturalabs/faktura/internal/tenant/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.repository",
	fx.Provide(repository.Provide),
)
