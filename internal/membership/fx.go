package membership

import (
	"github.com/fakturalabs/faktura/internal/membership/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("membership.store",
	fx.Provide(repository.Provide),
)
