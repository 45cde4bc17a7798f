package billing

import (
	"github.com/fakturalabs/faktura/internal/billing/generator"
	"github.com/fakturalabs/faktura/internal/billing/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("billing",
	fx.Provide(repository.Provide),
	fx.Provide(generator.New),
)
