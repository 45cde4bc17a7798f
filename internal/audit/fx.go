package audit

import (
	"github.com/fakturalabs/faktura/internal/audit/repository"
	"github.com/fakturalabs/faktura/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
