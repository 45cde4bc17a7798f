package identity

import "go.uber.org/fx"

var Module = fx.Module("identity.resolver",
	fx.Provide(NewResolver),
)
