package campaign

import (
	"github.com/smallbiznis/voltshop/internal/campaign/service"
	"go.uber.org/fx"
)

var Module = fx.Module("campaign.service",
	fx.Provide(service.New),
)
