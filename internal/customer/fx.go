package customer

import (
	"github.com/smallbiznis/voltshop/internal/customer/repository"
	"github.com/smallbiznis/voltshop/internal/customer/service"
	"go.uber.org/fx"
)

// Module provides the customer directory. Order ingestion upserts shoppers
// into it and the admin surface reads from it.
var Module = fx.Module("customer",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
