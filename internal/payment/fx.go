package payment

import (
	"github.com/smallbiznis/voltshop/internal/payment/adapters/stripe"
	"github.com/smallbiznis/voltshop/internal/payment/repository"
	paymentservice "github.com/smallbiznis/voltshop/internal/payment/service"
	"go.uber.org/fx"
)

// Module provides the Stripe gateway and webhook ingestion. Only the
// checkout.session.completed event is acted on.
var Module = fx.Module("payment",
	fx.Provide(repository.Provide),
	fx.Provide(stripe.New),
	fx.Provide(paymentservice.NewService),
)
