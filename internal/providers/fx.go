package providers

import (
	"github.com/smallbiznis/voltshop/internal/providers/email"
	"github.com/smallbiznis/voltshop/internal/providers/pdf"
	"go.uber.org/fx"
)

// Module provides outbound delivery: the configured email provider and the
// receipt PDF renderer used for confirmation attachments.
var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
