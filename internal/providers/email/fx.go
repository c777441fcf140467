package email

import (
	"strings"

	"github.com/smallbiznis/voltshop/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	from := Sender(cfg.Email.FromName, cfg.Email.FromAddress)
	log = log.Named("providers.email")

	switch strings.ToLower(cfg.Email.Provider) {
	case "resend":
		if cfg.Email.ResendAPIKey == "" {
			log.Warn("resend selected without RESEND_API_KEY, emails will not be delivered")
			return &NoOpProvider{}
		}
		return NewResend(ResendConfig{
			APIKey:  cfg.Email.ResendAPIKey,
			From:    from,
			ReplyTo: cfg.Email.ReplyTo,
		})
	case "smtp":
		return NewSMTP(SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			From:     from,
			ReplyTo:  cfg.Email.ReplyTo,
		})
	default:
		log.Info("email delivery disabled", zap.String("provider", cfg.Email.Provider))
		return &NoOpProvider{}
	}
}
