package config

import (
	"errors"
	"log"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// StoreSettings are operator-tunable storefront knobs that may change without a restart.
type StoreSettings struct {
	ShippingKeywords      []string          `mapstructure:"shippingKeywords"`
	ShippingCountries     []string          `mapstructure:"shippingCountries"`
	CampaignSendDelay     time.Duration     `mapstructure:"campaignSendDelay"`
	CampaignErrorSample   int               `mapstructure:"campaignErrorSample"`
	CarrierTrackingURLs   map[string]string `mapstructure:"carrierTrackingUrls"`
	ConfirmationSweepSize int               `mapstructure:"confirmationSweepSize"`
}

func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		ShippingKeywords:    []string{"shipping", "delivery"},
		ShippingCountries:   []string{"US", "CA"},
		CampaignSendDelay:   500 * time.Millisecond,
		CampaignErrorSample: 10,
		CarrierTrackingURLs: map[string]string{
			"usps":  "https://tools.usps.com/go/TrackConfirmAction?tLabels=%s",
			"ups":   "https://www.ups.com/track?tracknum=%s",
			"fedex": "https://www.fedex.com/fedextrack/?trknbr=%s",
			"dhl":   "https://www.dhl.com/us-en/home/tracking.html?tracking-id=%s",
		},
		ConfirmationSweepSize: 100,
	}
}

// TrackingURL returns the carrier tracking link for a tracking number, or "" when the carrier is unknown.
func (s StoreSettings) TrackingURL(carrier, trackingNumber string) string {
	tmpl, ok := s.CarrierTrackingURLs[strings.ToLower(strings.TrimSpace(carrier))]
	if !ok || strings.TrimSpace(trackingNumber) == "" {
		return ""
	}
	return strings.Replace(tmpl, "%s", url.QueryEscape(strings.TrimSpace(trackingNumber)), 1)
}

type StoreSettingsHolder struct {
	current atomic.Value // holds StoreSettings
}

// NewStaticStoreSettingsHolder returns a holder that never reloads.
func NewStaticStoreSettingsHolder(settings StoreSettings) *StoreSettingsHolder {
	holder := &StoreSettingsHolder{}
	holder.current.Store(settings)
	return holder
}

func NewStoreSettingsHolder() (*StoreSettingsHolder, error) {
	v := viper.New()

	v.SetConfigName("store")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/voltshop/config")
	v.AddConfigPath("/etc/voltshop")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VOLTSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultStoreSettings()
	v.SetDefault("store.shippingKeywords", defaults.ShippingKeywords)
	v.SetDefault("store.shippingCountries", defaults.ShippingCountries)
	v.SetDefault("store.campaignSendDelay", defaults.CampaignSendDelay)
	v.SetDefault("store.campaignErrorSample", defaults.CampaignErrorSample)
	v.SetDefault("store.carrierTrackingUrls", defaults.CarrierTrackingURLs)
	v.SetDefault("store.confirmationSweepSize", defaults.ConfirmationSweepSize)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg StoreSettings
	if err := v.UnmarshalKey("store", &cfg); err != nil {
		return nil, err
	}
	if err := validateStoreSettings(cfg); err != nil {
		return nil, err
	}

	holder := &StoreSettingsHolder{}
	holder.current.Store(cfg)

	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated StoreSettings
		if err := v.UnmarshalKey("store", &updated); err != nil {
			log.Printf("[store-config] reload failed: %v", err)
			return
		}
		if err := validateStoreSettings(updated); err != nil {
			log.Printf("[store-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[store-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *StoreSettingsHolder) Get() StoreSettings {
	if h == nil {
		return DefaultStoreSettings()
	}
	value, ok := h.current.Load().(StoreSettings)
	if !ok {
		return DefaultStoreSettings()
	}
	return value
}

func validateStoreSettings(cfg StoreSettings) error {
	if len(cfg.ShippingKeywords) == 0 {
		return errors.New("store.shippingKeywords cannot be empty")
	}
	if len(cfg.ShippingCountries) == 0 {
		return errors.New("store.shippingCountries cannot be empty")
	}
	if cfg.CampaignSendDelay < 0 {
		return errors.New("store.campaignSendDelay cannot be negative")
	}
	if cfg.CampaignErrorSample <= 0 {
		return errors.New("store.campaignErrorSample must be positive")
	}
	return nil
}
