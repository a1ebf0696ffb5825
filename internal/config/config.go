package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/GrupoSemah/salidasform/internal/constants"
	"github.com/GrupoSemah/salidasform/internal/utils"
)

const (
	AppName             = "salidas-form-service"
	LDConnectionTimeout = 5 * time.Second
)

type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string

	SendgridAPIKey     string
	SendgridTemplateID string
	FromEmail          string

	// CRM tracker base URL; empty disables the best-effort post.
	CRMBaseURL string

	// Feature-flag snapshots
	LDFlag_DeliveryMode        string
	LDFlag_ValidateEmailWithMX bool

	SubmitCooldown           time.Duration
	GlobalSubmitLimitPerHour int
	DispatchTimeout          time.Duration

	ldClient *ld.LDClient
}

// LoadConfig reproduces the ordering / logging style of the other intake
// services: runtime env first, then secrets, then feature flags.
func LoadConfig() *Config {
	//----------------------------------------------------------------------
	// 1) Runtime environment vars (.env supported for local development)
	//----------------------------------------------------------------------
	if err := godotenv.Load(); err != nil {
		utils.Logger.Debug("No .env file found, using system environment variables")
	}

	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		utils.Logger.Fatal("APP_URL env var is missing")
	}

	//----------------------------------------------------------------------
	// 2) SendGrid credentials
	//----------------------------------------------------------------------
	sgAPI := os.Getenv("SENDGRID_API_KEY")
	if sgAPI == "" {
		utils.Logger.Fatal("SENDGRID_API_KEY env var is missing")
	}
	sgTemplate := os.Getenv("SENDGRID_TEMPLATE_ID")
	if sgTemplate == "" {
		utils.Logger.Fatal("SENDGRID_TEMPLATE_ID env var is missing")
	}
	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if fromEmail == "" {
		utils.Logger.Fatal("SENDGRID_FROM_EMAIL env var is missing")
	}

	crmBaseURL := os.Getenv("CRM_API_URL")
	if crmBaseURL == "" {
		utils.Logger.Info("CRM_API_URL not set; CRM tracking post disabled")
	}

	//----------------------------------------------------------------------
	// 3) Flag defaults from env, optionally overridden by LaunchDarkly
	//----------------------------------------------------------------------
	deliveryMode := os.Getenv("DELIVERY_MODE")
	if deliveryMode == "" {
		deliveryMode = constants.DeliveryModeInline
	}
	if deliveryMode != constants.DeliveryModeInline && deliveryMode != constants.DeliveryModeAttachment {
		utils.Logger.Fatalf("DELIVERY_MODE must be %q or %q, got %q",
			constants.DeliveryModeInline, constants.DeliveryModeAttachment, deliveryMode)
	}
	validateMX, _ := strconv.ParseBool(os.Getenv("VALIDATE_EMAIL_WITH_MX"))

	cfg := &Config{
		OrganizationName:           constants.OrganizationName,
		AppName:                    AppName,
		AppPort:                    appPort,
		AppUrl:                     appURL,
		SendgridAPIKey:             sgAPI,
		SendgridTemplateID:         sgTemplate,
		FromEmail:                  fromEmail,
		CRMBaseURL:                 crmBaseURL,
		LDFlag_DeliveryMode:        deliveryMode,
		LDFlag_ValidateEmailWithMX: validateMX,
		SubmitCooldown:             constants.DefaultSubmitCooldown,
		GlobalSubmitLimitPerHour:   constants.DefaultGlobalSubmitLimitPerHour,
		DispatchTimeout:            constants.DefaultDispatchTimeout,
	}

	//----------------------------------------------------------------------
	// 4) LaunchDarkly client & flags (optional for this service)
	//----------------------------------------------------------------------
	if ldSDK := os.Getenv("LD_SDK_KEY"); ldSDK != "" {
		ldClient, err := ld.MakeClient(ldSDK, LDConnectionTimeout)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
		}
		if !ldClient.Initialized() {
			ldClient.Close()
			utils.Logger.Fatal("LaunchDarkly client failed to initialize")
		}
		cfg.ldClient = ldClient

		ctx := ldcontext.NewWithKind("service", AppName)

		if mode, err := ldClient.StringVariation("moveout_delivery_mode", ctx, deliveryMode); err == nil && mode != "" {
			cfg.LDFlag_DeliveryMode = mode
		}
		utils.Logger.Debugf("moveout_delivery_mode flag: %s", cfg.LDFlag_DeliveryMode)

		if v, err := ldClient.BoolVariation("validate_email_with_mx", ctx, validateMX); err == nil {
			cfg.LDFlag_ValidateEmailWithMX = v
		}
		utils.Logger.Debugf("validate_email_with_mx flag: %t", cfg.LDFlag_ValidateEmailWithMX)

		if from, err := ldClient.StringVariation("sendgrid_from_email", ctx, fromEmail); err == nil && from != "" {
			cfg.FromEmail = from
		}
	}

	utils.Logger.Infof("Loaded config for %s", AppName)
	return cfg
}

func (c *Config) Close() {
	if c.ldClient != nil {
		c.ldClient.Close()
	}
}
