package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config is built once at startup and handed to every component; nothing
// reads the environment after this.
type Config struct {
	Port string `mapstructure:"PORT"`

	DBURL string `mapstructure:"DB_URL"`

	JWTSecret      string `mapstructure:"JWT_SECRET"`
	JWTExpiryHours int    `mapstructure:"JWT_EXPIRY_HOURS"`

	SMTPServer    string `mapstructure:"SMTP_SERVER"`
	SMTPPort      int    `mapstructure:"SMTP_PORT"`
	EmailAddress  string `mapstructure:"EMAIL_ADDRESS"`
	EmailPassword string `mapstructure:"EMAIL_PASSWORD"`

	TwilioAccountSID  string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `mapstructure:"TWILIO_PHONE_NUMBER"`

	// CountryCode replaces a leading "0" when normalizing local phone numbers.
	CountryCode string `mapstructure:"COUNTRY_CODE"`

	ReminderDaysRaw string `mapstructure:"REMINDER_DAYS"`
	ReminderCron    string `mapstructure:"REMINDER_CRON"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("COUNTRY_CODE", "+212")
	v.SetDefault("REMINDER_DAYS", "20,10,5,1")
	v.SetDefault("REMINDER_CRON", "0 8 * * *")

	for _, key := range []string{
		"PORT", "DB_URL", "JWT_SECRET", "JWT_EXPIRY_HOURS",
		"SMTP_SERVER", "SMTP_PORT", "EMAIL_ADDRESS", "EMAIL_PASSWORD",
		"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_PHONE_NUMBER",
		"COUNTRY_CODE", "REMINDER_DAYS", "REMINDER_CRON",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Missing credentials are a startup failure, never discovered mid-cycle.
func (c *Config) validate() error {
	required := map[string]string{
		"DB_URL":              c.DBURL,
		"JWT_SECRET":          c.JWTSecret,
		"SMTP_SERVER":         c.SMTPServer,
		"EMAIL_ADDRESS":       c.EmailAddress,
		"EMAIL_PASSWORD":      c.EmailPassword,
		"TWILIO_ACCOUNT_SID":  c.TwilioAccountSID,
		"TWILIO_AUTH_TOKEN":   c.TwilioAuthToken,
		"TWILIO_PHONE_NUMBER": c.TwilioPhoneNumber,
	}
	var missing []string
	for key, value := range required {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if !strings.HasPrefix(c.CountryCode, "+") {
		return fmt.Errorf("COUNTRY_CODE must start with '+', got %q", c.CountryCode)
	}
	return nil
}

// ReminderDays parses REMINDER_DAYS ("20,10,5,1") into lead times.
func (c *Config) ReminderDays() ([]int, error) {
	parts := strings.Split(c.ReminderDaysRaw, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid lead time %q in REMINDER_DAYS", p)
		}
		days = append(days, n)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("REMINDER_DAYS is empty")
	}
	return days, nil
}
