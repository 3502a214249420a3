package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig popisuje konfiguraci služby. Načítá se jednou při startu
// a předává se konstruktorům, žádné čtení prostředí uvnitř logiky.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	Timezone    string `envconfig:"TZ" default:"Europe/Prague"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	Slack struct {
		BotToken      string `envconfig:"SLACK_BOT_TOKEN"`
		SigningSecret string `envconfig:"SLACK_SIGNING_SECRET"`
		ClientID      string `envconfig:"SLACK_CLIENT_ID"`
		ClientSecret  string `envconfig:"SLACK_CLIENT_SECRET"`
	} `envconfig:""`

	BaseURL        string `envconfig:"BASE_URL"`
	AdminSecretKey string `envconfig:"ADMIN_SECRET_KEY"`

	LunchDrive struct {
		URL          string        `envconfig:"LUNCHDRIVE_URL" default:"https://lunchdrive.cz/cs/d/3792"`
		TargetPrice  int           `envconfig:"TARGET_PRICE" default:"125"`
		FetchTimeout time.Duration `envconfig:"LUNCHDRIVE_TIMEOUT" default:"15s"`
		NameColumn   int           `envconfig:"MENU_NAME_COLUMN" default:"1"`
		PriceColumn  int           `envconfig:"MENU_PRICE_COLUMN" default:"2"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	Reminders struct {
		WindowStartHour int `envconfig:"REMINDER_WINDOW_START" default:"9"`
		WindowEndHour   int `envconfig:"REMINDER_WINDOW_END" default:"17"`
		MiddayHour      int `envconfig:"REMINDER_MIDDAY_HOUR" default:"11"`
	} `envconfig:""`
}

// Load načítá konfiguraci z prostředí.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("nepodařilo se načíst konfiguraci: %v", err)
	}
	return cfg
}
