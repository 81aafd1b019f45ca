package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Stripe    Stripe    `envPrefix:"STRIPE_"`
	Auth      Auth      `envPrefix:"AUTH_"`
	Marketing Marketing `envPrefix:"MARKETING_"`
	Admin     Admin     `envPrefix:"ADMIN_"`
}

type Stripe struct {
	SecretKey string `env:"SECRET_KEY"`
	// WebhookSecret is optional. When empty the webhook endpoint parses event
	// bodies unverified; only ever meant for local testing against the CLI.
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Auth struct {
	BaseURL    string `env:"BASE_URL"`
	ServiceKey string `env:"SERVICE_KEY"`
	// PageSize and MaxPages bound the list-users fallback scan.
	PageSize int `env:"PAGE_SIZE" envDefault:"200"`
	MaxPages int `env:"MAX_PAGES" envDefault:"20"`
}

type Marketing struct {
	SyncURL    string `env:"SYNC_URL"`
	ServiceKey string `env:"SERVICE_KEY"`
}

type Admin struct {
	ServiceToken string `env:"SERVICE_TOKEN"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
