package config

import "time"

// Telemetry holds OpenTelemetry settings.
type Telemetry struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRatio  float64
}

// Storage holds the optional backing stores.
type Storage struct {
	// DatabaseEnabled selects PostgreSQL over in-memory repositories.
	DatabaseEnabled bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// LatestTTL expires the per-zone latest IoT push in Redis.
	LatestTTL time.Duration

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
}

// Providers holds external air quality provider credentials.
type Providers struct {
	AQICNToken     string
	OpenWeatherKey string
	Cities         []string
}

// PubSub holds the worker's trigger subscription.
type PubSub struct {
	ProjectID    string
	Subscription string
}

// Enabled reports whether a subscription is configured.
func (p PubSub) Enabled() bool {
	return p.ProjectID != "" && p.Subscription != ""
}

// App is the configuration shared by the binaries.
type App struct {
	Port        string
	Environment string
	RequireTLS  bool

	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	AutoCollect     bool
	CollectInterval time.Duration

	Telemetry Telemetry
	Storage   Storage
	Providers Providers
	PubSub    PubSub
}

// DefaultJWTSigningKey is used when JWT_SIGNING_KEY is unset.
const DefaultJWTSigningKey = "local-dev-signing-key-change-in-production"

// FromEnv reads the App configuration from the environment.
func FromEnv() App {
	return App{
		Port:        String("APP_PORT", "8080"),
		Environment: String("APP_ENV", "development"),
		RequireTLS:  Bool("REQUIRE_TLS", false),

		JWTSigningKey: String("JWT_SIGNING_KEY", DefaultJWTSigningKey),
		JWTIssuer:     String("JWT_ISSUER", "smartcity-api"),
		JWTAudience:   String("JWT_AUDIENCE", "smartcity-dashboard"),

		AutoCollect:     Bool("ENABLE_AUTO_COLLECT", true),
		CollectInterval: Duration("COLLECT_INTERVAL", 15*time.Minute),

		Telemetry: Telemetry{
			Enabled:      Bool("OTEL_ENABLED", false),
			OTLPEndpoint: String("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRatio:  Float("OTEL_SAMPLE_RATIO", 1),
		},
		Storage: Storage{
			DatabaseEnabled: Bool("DATABASE_ENABLED", false),
			RedisAddr:       String("REDIS_ADDR", ""),
			RedisPassword:   String("REDIS_PASSWORD", ""),
			RedisDB:         Int("REDIS_DB", 0),
			LatestTTL:       Duration("IOT_LATEST_TTL", 24*time.Hour),
			S3Endpoint:      String("S3_ENDPOINT", ""),
			S3AccessKey:     String("S3_ACCESS_KEY", ""),
			S3SecretKey:     String("S3_SECRET_KEY", ""),
			S3Bucket:        String("S3_BUCKET", "smartcity-raw"),
			S3UseSSL:        Bool("S3_USE_SSL", false),
		},
		Providers: Providers{
			AQICNToken:     String("AQICN_TOKEN", ""),
			OpenWeatherKey: String("OPENWEATHER_KEY", ""),
			Cities:         List("CITY", []string{"Marseille"}),
		},
		PubSub: PubSub{
			ProjectID:    String("PUBSUB_PROJECT_ID", ""),
			Subscription: String("PUBSUB_SUBSCRIPTION", ""),
		},
	}
}

// UsingDefaultJWTKey reports whether the insecure development key is in use.
func (a App) UsingDefaultJWTKey() bool {
	return a.JWTSigningKey == DefaultJWTSigningKey
}
