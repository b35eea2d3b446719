package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Groups        GroupsConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Notifications NotificationsConfig
	Cron          CronConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Groups.MaxApprovedGroups <= 0 {
		return fmt.Errorf("%s must be positive", EnvGroupsMaxApproved)
	}
	if c.Groups.InviteCodeMaxAttempts <= 0 {
		return fmt.Errorf("%s must be positive", EnvGroupsInviteCodeAttempts)
	}
	switch c.Notifications.Transport {
	case NotificationTransportDirect:
	case NotificationTransportPubSub:
		if c.GCP.ProjectID == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvGCPProjectID, EnvNotificationTransport, NotificationTransportPubSub)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvNotificationTransport, c.Notifications.Transport)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"SQUADLOG_APP_ENV" required:"true"`
	Port         string `envconfig:"SQUADLOG_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SQUADLOG_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SQUADLOG_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"SQUADLOG_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SQUADLOG_DB_DSN"`
	Driver string `envconfig:"SQUADLOG_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SQUADLOG_DB_HOST"`
	Port     int    `envconfig:"SQUADLOG_DB_PORT" default:"5432"`
	User     string `envconfig:"SQUADLOG_DB_USER"`
	Password string `envconfig:"SQUADLOG_DB_PASSWORD"`
	Name     string `envconfig:"SQUADLOG_DB_NAME"`
	SSLMode  string `envconfig:"SQUADLOG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SQUADLOG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SQUADLOG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SQUADLOG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SQUADLOG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SQUADLOG_REDIS_URL"`
	Address      string        `envconfig:"SQUADLOG_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"SQUADLOG_REDIS_PASSWORD"`
	DB           int           `envconfig:"SQUADLOG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SQUADLOG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SQUADLOG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SQUADLOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SQUADLOG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SQUADLOG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SQUADLOG_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SQUADLOG_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SQUADLOG_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// GroupsConfig holds the membership rules that are tunable per deployment.
type GroupsConfig struct {
	MaxApprovedGroups int `envconfig:"SQUADLOG_GROUPS_MAX_APPROVED" default:"2"`
	// RecheckLimitOnApprove re-validates the approved-group cap for the
	// requester when a leader approves a pending request.
	RecheckLimitOnApprove bool `envconfig:"SQUADLOG_GROUPS_RECHECK_LIMIT_ON_APPROVE" default:"false"`
	InviteCodeMaxAttempts int  `envconfig:"SQUADLOG_GROUPS_INVITE_CODE_MAX_ATTEMPTS" default:"16"`
}

type RateLimitConfig struct {
	JoinWindow time.Duration `envconfig:"SQUADLOG_RATE_LIMIT_JOIN_WINDOW" default:"1m"`
	JoinLimit  int           `envconfig:"SQUADLOG_RATE_LIMIT_JOIN_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SQUADLOG_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SQUADLOG_AUTO_MIGRATE" default:"false"`
}

type NotificationsConfig struct {
	Transport     string `envconfig:"SQUADLOG_NOTIFICATIONS_TRANSPORT" default:"direct"`
	RetentionDays int    `envconfig:"SQUADLOG_NOTIFICATIONS_RETENTION_DAYS" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SQUADLOG_CRON_INTERVAL" default:"24h"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"SQUADLOG_EVENTING_IDEMPOTENCY_TTL" default:"168h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SQUADLOG_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SQUADLOG_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SQUADLOG_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"SQUADLOG_PUBSUB_NOTIFICATION_TOPIC" default:"sq-notification-requests"`
	NotificationSubscription string `envconfig:"SQUADLOG_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"sq-notification-requests-worker"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, DBDriverSQLite) {
		db.DSN = "file:squadlog.db?cache=shared&_foreign_keys=on"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range partialDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
