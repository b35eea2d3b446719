package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	NotificationTransportDirect = "direct"
	NotificationTransportPubSub = "pubsub"
)

const (
	EnvAppEnv                   = "SQUADLOG_APP_ENV"
	EnvPort                     = "SQUADLOG_APP_PORT"
	EnvDBDSN                    = "SQUADLOG_DB_DSN"
	EnvDBHost                   = "SQUADLOG_DB_HOST"
	EnvDBUser                   = "SQUADLOG_DB_USER"
	EnvDBName                   = "SQUADLOG_DB_NAME"
	EnvUseSQLite                = "SQUADLOG_USE_SQLITE"
	EnvRedisURL                 = "SQUADLOG_REDIS_URL"
	EnvJWTSecret                = "SQUADLOG_JWT_SECRET"
	EnvJWTIssuer                = "SQUADLOG_JWT_ISSUER"
	EnvGroupsMaxApproved        = "SQUADLOG_GROUPS_MAX_APPROVED"
	EnvGroupsRecheckOnApprove   = "SQUADLOG_GROUPS_RECHECK_LIMIT_ON_APPROVE"
	EnvGroupsInviteCodeAttempts = "SQUADLOG_GROUPS_INVITE_CODE_MAX_ATTEMPTS"
	EnvNotificationTransport    = "SQUADLOG_NOTIFICATIONS_TRANSPORT"
	EnvGCPProjectID             = "SQUADLOG_GCP_PROJECT_ID"
)

var partialDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
