package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/bloodbowl-league/internal/platform/logging"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	SinkLog       = "log"
	SinkWebhook   = "webhook"
	SinkJetStream = "jetstream"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogLevel       logging.Level

	StorageDriver           string
	StorageSeedDemo         bool
	DBURL                   string
	DBDisablePreparedBinary bool
	CacheEnabled            bool
	CacheTTL                time.Duration

	CORSAllowedOrigins []string

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	ProgressionRestoreSuspensions bool

	NotifySink               string
	NotifyWorkers            int
	NotifyTimeout            time.Duration
	NotifyMaxAttempts        int
	NotifyQueueSize          int
	NotifyRedeliverInterval  time.Duration
	NotifyWebhookURL         string
	NotifyWebhookToken       string
	NotifyCircuitEnabled     bool
	NotifyCircuitFailures    int
	NotifyCircuitOpenTimeout time.Duration
	NotifyCircuitHalfOpenMax int

	NATSURL           string
	NATSStream        string
	NATSSubjectPrefix string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logLevel, ok := logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))
	if !ok {
		return Config{}, fmt.Errorf("invalid APP_LOG_LEVEL %q: valid values are debug, info, warn, error", os.Getenv("APP_LOG_LEVEL"))
	}

	readTimeout, err := getEnvAsDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := getEnvAsDuration("APP_WRITE_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}

	storageDriver := strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", StorageMemory)))
	if storageDriver != StorageMemory && storageDriver != StoragePostgres {
		return Config{}, fmt.Errorf("invalid STORAGE_DRIVER %q: valid values are %s, %s", storageDriver, StorageMemory, StoragePostgres)
	}
	seedDemo, err := getEnvAsBool("STORAGE_SEED_DEMO", strconv.FormatBool(appEnv == EnvDev))
	if err != nil {
		return Config{}, err
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storageDriver == StoragePostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORAGE_DRIVER=postgres")
	}
	dbDisablePreparedBinary, err := getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", "true")
	if err != nil {
		return Config{}, err
	}

	cacheEnabled, err := getEnvAsBool("CACHE_ENABLED", "true")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := getEnvAsDuration("CACHE_TTL", "60s")
	if err != nil {
		return Config{}, err
	}

	corsAllowedOrigins := splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	if len(corsAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	pprofEnabled, err := getEnvAsBool("PPROF_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := getEnvAsBool("UPTRACE_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := getEnvAsBool("PYROSCOPE_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	restoreSuspensions, err := getEnvAsBool("PROGRESSION_RESTORE_SUSPENSIONS", "false")
	if err != nil {
		return Config{}, err
	}

	notify, err := loadNotify()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                        appEnv,
		ServiceName:                   getEnv("APP_SERVICE_NAME", "bloodbowl-league-api"),
		ServiceVersion:                getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                      getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                   readTimeout,
		WriteTimeout:                  writeTimeout,
		LogLevel:                      logLevel,
		StorageDriver:                 storageDriver,
		StorageSeedDemo:               seedDemo,
		DBURL:                         dbURL,
		DBDisablePreparedBinary:       dbDisablePreparedBinary,
		CacheEnabled:                  cacheEnabled,
		CacheTTL:                      cacheTTL,
		CORSAllowedOrigins:            corsAllowedOrigins,
		PprofEnabled:                  pprofEnabled,
		PprofAddr:                     pprofAddr,
		UptraceEnabled:                uptraceEnabled,
		UptraceDSN:                    uptraceDSN,
		PyroscopeEnabled:              pyroscopeEnabled,
		PyroscopeServerAddress:        pyroscopeServerAddress,
		PyroscopeAuthToken:            strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:        strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:    strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:           pyroscopeUploadRate,
		ProgressionRestoreSuspensions: restoreSuspensions,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	notify.apply(&cfg)

	return cfg, nil
}

type notifySettings struct {
	sink               string
	workers            int
	timeout            time.Duration
	maxAttempts        int
	queueSize          int
	redeliverInterval  time.Duration
	webhookURL         string
	webhookToken       string
	circuitEnabled     bool
	circuitFailures    int
	circuitOpenTimeout time.Duration
	circuitHalfOpenMax int
	natsURL            string
	natsStream         string
	natsSubjectPrefix  string
}

func loadNotify() (notifySettings, error) {
	var (
		out notifySettings
		err error
	)

	out.sink = strings.ToLower(strings.TrimSpace(getEnv("NOTIFY_SINK", SinkLog)))
	switch out.sink {
	case SinkLog, SinkWebhook, SinkJetStream:
	default:
		return notifySettings{}, fmt.Errorf("invalid NOTIFY_SINK %q: valid values are %s, %s, %s", out.sink, SinkLog, SinkWebhook, SinkJetStream)
	}

	if out.workers, err = getEnvAsInt("NOTIFY_WORKERS", 4); err != nil {
		return notifySettings{}, fmt.Errorf("parse NOTIFY_WORKERS: %w", err)
	}
	if out.workers < 1 {
		return notifySettings{}, fmt.Errorf("NOTIFY_WORKERS must be >= 1")
	}
	if out.timeout, err = getEnvAsDuration("NOTIFY_TIMEOUT", "5s"); err != nil {
		return notifySettings{}, err
	}
	if out.maxAttempts, err = getEnvAsInt("NOTIFY_MAX_ATTEMPTS", 5); err != nil {
		return notifySettings{}, fmt.Errorf("parse NOTIFY_MAX_ATTEMPTS: %w", err)
	}
	if out.maxAttempts < 1 {
		return notifySettings{}, fmt.Errorf("NOTIFY_MAX_ATTEMPTS must be >= 1")
	}
	if out.queueSize, err = getEnvAsInt("NOTIFY_QUEUE_SIZE", 1024); err != nil {
		return notifySettings{}, fmt.Errorf("parse NOTIFY_QUEUE_SIZE: %w", err)
	}
	if out.queueSize < 1 {
		return notifySettings{}, fmt.Errorf("NOTIFY_QUEUE_SIZE must be >= 1")
	}
	if out.redeliverInterval, err = getEnvAsDuration("NOTIFY_REDELIVER_INTERVAL", "30s"); err != nil {
		return notifySettings{}, err
	}

	out.webhookURL = strings.TrimSpace(getEnv("NOTIFY_WEBHOOK_URL", ""))
	out.webhookToken = strings.TrimSpace(getEnv("NOTIFY_WEBHOOK_TOKEN", ""))
	if out.sink == SinkWebhook && out.webhookURL == "" {
		return notifySettings{}, fmt.Errorf("NOTIFY_WEBHOOK_URL is required when NOTIFY_SINK=webhook")
	}
	if out.circuitEnabled, err = getEnvAsBool("NOTIFY_CIRCUIT_ENABLED", "true"); err != nil {
		return notifySettings{}, err
	}
	if out.circuitFailures, err = getEnvAsInt("NOTIFY_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return notifySettings{}, fmt.Errorf("parse NOTIFY_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if out.circuitFailures < 1 {
		return notifySettings{}, fmt.Errorf("NOTIFY_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if out.circuitOpenTimeout, err = getEnvAsDuration("NOTIFY_CIRCUIT_OPEN_TIMEOUT", "15s"); err != nil {
		return notifySettings{}, err
	}
	if out.circuitHalfOpenMax, err = getEnvAsInt("NOTIFY_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return notifySettings{}, fmt.Errorf("parse NOTIFY_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if out.circuitHalfOpenMax < 1 {
		return notifySettings{}, fmt.Errorf("NOTIFY_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	out.natsURL = strings.TrimSpace(getEnv("NATS_URL", ""))
	if out.sink == SinkJetStream && out.natsURL == "" {
		return notifySettings{}, fmt.Errorf("NATS_URL is required when NOTIFY_SINK=jetstream")
	}
	out.natsStream = strings.TrimSpace(getEnv("NATS_STREAM", "LEAGUE_NOTIFICATIONS"))
	out.natsSubjectPrefix = strings.TrimSpace(getEnv("NATS_SUBJECT_PREFIX", "league.notifications"))

	return out, nil
}

func (n notifySettings) apply(cfg *Config) {
	cfg.NotifySink = n.sink
	cfg.NotifyWorkers = n.workers
	cfg.NotifyTimeout = n.timeout
	cfg.NotifyMaxAttempts = n.maxAttempts
	cfg.NotifyQueueSize = n.queueSize
	cfg.NotifyRedeliverInterval = n.redeliverInterval
	cfg.NotifyWebhookURL = n.webhookURL
	cfg.NotifyWebhookToken = n.webhookToken
	cfg.NotifyCircuitEnabled = n.circuitEnabled
	cfg.NotifyCircuitFailures = n.circuitFailures
	cfg.NotifyCircuitOpenTimeout = n.circuitOpenTimeout
	cfg.NotifyCircuitHalfOpenMax = n.circuitHalfOpenMax
	cfg.NATSURL = n.natsURL
	cfg.NATSStream = n.natsStream
	cfg.NATSSubjectPrefix = n.natsSubjectPrefix
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key, fallback string) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, fallback))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

// getEnvAsDuration parses a positive duration.
func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
