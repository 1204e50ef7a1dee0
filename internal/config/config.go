package config

import (
	"fmt"
	"strings"

	"github.com/palletprint/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Operator OperatorConfig `mapstructure:"operator"`
	Site     SiteConfig     `mapstructure:"site"`
	Printing PrintingConfig `mapstructure:"printing"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
//
// dsn_candidates 按声明顺序逐个尝试；认证失败时整个回退链立即停止，
// 避免同一错误口令在多个端点上触发账号锁定。
type DatabaseConfig struct {
	Driver        string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN           string             `mapstructure:"dsn"`    // 默认连接串
	DSNCandidates []string           `mapstructure:"dsn_candidates"`
	Pool          DatabasePoolConfig `mapstructure:"pool"`
}

// Candidates 返回去空后的连接串候选列表
func (c DatabaseConfig) Candidates() []string {
	out := make([]string, 0, len(c.DSNCandidates)+1)
	for _, dsn := range c.DSNCandidates {
		if trimmed := strings.TrimSpace(dsn); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		if trimmed := strings.TrimSpace(c.DSN); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// OperatorConfig 操作员账号配置
type OperatorConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"` // bcrypt
}

// SiteConfig 站点配置
type SiteConfig struct {
	ActiveCode          string   `mapstructure:"active_code"`
	ConfigDir           string   `mapstructure:"config_dir"`
	TemplateDir         string   `mapstructure:"template_dir"`
	LabelTemplate       string   `mapstructure:"label_template"`
	SkuMatrixCandidates []string `mapstructure:"sku_matrix_candidates"`
	LocationMatrixFile  string   `mapstructure:"location_matrix_file"`
	ShipFromName        string   `mapstructure:"ship_from_name"`
	ShipFromAddress     string   `mapstructure:"ship_from_address"`
	ShipFromCityStZip   string   `mapstructure:"ship_from_city_st_zip"`
}

// PrintingConfig 打印配置
type PrintingConfig struct {
	ConnectTimeoutMS int    `mapstructure:"connect_timeout_ms"`
	WriteTimeoutMS   int    `mapstructure:"write_timeout_ms"`
	MaxRetries       int    `mapstructure:"max_retries"`
	RetryDelayMS     int    `mapstructure:"retry_delay_ms"`
	FailurePolicy    string `mapstructure:"failure_policy"` // fail_fast / continue
	CheckpointDir    string `mapstructure:"checkpoint_dir"`
	OutputDir        string `mapstructure:"output_dir"`
	ForcePrinterID   string `mapstructure:"force_printer_id"`
}

// LoginRateLimitConfig 登录限流配置
type LoginRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit LoginRateLimitConfig `mapstructure:"login_rate_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")     // 从当前目录查找
	viper.AddConfigPath("./")    // 备用路径
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "palletprint.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/palletprint.db")
	viper.SetDefault("database.dsn_candidates", []string{})
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "pp")
	viper.SetDefault("queue.enabled", true)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	// 打印任务必须串行执行
	viper.SetDefault("queue.concurrency", 1)
	viper.SetDefault("queue.queues", map[string]int{
		"print": 1,
	})
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expire_hours", 24)
	viper.SetDefault("operator.username", "operator")
	viper.SetDefault("operator.password_hash", "")
	viper.SetDefault("site.active_code", "WH3002")
	viper.SetDefault("site.config_dir", "./config")
	viper.SetDefault("site.template_dir", "./config/templates")
	viper.SetDefault("site.label_template", "pallet-grid-label")
	viper.SetDefault("site.sku_matrix_candidates", []string{
		"./config/customer-sku-matrix.csv",
		"./config/customer_sku_matrix.csv",
		"./customer-sku-matrix.csv",
	})
	viper.SetDefault("site.location_matrix_file", "./config/location-number-matrix.csv")
	viper.SetDefault("site.ship_from_name", "")
	viper.SetDefault("site.ship_from_address", "")
	viper.SetDefault("site.ship_from_city_st_zip", "")
	viper.SetDefault("printing.connect_timeout_ms", 2000)
	viper.SetDefault("printing.write_timeout_ms", 5000)
	viper.SetDefault("printing.max_retries", 3)
	viper.SetDefault("printing.retry_delay_ms", 1000)
	viper.SetDefault("printing.failure_policy", "fail_fast")
	viper.SetDefault("printing.checkpoint_dir", "./out/jobs")
	viper.SetDefault("printing.output_dir", "./out")
	viper.SetDefault("printing.force_printer_id", "")
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
	})
	viper.SetDefault("cors.allow_credentials", true)
	viper.SetDefault("cors.max_age", 600)
	viper.SetDefault("security.login_rate_limit.window_seconds", 60)
	viper.SetDefault("security.login_rate_limit.max_attempts", 10)

	// 环境变量支持
	viper.AutomaticEnv()                                   // 自动读取环境变量
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // 将 . 替换为 _ (例如 server.port -> SERVER_PORT)

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}
