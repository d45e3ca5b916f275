package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 服务全局配置
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Engagement    EngagementConfig    `mapstructure:"engagement"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Moderation    ModerationConfig    `mapstructure:"moderation"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Tracing       TracingConfig       `mapstructure:"tracing"`
	Log           LogConfig           `mapstructure:"log"`
}

type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	Mode    string `mapstructure:"mode"` // debug, release
	RateRPS int    `mapstructure:"rate_rps"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // postgres, sqlite
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	// TriggerSecretHash 触发器回调口令的 bcrypt 哈希
	TriggerSecretHash string `mapstructure:"trigger_secret_hash"`
}

type EngagementConfig struct {
	// OpTimeout 单次一致性操作的超时上限
	OpTimeout time.Duration `mapstructure:"op_timeout"`
}

type NotificationsConfig struct {
	// PageLimit 通知列表单页上限（避免无界增长的读放大）
	PageLimit int           `mapstructure:"page_limit"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

type ModerationConfig struct {
	// ReportThreshold 达到该举报数后封禁作者并删帖（策略值，非机制）
	ReportThreshold int `mapstructure:"report_threshold"`
}

type StorageConfig struct {
	Backend   string `mapstructure:"backend"` // local, s3
	LocalDir  string `mapstructure:"local_dir"`
	LocalBase string `mapstructure:"local_base"`
	S3Region  string `mapstructure:"s3_region"`
	S3Bucket  string `mapstructure:"s3_bucket"`
}

type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

type LogConfig struct {
	Level     string `mapstructure:"level"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// Load 读取 config.yaml 并允许环境变量覆盖（TOGETHER_ 前缀）
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("TOGETHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件可选，缺省值 + 环境变量即可运行
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.rate_rps", 50)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "together.db")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.jwt_secret", "dev-secret")
	v.SetDefault("engagement.op_timeout", 3*time.Second)
	v.SetDefault("notifications.page_limit", 50)
	v.SetDefault("notifications.cache_ttl", 10*time.Minute)
	v.SetDefault("moderation.report_threshold", 5)
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.local_base", "http://localhost:8080/uploads")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("log.level", "info")
}
