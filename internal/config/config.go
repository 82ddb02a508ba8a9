package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Source    SourceConfig    `mapstructure:"source"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"` // development, production
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // 日志输出路径
	MaxSize    int    `mapstructure:"max_size"`    // 日志文件最大大小(MB)
	MaxBackups int    `mapstructure:"max_backups"` // 保留的日志文件数量
	MaxAge     int    `mapstructure:"max_age"`     // 日志保留天数
	Compress   bool   `mapstructure:"compress"`    // 是否压缩旧日志
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	MySQL      MySQLConfig      `mapstructure:"mysql"`
	PostgreSQL PostgreSQLConfig `mapstructure:"postgresql"`
	MongoDB    MongoDBConfig    `mapstructure:"mongodb"`
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Charset  string `mapstructure:"charset"`
	// 连接池配置
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeStr string `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTimeStr string `mapstructure:"conn_max_idle_time"`

	// 解析后的时间，由 Load 函数填充
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// PostgreSQLConfig PostgreSQL 配置
type PostgreSQLConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
	// 连接池配置
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeStr string `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTimeStr string `mapstructure:"conn_max_idle_time"`

	// 解析后的时间，由 Load 函数填充
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// MongoDBConfig MongoDB 配置
type MongoDBConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	AuthSource  string `mapstructure:"auth_source"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	ReplicaSet  string `mapstructure:"replica_set"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
	MaxIdleTime string `mapstructure:"max_idle_time"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"` // 监听地址
	Port int    `mapstructure:"port"` // 监听端口
	Mode string `mapstructure:"mode"` // gin 模式: debug, release, test
}

// SourceConfig 外部产品数据源配置
type SourceConfig struct {
	BaseURL string `mapstructure:"base_url"` // 例如: "https://dummyjson.com"
	Timeout string `mapstructure:"timeout"`  // 例如: "30s"
	Limit   int    `mapstructure:"limit"`    // 单次拉取的产品数量

	// 解析后的时间，由 Load 函数填充
	TimeoutDuration time.Duration
}

// SchedulerConfig 调度器配置
type SchedulerConfig struct {
	DefaultTimeout string `mapstructure:"default_timeout"` // 例如: "30m"
	Location       string `mapstructure:"location"`        // 例如: "Europe/Paris"
}

// SeedConfig 定时重建任务配置
// 默认关闭，重建是破坏性的全量替换，只应作为显式的维护操作执行
type SeedConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"` // cron 表达式（秒级精度）
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	if configPath != "" {
		viper.AddConfigPath(configPath)
	}

	// 设置环境变量
	viper.SetEnvPrefix("CATALOG")
	viper.AutomaticEnv()

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 解析时间字符串
	if err := config.parseDurations(); err != nil {
		return nil, fmt.Errorf("failed to parse durations: %w", err)
	}

	return &config, nil
}

// parseDurations 解析时间字符串
func (c *Config) parseDurations() error {
	if c.Database.MySQL.ConnMaxLifetimeStr != "" {
		duration, err := time.ParseDuration(c.Database.MySQL.ConnMaxLifetimeStr)
		if err != nil {
			return fmt.Errorf("invalid mysql conn_max_lifetime: %w", err)
		}
		c.Database.MySQL.ConnMaxLifetime = duration
	}

	if c.Database.MySQL.ConnMaxIdleTimeStr != "" {
		duration, err := time.ParseDuration(c.Database.MySQL.ConnMaxIdleTimeStr)
		if err != nil {
			return fmt.Errorf("invalid mysql conn_max_idle_time: %w", err)
		}
		c.Database.MySQL.ConnMaxIdleTime = duration
	}

	if c.Database.PostgreSQL.ConnMaxLifetimeStr != "" {
		duration, err := time.ParseDuration(c.Database.PostgreSQL.ConnMaxLifetimeStr)
		if err != nil {
			return fmt.Errorf("invalid postgresql conn_max_lifetime: %w", err)
		}
		c.Database.PostgreSQL.ConnMaxLifetime = duration
	}

	if c.Database.PostgreSQL.ConnMaxIdleTimeStr != "" {
		duration, err := time.ParseDuration(c.Database.PostgreSQL.ConnMaxIdleTimeStr)
		if err != nil {
			return fmt.Errorf("invalid postgresql conn_max_idle_time: %w", err)
		}
		c.Database.PostgreSQL.ConnMaxIdleTime = duration
	}

	if c.Source.Timeout != "" {
		duration, err := time.ParseDuration(c.Source.Timeout)
		if err != nil {
			return fmt.Errorf("invalid source.timeout: %w", err)
		}
		c.Source.TimeoutDuration = duration
	}

	return nil
}

// GetLocation 获取调度器时区
func (c *Config) GetLocation() (*time.Location, error) {
	if c.Scheduler.Location == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Scheduler.Location)
}

// GetDefaultTimeout 获取任务默认超时时间
func (c *Config) GetDefaultTimeout() (time.Duration, error) {
	if c.Scheduler.DefaultTimeout == "" {
		return 30 * time.Minute, nil
	}
	return time.ParseDuration(c.Scheduler.DefaultTimeout)
}

// setDefaults 设置默认配置值
func setDefaults() {
	// App 默认值
	viper.SetDefault("app.name", "productcatalog")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.env", "development")

	// Logger 默认值
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "")
	viper.SetDefault("logger.max_size", 100)
	viper.SetDefault("logger.max_backups", 3)
	viper.SetDefault("logger.max_age", 7)
	viper.SetDefault("logger.compress", true)

	// MongoDB 默认值（主存储，默认启用）
	viper.SetDefault("database.mongodb.enabled", true)
	viper.SetDefault("database.mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.mongodb.database", "tp_products")
	viper.SetDefault("database.mongodb.max_pool_size", 100)
	viper.SetDefault("database.mongodb.min_pool_size", 0)

	// MySQL / PostgreSQL 默认关闭
	viper.SetDefault("database.mysql.enabled", false)
	viper.SetDefault("database.postgresql.enabled", false)

	// Server 默认值
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.mode", "release")

	// Source 默认值
	viper.SetDefault("source.base_url", "https://dummyjson.com")
	viper.SetDefault("source.timeout", "30s")
	viper.SetDefault("source.limit", 100)

	// Scheduler 默认值
	viper.SetDefault("scheduler.default_timeout", "30m")
	viper.SetDefault("scheduler.location", "")

	// Seed 任务默认关闭
	viper.SetDefault("seed.enabled", false)
	viper.SetDefault("seed.schedule", "0 0 3 * * *")
}
