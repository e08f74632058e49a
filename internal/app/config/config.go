package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	MySQL  MySQLConfig  `mapstructure:"mysql"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Lmstfy LmstfyConfig `mapstructure:"lmstfy"`
	Guard  GuardConfig  `mapstructure:"guard"`
	Order  OrderConfig  `mapstructure:"order"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr               string `mapstructure:"addr"`
	Password           string `mapstructure:"password"`
	DB                 int    `mapstructure:"db"`
	EventChannelPrefix string `mapstructure:"event_channel_prefix"`
}

// LmstfyConfig 支付网关回调队列配置
type LmstfyConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Namespace       string        `mapstructure:"namespace"`
	Token           string        `mapstructure:"token"`
	CallbackQueue   string        `mapstructure:"callback_queue"`
	ConsumerThreads int           `mapstructure:"consumer_threads"`
	Timeout         time.Duration `mapstructure:"timeout"`
	TTR             time.Duration `mapstructure:"ttr"`
	ErrorBackoff    time.Duration `mapstructure:"error_backoff"`
}

// GuardConfig 订单类型护栏配置（启动时加载一次，不在运行期修改）
type GuardConfig struct {
	ServiceName       string   `mapstructure:"service_name"`
	DefaultOrderType  string   `mapstructure:"default_order_type"`
	BlockedOrderTypes []string `mapstructure:"blocked_order_types"`
}

// OrderConfig 订单创建配置（订单号格式固定，不可配置）
type OrderConfig struct {
	NumberRetryLimit int `mapstructure:"number_retry_limit"`
}

// Load 从配置文件加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 支持环境变量覆盖，例如 CHECKOUT_MYSQL_DSN
	v.SetEnvPrefix("checkout")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// LoadDefault 加载默认配置文件路径
func LoadDefault() (*Config, error) {
	return Load("config/config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "checkout")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("server.port", "8080")
	v.SetDefault("mysql.max_open_conns", 50)
	v.SetDefault("mysql.max_idle_conns", 10)
	v.SetDefault("mysql.conn_max_lifetime", time.Hour)
	v.SetDefault("redis.event_channel_prefix", "order:events")
	v.SetDefault("lmstfy.port", 7777)
	v.SetDefault("lmstfy.consumer_threads", 4)
	v.SetDefault("lmstfy.timeout", 3*time.Second)
	v.SetDefault("lmstfy.ttr", 30*time.Second)
	v.SetDefault("lmstfy.error_backoff", time.Second)
	v.SetDefault("guard.service_name", "checkout")
	v.SetDefault("guard.default_order_type", "GENERIC")
	v.SetDefault("order.number_retry_limit", 5)
}

// Validate 验证配置完整性
func (c *Config) Validate() error {
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql dsn is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.Guard.DefaultOrderType == "" {
		return fmt.Errorf("guard.default_order_type is required")
	}
	for _, blocked := range c.Guard.BlockedOrderTypes {
		if strings.EqualFold(strings.TrimSpace(blocked), c.Guard.DefaultOrderType) {
			return fmt.Errorf("guard.default_order_type %q cannot be blocked", c.Guard.DefaultOrderType)
		}
	}
	if c.Order.NumberRetryLimit <= 0 {
		return fmt.Errorf("order.number_retry_limit must be positive")
	}
	return nil
}

// ValidateConsumer 回调消费者额外需要的配置
func (c *Config) ValidateConsumer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy host is required")
	}
	if c.Lmstfy.Token == "" {
		return fmt.Errorf("lmstfy token is required")
	}
	if c.Lmstfy.CallbackQueue == "" {
		return fmt.Errorf("lmstfy callback_queue is required")
	}
	return nil
}

// GetServerPort 获取服务端口
func (c *Config) GetServerPort() string {
	if c.Server.Port != "" {
		return c.Server.Port
	}
	return "8080"
}
