package config

import "time"

type DBConfig struct {
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int32         `mapstructure:"max_open_conns"`
	MinIdleConns    int32         `mapstructure:"min_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	HealthTimeout   time.Duration `mapstructure:"health_timeout"`
}

type RedisConfig struct {
	URL           string        `mapstructure:"url" validate:"required"`
	TokenCacheTTL time.Duration `mapstructure:"token_cache_ttl"`
}

type AuthConfig struct {
	Secret string `mapstructure:"secret" validate:"required"`
}

// SweepConfig controls the reconciliation loop. Interval is a deployment
// parameter, not a correctness one; CronSecret guards the external trigger.
type SweepConfig struct {
	Interval   time.Duration `mapstructure:"interval" validate:"required"`
	CronSecret string        `mapstructure:"cron_secret" validate:"required"`
}

type AlertConfig struct {
	ResendAPIKey   string        `mapstructure:"resend_api_key"`
	FromEmail      string        `mapstructure:"from_email" validate:"required,email"`
	AppURL         string        `mapstructure:"app_url" validate:"required,url"`
	ChannelTimeout time.Duration `mapstructure:"channel_timeout"`
}

type RabbitMQConfig struct {
	URL        string `mapstructure:"url" validate:"required"`
	Exchange   string `mapstructure:"exchange"`
	SMSRouting string `mapstructure:"sms_routing_key"`
}

type RetentionConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type Config struct {
	Env         string           `mapstructure:"env"`
	ServiceName string           `mapstructure:"service_name"`
	Port        int              `mapstructure:"port"`
	DB          *DBConfig        `mapstructure:"db" validate:"required"`
	Redis       *RedisConfig     `mapstructure:"redis" validate:"required"`
	Auth        *AuthConfig      `mapstructure:"auth" validate:"required"`
	Sweep       *SweepConfig     `mapstructure:"sweep" validate:"required"`
	Alert       *AlertConfig     `mapstructure:"alert" validate:"required"`
	RabbitMQ    *RabbitMQConfig  `mapstructure:"rabbitmq" validate:"required"`
	Retention   *RetentionConfig `mapstructure:"retention"`
}
