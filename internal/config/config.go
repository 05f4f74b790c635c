// Package config 读取 YAML 配置并允许环境变量覆盖。
// 路径来源优先级: CONFIG_PATH 环境变量 > --config 参数。
package config

import (
	"errors"
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"dev"`
	HTTPServer `yaml:"http_server"`
	Database   Database  `yaml:"database"`
	Redis      Redis     `yaml:"redis"`
	Kafka      Kafka     `yaml:"kafka"`
	SMTP       SMTP      `yaml:"smtp"`
	JWT        JWT       `yaml:"jwt"`
	Auth       Auth      `yaml:"auth"`
	Log        Log       `yaml:"log"`
	RateLimit  RateLimit `yaml:"rate_limit"`
	Chat       Chat      `yaml:"chat"`
	Worker     Worker    `yaml:"worker"`
}

type HTTPServer struct {
	Addr         string   `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:":8080"`
	WebRoot      string   `yaml:"web_root" env:"WEB_ROOT"`
	AllowOrigins []string `yaml:"allow_origins" env:"ALLOW_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
	CookieSecure bool     `yaml:"cookie_secure" env:"COOKIE_SECURE"`
}

type Database struct {
	// postgres | mysql | sqlite
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	DSN    string `yaml:"dsn" env:"DB_DSN" env-required:"true"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"127.0.0.1:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:"," env-default:"127.0.0.1:9092"`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"campus.events"`
}

type SMTP struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM"`
}

type JWT struct {
	AccessSecret  string        `yaml:"access_secret" env:"JWT_ACCESS_SECRET" env-required:"true"`
	RefreshSecret string        `yaml:"refresh_secret" env:"JWT_REFRESH_SECRET" env-required:"true"`
	AccessTTL     time.Duration `yaml:"access_ttl" env:"JWT_ACCESS_TTL" env-default:"30m"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env:"JWT_REFRESH_TTL" env-default:"24h"`
	// 单点登录态在 redis 中的存活时间，每次请求续期
	SessionTTL time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"30m"`
}

type Auth struct {
	// 为空则不限制注册邮箱域名
	AllowedEmailDomain string `yaml:"allowed_email_domain" env:"ALLOWED_EMAIL_DOMAIN"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type RateLimit struct {
	ComplaintWindow time.Duration `yaml:"complaint_window" env:"RL_COMPLAINT_WINDOW" env-default:"168h"`
	ComplaintMax    int           `yaml:"complaint_max" env:"RL_COMPLAINT_MAX" env-default:"1"`
	ListingWindow   time.Duration `yaml:"listing_window" env:"RL_LISTING_WINDOW" env-default:"72h"`
	ListingMax      int           `yaml:"listing_max" env:"RL_LISTING_MAX" env-default:"1"`
	LostFoundWindow time.Duration `yaml:"lost_found_window" env:"RL_LOST_FOUND_WINDOW" env-default:"24h"`
	LostFoundMax    int           `yaml:"lost_found_max" env:"RL_LOST_FOUND_MAX" env-default:"2"`
}

type Chat struct {
	HistoryLimit int           `yaml:"history_limit" env:"CHAT_HISTORY_LIMIT" env-default:"500"`
	MessageTTL   time.Duration `yaml:"message_ttl" env:"CHAT_MESSAGE_TTL" env-default:"24h"`
	Channel      string        `yaml:"channel" env:"CHAT_CHANNEL" env-default:"chat:messages"`
}

type Worker struct {
	OutboxInterval time.Duration `yaml:"outbox_interval" env:"OUTBOX_INTERVAL" env-default:"1s"`
	OutboxBatch    int           `yaml:"outbox_batch" env:"OUTBOX_BATCH" env-default:"200"`
	SweepInterval  time.Duration `yaml:"sweep_interval" env:"CHAT_SWEEP_INTERVAL" env-default:"10m"`
}

var ErrNoConfigPath = errors.New("config path is not set: use --config flag or CONFIG_PATH env var")

// Load 从指定文件读取配置，环境变量可覆盖文件中的值
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrNoConfigPath
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad 启动时使用，失败直接退出
func MustLoad() *Config {
	// .env 只是本地开发的便利，不存在时忽略
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		flags := flag.String("config", "", "path to the configuration YAML file")
		flag.Parse()
		path = *flags
	}

	cfg, err := Load(path)
	if err != nil {
		logrus.Fatalf("cannot read config: %v", err)
	}
	return cfg
}
