package config

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type Server struct {
	Host    string
	Port    int
	BaseURL string
}

type DB struct {
	Driver string // sqlite | mysql
	Path   string // sqlite file
	Host   string
	Port   int
	User   string
	Pass   string
	Name   string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Session struct {
	Secret string
	TTL    time.Duration
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
}

type Config struct {
	SiteTitle string
	Server    Server
	DB        DB
	Redis     Redis
	Session   Session
	SMTP      SMTP
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("site.title", "Cellar")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.base_url", "")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "cellar.db")
	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.user", "root")
	v.SetDefault("db.pass", "")
	v.SetDefault("db.name", "cellar")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("session.ttl", "1h")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.use_tls", true)
	return v
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		SiteTitle: v.GetString("site.title"),
		Server: Server{
			Host:    v.GetString("server.host"),
			Port:    v.GetInt("server.port"),
			BaseURL: v.GetString("server.base_url"),
		},
		DB: DB{
			Driver: v.GetString("db.driver"),
			Path:   v.GetString("db.path"),
			Host:   v.GetString("db.host"),
			Port:   v.GetInt("db.port"),
			User:   v.GetString("db.user"),
			Pass:   v.GetString("db.pass"),
			Name:   v.GetString("db.name"),
		},
		Redis: Redis{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Session: Session{
			Secret: v.GetString("session.secret"),
			TTL:    v.GetDuration("session.ttl"),
		},
		SMTP: SMTP{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
			UseTLS:   v.GetBool("smtp.use_tls"),
		},
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = time.Hour
	}
	return cfg
}

func Load(path string) (*Config, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return fromViper(v), nil
}

// Save writes cfg to path as YAML. The setup wizard is the only writer.
func Save(path string, cfg *Config) error {
	v := newViper(path)
	v.Set("site.title", cfg.SiteTitle)
	v.Set("server.host", cfg.Server.Host)
	v.Set("server.port", cfg.Server.Port)
	v.Set("server.base_url", cfg.Server.BaseURL)
	v.Set("db.driver", cfg.DB.Driver)
	v.Set("db.path", cfg.DB.Path)
	v.Set("db.host", cfg.DB.Host)
	v.Set("db.port", cfg.DB.Port)
	v.Set("db.user", cfg.DB.User)
	v.Set("db.pass", cfg.DB.Pass)
	v.Set("db.name", cfg.DB.Name)
	v.Set("redis.addr", cfg.Redis.Addr)
	v.Set("redis.password", cfg.Redis.Password)
	v.Set("redis.db", cfg.Redis.DB)
	v.Set("session.secret", cfg.Session.Secret)
	v.Set("session.ttl", cfg.Session.TTL.String())
	v.Set("smtp.host", cfg.SMTP.Host)
	v.Set("smtp.port", cfg.SMTP.Port)
	v.Set("smtp.username", cfg.SMTP.Username)
	v.Set("smtp.password", cfg.SMTP.Password)
	v.Set("smtp.use_tls", cfg.SMTP.UseTLS)
	return v.WriteConfigAs(path)
}

// Watch re-reads the file whenever it changes on disk and hands the fresh
// Config to onChange. Intended for operator edits while the server runs.
func Watch(path string, onChange func(*Config, fsnotify.Event)) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		onChange(fromViper(v), e)
	})
	v.WatchConfig()
	return nil
}
