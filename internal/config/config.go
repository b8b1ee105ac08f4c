// Package config loads the wayfinder configuration file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/wayfinder/pkg/actions"
	"gopkg.in/yaml.v3"
)

// Config is the root of wayfinder.yaml. JSON files are accepted as well.
type Config struct {
	LogLevel     string `yaml:"log_level"`
	MapPath      string `yaml:"map_path"`
	UsersPath    string `yaml:"users_path"`
	UsersBackend string `yaml:"users_backend"`
	ActionsPath  string `yaml:"actions_path"`

	Robot       RobotConfig       `yaml:"robot"`
	Interaction InteractionConfig `yaml:"interaction"`
	Touch       TouchConfig       `yaml:"touch"`
	Session     SessionConfig     `yaml:"session"`
	Redis       RedisConfig       `yaml:"redis"`
	HTTP        HTTPConfig        `yaml:"http"`

	// Actions overrides entries of the action catalog inline.
	Actions []any `yaml:"actions"`
}

type RobotConfig struct {
	// URL of the robot control API. Empty selects the simulator.
	URL              string        `yaml:"url"`
	LinearVelocity   float64       `yaml:"linear_velocity"`
	StepInterval     time.Duration `yaml:"step_interval"`
	ArrivalTolerance float64       `yaml:"arrival_tolerance"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
}

type InteractionConfig struct {
	// URL of the tablet websocket. Empty selects the simulator.
	URL             string        `yaml:"url"`
	ExchangeTimeout time.Duration `yaml:"exchange_timeout"`
}

type TouchConfig struct {
	Backend string     `yaml:"backend"` // memory | mqtt
	MQTT    MQTTConfig `yaml:"mqtt"`
}

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	Port        int    `yaml:"port"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

type SessionConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Store   string        `yaml:"store"` // memory | redis
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	// LockTTL bounds how long a crashed process keeps the robot locked.
	// Held locks are renewed while the trip runs.
	LockTTL time.Duration `yaml:"lock_ttl"`
}

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		LogLevel:     "info",
		MapPath:      "static/map.txt",
		UsersPath:    "static/users.txt",
		UsersBackend: "file",
		Robot: RobotConfig{
			LinearVelocity:   0.3,
			StepInterval:     100 * time.Millisecond,
			ArrivalTolerance: 0.15,
			RequestTimeout:   2 * time.Second,
		},
		Interaction: InteractionConfig{
			ExchangeTimeout: 30 * time.Second,
		},
		Touch: TouchConfig{
			Backend: "memory",
			MQTT: MQTTConfig{
				Broker:      "localhost",
				Port:        1883,
				ClientID:    "wayfinder",
				TopicPrefix: "wayfinder/touch/",
			},
		},
		Session: SessionConfig{
			Timeout: 10 * time.Second,
			Store:   "memory",
		},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			Prefix:  "wayfinder:session:",
			TTL:     24 * time.Hour,
			LockTTL: 30 * time.Second,
		},
		HTTP: HTTPConfig{
			Listen: ":8080",
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("WAYFINDER_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("WAYFINDER_ROBOT_URL"); ok {
		c.Robot.URL = v
	}
	if v, ok := lookup("WAYFINDER_REDIS_ADDR"); ok {
		c.Redis.Addr = v
		c.Session.Store = "redis"
	}
	if v, ok := lookup("WAYFINDER_MQTT_BROKER"); ok {
		c.Touch.MQTT.Broker = v
		c.Touch.Backend = "mqtt"
	}
	if v, ok := lookup("WAYFINDER_SESSION_TIMEOUT"); ok {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("WAYFINDER_SESSION_TIMEOUT: %w", err)
		}
		c.Session.Timeout = time.Duration(secs * float64(time.Second))
	}
	return nil
}

// Validate rejects unknown backends and non-positive motion settings.
func (c Config) Validate() error {
	switch c.UsersBackend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("users_backend: unknown backend %q", c.UsersBackend)
	}
	switch c.Touch.Backend {
	case "memory", "mqtt":
	default:
		return fmt.Errorf("touch.backend: unknown backend %q", c.Touch.Backend)
	}
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("session.store: unknown store %q", c.Session.Store)
	}
	if c.Robot.LinearVelocity <= 0 || c.Robot.StepInterval <= 0 || c.Robot.ArrivalTolerance <= 0 {
		return fmt.Errorf("robot: linear_velocity, step_interval and arrival_tolerance must be positive")
	}
	if c.Interaction.ExchangeTimeout <= 0 {
		return fmt.Errorf("interaction.exchange_timeout must be positive")
	}
	if c.Session.Store == "redis" && c.Redis.LockTTL <= 0 {
		return fmt.Errorf("redis.lock_ttl must be positive")
	}
	return nil
}

// Catalog builds the action catalog: built-in entries, then actions_path,
// then inline actions.
func (c Config) Catalog() (*actions.Catalog, error) {
	cat := actions.Default()
	if c.ActionsPath != "" {
		var err error
		if cat, err = actions.Load(c.ActionsPath); err != nil {
			return nil, err
		}
	}
	if len(c.Actions) > 0 {
		inline, err := actions.Decode(c.Actions)
		if err != nil {
			return nil, fmt.Errorf("config actions: %w", err)
		}
		for _, d := range inline.All() {
			cat.Register(d)
		}
	}
	return cat, nil
}
