package conf

import (
	"errors"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var (
	Path string
	Port int

	global *Config
)

func G() *Config {
	if global == nil {
		panic("configuration not loaded")
	}

	return global
}

func ReplaceGlobals(cfg *Config) {
	global = cfg
}

func LoadEnv(cli *cli.Context) error {
	path := cli.String("path")
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		path = homeDir + "/.flarex/social"
	}

	Path = path
	Port = cli.Int("port")
	return nil
}

func LoadConfig() (*Config, error) {
	f, err := os.Open(Path + "/config.yaml")
	if err != nil {
		f, err = os.Open(Path + "/config.example.yaml")
		if err != nil {
			return nil, err
		}
	}
	defer f.Close()

	r, err := NewEnvExpandedReader(f)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

type Config struct {
	Name        string      `yaml:"name"`
	BaseURL     string      `yaml:"baseUrl"`
	Log         Log         `yaml:"log"`
	Persistence Persistence `yaml:"persistence"`
	EventBus    EventBus    `yaml:"eventBus"`
	Breaker     Breaker     `yaml:"breaker"`
	Discovery   Discovery   `yaml:"discovery"`
	CORS        CORS        `yaml:"cors"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type PersistenceDriver int

const (
	SQLite PersistenceDriver = iota
	MySQL
	Postgres
	BadgerDB
	InMem
)

func ParsePersistenceDriver(driver string) (PersistenceDriver, error) {
	switch driver {
	case "sqlite":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	case "postgres":
		return Postgres, nil
	case "badger":
		return BadgerDB, nil
	case "inmem":
		return InMem, nil
	default:
		return -1, errors.New("driver not supported")
	}
}

func (driver PersistenceDriver) String() string {
	switch driver {
	case SQLite:
		return "sqlite"
	case MySQL:
		return "mysql"
	case Postgres:
		return "postgres"
	case BadgerDB:
		return "badger"
	case InMem:
		return "inmem"
	default:
		return "unknown"
	}
}

type Persistence struct {
	Driver   PersistenceDriver
	Name     string
	Host     string
	Port     int
	Username string
	Password string
	SSLMode  string
	InMem    bool
}

func (p *Persistence) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Driver   string `yaml:"driver"`
		Name     string `yaml:"name"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
		InMem    bool   `yaml:"inmem"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	driver, err := ParsePersistenceDriver(raw.Driver)
	if err != nil {
		return err
	}

	p.Driver = driver
	p.Name = raw.Name

	p.Host = raw.Host
	if raw.Host == "" && (driver == SQLite || driver == BadgerDB) {
		p.Host = Path
	}

	p.Port = raw.Port
	p.Username = raw.Username
	p.Password = raw.Password

	p.SSLMode = raw.SSLMode
	if raw.SSLMode == "" {
		p.SSLMode = "disable"
	}

	p.InMem = raw.InMem

	return nil
}

type TransportProvider int

const NATS TransportProvider = iota

func ParseTransportProvider(provider string) (TransportProvider, error) {
	switch provider {
	case "nats":
		return NATS, nil
	default:
		return -1, errors.New("provider not supported")
	}
}

func (p TransportProvider) String() string {
	switch p {
	case NATS:
		return "nats"
	default:
		return ""
	}
}

type EventBus struct {
	Enabled  bool
	Provider TransportProvider
}

func (e *EventBus) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Enabled  bool   `yaml:"enabled"`
		Provider string `yaml:"provider"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	e.Enabled = raw.Enabled
	if raw.Provider == "" {
		e.Provider = NATS
		return nil
	}

	provider, err := ParseTransportProvider(raw.Provider)
	if err != nil {
		return err
	}

	e.Provider = provider
	return nil
}

type Breaker struct {
	MaxRequests         uint32
	ConsecutiveFailures uint32
	Interval            time.Duration
	Timeout             time.Duration
}

func (b *Breaker) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		MaxRequests         uint32 `yaml:"maxRequests"`
		ConsecutiveFailures uint32 `yaml:"consecutiveFailures"`
		Interval            string `yaml:"interval"`
		Timeout             string `yaml:"timeout"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	b.MaxRequests = raw.MaxRequests
	b.ConsecutiveFailures = raw.ConsecutiveFailures

	if raw.Interval != "" {
		interval, err := time.ParseDuration(raw.Interval)
		if err != nil {
			return err
		}

		b.Interval = interval
	}

	if raw.Timeout == "" {
		b.Timeout = 30 * time.Second
	} else {
		timeout, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return err
		}

		b.Timeout = timeout
	}

	return nil
}

type Discovery struct {
	Consul Consul `yaml:"consul"`
}

type Consul struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Host    string `yaml:"host"`
}

type CORS struct {
	AllowOrigins []string `yaml:"allowOrigins"`
}
