package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Namespace prefixes every environment variable, e.g. MANPOWER_DB_HOST.
const Namespace = "MANPOWER"

// ErrHelp is returned when --help was requested and the usage was printed.
var ErrHelp = errors.New("provided help")

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8080" yaml:"address"`
	ShutdownTimeout time.Duration `conf:"default:10s" yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `conf:"default:http://localhost:3000" yaml:"allowed_origins"`
}

type DB struct {
	User       string        `conf:"default:postgres" yaml:"db_username"`
	Password   string        `conf:"default:postgres,noprint" yaml:"db_password"`
	Host       string        `conf:"default:localhost" yaml:"db_host"`
	Port       int           `conf:"default:5432" yaml:"port"`
	Name       string        `conf:"default:manpower" yaml:"db_name"`
	DisableTLS bool          `conf:"default:true" yaml:"disable_tls"`
	Timeout    time.Duration `conf:"default:5s" yaml:"timeout"`
	Debug      bool          `conf:"default:false" yaml:"debug"`
}

type Redis struct {
	// Address is optional; without it HR backend responses are not cached.
	Address  string        `yaml:"address"`
	Password string        `conf:"noprint" yaml:"password"`
	DB       int           `conf:"default:0" yaml:"db"`
	CacheTTL time.Duration `conf:"default:5m" yaml:"cache_ttl"`
}

type HR struct {
	BaseURL string        `conf:"default:http://10.35.10.47:2007" yaml:"base_url"`
	Timeout time.Duration `conf:"default:15s" yaml:"timeout"`
}

type WeCom struct {
	APIURL  string        `conf:"default:https://qyapi.weixin.qq.com" yaml:"api_url"`
	CorpID  string        `yaml:"corp_id"`
	AgentID int           `yaml:"agent_id"`
	Secret  string        `conf:"noprint" yaml:"secret"`
	Timeout time.Duration `conf:"default:10s" yaml:"timeout"`

	// Token and EncodingAESKey enable the callback endpoint.
	Token          string `conf:"noprint" yaml:"token"`
	EncodingAESKey string `conf:"noprint" yaml:"encoding_aes_key"`
}

type Notify struct {
	Enabled  bool          `conf:"default:false" yaml:"enabled"`
	Interval time.Duration `conf:"default:30s" yaml:"interval"`
	StateTTL time.Duration `conf:"default:48h" yaml:"state_ttl"`
	TimeZone string        `conf:"default:Local" yaml:"time_zone"`
}

type Log struct {
	Level      string `conf:"default:info" yaml:"level"`
	Format     string `conf:"default:json" yaml:"format"`
	OutputPath string `conf:"default:stdout" yaml:"output_path"`
}

type Report struct {
	OrgName         string  `conf:"default:Company" yaml:"org_name"`
	DepartmentNames string  `conf:"default:departments.yaml" yaml:"department_names"`
	WeeklyHourLimit float64 `conf:"default:60" yaml:"weekly_hour_limit"`
	LateAfter       string  `conf:"default:08:00" yaml:"late_after"`
	PDFFontPath     string  `yaml:"pdf_font_path"`
}

type Config struct {
	File   string `conf:"default:config.yaml" yaml:"-"`
	Web    Web    `yaml:"web"`
	DB     DB     `yaml:"db"`
	Redis  Redis  `yaml:"redis"`
	HR     HR     `yaml:"hr"`
	WeCom  WeCom  `yaml:"wecom"`
	Notify Notify `yaml:"notify"`
	Log    Log    `yaml:"log"`
	Report Report `yaml:"report"`
}

// NewConfig reads defaults, environment and command line flags, then overlays
// the yaml file named by File when it exists. Keys present in the file win.
func NewConfig(args []string) (*Config, error) {
	var c Config

	if err := conf.Parse(args, Namespace, &c); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, err := conf.Usage(Namespace, &c)
			if err != nil {
				return nil, errors.Wrap(err, "generating config usage")
			}
			fmt.Println(usage)
			return nil, ErrHelp
		}
		return nil, errors.Wrap(err, "parsing config")
	}

	if err := c.overlay(c.File); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) overlay(path string) error {
	if path == "" {
		return nil
	}

	yamlFile, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	if err := yaml.Unmarshal(yamlFile, c); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.DB.User == "" || c.DB.Host == "" || c.DB.Name == "" {
		return errors.New("missing required database configuration")
	}
	if c.Report.WeeklyHourLimit <= 0 {
		return errors.New("weekly hour limit must be positive")
	}
	if _, err := time.Parse("15:04", c.Report.LateAfter); err != nil {
		return errors.Wrap(err, "late_after must be HH:MM")
	}
	if c.Notify.Enabled {
		if c.WeCom.CorpID == "" || c.WeCom.Secret == "" || c.WeCom.AgentID == 0 {
			return errors.New("scan notifications need wecom credentials")
		}
		if c.Notify.Interval <= 0 {
			return errors.New("notify interval must be positive")
		}
		if _, err := time.LoadLocation(c.Notify.TimeZone); err != nil {
			return errors.Wrap(err, "notify time_zone")
		}
	}

	return nil
}

// String renders the config without fields tagged noprint.
func (c *Config) String() string {
	out, err := conf.String(c)
	if err != nil {
		return err.Error()
	}
	return out
}

// LoadDepartmentNames reads a yaml mapping of department code to name. A
// missing file yields an empty mapping.
func LoadDepartmentNames(path string) (map[string]string, error) {
	names := make(map[string]string)
	if path == "" {
		return names, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return names, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}

	return names, nil
}
