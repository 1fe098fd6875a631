// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Platforms to run, in order. Known values: boss, liepin.
	Platforms []string `yaml:"platforms"`
	Headless  bool     `yaml:"headless"`
	//Paths
	DataDir    string `yaml:"data_dir"`
	CookiesDir string `yaml:"cookies_dir"`

	Boss   PlatformConfig `yaml:"boss"`
	Liepin PlatformConfig `yaml:"liepin"`

	// Greeting templates shared by all platforms; {position} and
	// {company} are substituted per posting.
	Greetings []string `yaml:"greetings"`

	Schedule ScheduleConfig `yaml:"schedule"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type PlatformConfig struct {
	Search SearchConfig `yaml:"search"`
	Filter FilterConfig `yaml:"filter"`
	Apply  ApplyConfig  `yaml:"apply"`
}

type SearchConfig struct {
	Keywords   []string `yaml:"keywords"`
	City       string   `yaml:"city"`
	Salary     string   `yaml:"salary"`
	Experience string   `yaml:"experience"`
	Degree     string   `yaml:"degree"`
}

type FilterConfig struct {
	MustInclude      []string `yaml:"must_include"`
	MustExclude      []string `yaml:"must_exclude"`
	CompanyBlacklist []string `yaml:"company_blacklist"`
	CompanyKeywords  []string `yaml:"company_keywords"`
}

type ApplyConfig struct {
	DailyLimit  int  `yaml:"daily_limit"`
	BatchLimit  int  `yaml:"batch_limit"`
	IntervalMin int  `yaml:"interval_min"` // seconds
	IntervalMax int  `yaml:"interval_max"` // seconds
	MaxScan     int  `yaml:"max_scan"`     // 0 = no cap
	RetryFailed bool `yaml:"retry_failed"`
	// Seconds allowed per single apply before it is abandoned.
	ApplyTimeout int `yaml:"apply_timeout"`
}

type ScheduleConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Times         []string `yaml:"times"` // "HH:MM"
	WorkdaysOnly  bool     `yaml:"workdays_only"`
	WeekendLimit  int      `yaml:"weekend_limit"`
	CheckInterval int      `yaml:"check_interval"` // seconds
}

type TelegramConfig struct {
	Token  string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID int64  `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	//Override with env vars
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Telegram.ChatID = id
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Platforms) == 0 {
		c.Platforms = []string{"boss"}
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.CookiesDir == "" {
		c.CookiesDir = "."
	}
	if c.Schedule.WeekendLimit == 0 {
		c.Schedule.WeekendLimit = 10
	}
	if c.Schedule.CheckInterval == 0 {
		c.Schedule.CheckInterval = 60
	}

	for _, pc := range []*PlatformConfig{&c.Boss, &c.Liepin} {
		a := &pc.Apply
		if a.DailyLimit == 0 {
			a.DailyLimit = 50
		}
		if a.BatchLimit == 0 {
			a.BatchLimit = 20
		}
		if a.IntervalMin == 0 {
			a.IntervalMin = 30
		}
		if a.IntervalMax == 0 {
			a.IntervalMax = 60
		}
		if a.ApplyTimeout == 0 {
			a.ApplyTimeout = 90
		}
	}
}

// Platform returns the block for a platform name, or nil for an
// unknown one.
func (c *Config) Platform(name string) *PlatformConfig {
	switch name {
	case "boss":
		return &c.Boss
	case "liepin":
		return &c.Liepin
	}
	return nil
}
