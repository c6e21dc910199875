package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"yoyaku/internal/schedule"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Logging    LoggingConfig    `yaml:"logging"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Google     GoogleConfig     `yaml:"google"`
	API        APIConfig        `yaml:"api"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Journal    JournalConfig    `yaml:"journal"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// ScheduleConfig mirrors schedule.Rules in YAML form. Absent fields fall
// back to the production defaults. Fields whose zero value is meaningful
// (midnight opening, no lead time, no closures, UTC business zone) are
// pointers or nil-checked so an explicit zero is distinguishable from an
// omitted key.
type ScheduleConfig struct {
	OpenHour            *int   `yaml:"open_hour"`
	WeekdayCloseHour    int    `yaml:"weekday_close_hour"`
	SaturdayCloseHour   int    `yaml:"saturday_close_hour"`
	SlotDurationMinutes int    `yaml:"slot_duration_minutes"`
	StepMinutes         int    `yaml:"step_minutes"`
	LeadTimeHours       *int   `yaml:"lead_time_hours"`
	HorizonDays         int    `yaml:"horizon_days"`
	ClosedWeekdays      []int  `yaml:"closed_weekdays"`
	UTCOffsetHours      *int   `yaml:"utc_offset_hours"`
	MeetingLocation     string `yaml:"meeting_location"`
}

type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	CredentialsJSON string `yaml:"credentials_json"`
	CalendarID      string `yaml:"calendar_id"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type JournalConfig struct {
	Enabled       bool   `yaml:"enabled"`
	SpreadsheetID string `yaml:"spreadsheet_id"`
	SheetName     string `yaml:"sheet_name"`
}

func Load(configPath string) (*Config, error) {
	// .env переменные подхватываются до разворачивания YAML
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Google.CredentialsFile == "" && c.Google.CredentialsJSON == "" {
		return errors.New("google credentials are required")
	}

	if c.Google.CalendarID == "" {
		return errors.New("google calendar id is required")
	}

	if c.Journal.Enabled && c.Journal.SpreadsheetID == "" {
		return errors.New("journal spreadsheet id is required when journal is enabled")
	}

	return c.Rules().Validate()
}

// Rules materializes the immutable rule set for the generator.
func (c *Config) Rules() schedule.Rules {
	rules := schedule.DefaultRules()
	s := c.Schedule

	if s.OpenHour != nil {
		rules.OpenHour = *s.OpenHour
	}
	if s.WeekdayCloseHour > 0 {
		rules.WeekdayCloseHour = s.WeekdayCloseHour
	}
	if s.SaturdayCloseHour > 0 {
		rules.SaturdayCloseHour = s.SaturdayCloseHour
	}
	if s.SlotDurationMinutes > 0 {
		rules.SlotDuration = time.Duration(s.SlotDurationMinutes) * time.Minute
	}
	if s.StepMinutes > 0 {
		rules.Step = time.Duration(s.StepMinutes) * time.Minute
	}
	if s.LeadTimeHours != nil {
		rules.LeadTime = time.Duration(*s.LeadTimeHours) * time.Hour
	}
	if s.HorizonDays > 0 {
		rules.HorizonDays = s.HorizonDays
	}
	// A present-but-empty list means "no closures"; only an absent key keeps
	// the default Sunday+Wednesday set.
	if s.ClosedWeekdays != nil {
		closed := make(map[time.Weekday]bool, len(s.ClosedWeekdays))
		for _, wd := range s.ClosedWeekdays {
			closed[time.Weekday(wd)] = true
		}
		rules.ClosedWeekdays = closed
	}
	if s.UTCOffsetHours != nil {
		rules.UTCOffsetHours = *s.UTCOffsetHours
	}

	return rules
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Journal.SheetName == "" {
		c.Journal.SheetName = "Bookings"
	}
}
