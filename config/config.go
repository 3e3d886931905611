// Package config loads user preferences.
//
// Values come from, in increasing priority: built-in defaults, an optional
// YAML config file, a .env file in the working directory and MONEYBOOK_*
// environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/document"
	"github.com/spf13/viper"
)

// Config holds user preferences.
type Config struct {
	DefaultCurrency  string       `mapstructure:"default_currency"`
	DateFormat       string       `mapstructure:"date_format"`
	AutoDecimalPlace bool         `mapstructure:"auto_decimal_place"`
	FirstWeekday     time.Weekday `mapstructure:"-"`
	AheadMonths      int          `mapstructure:"ahead_months"`
	RatesFile        string       `mapstructure:"rates_file"`
	LogEnv           string       `mapstructure:"log_env"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func defaults(v *viper.Viper) {
	v.SetDefault("default_currency", "USD")
	v.SetDefault("date_format", "02/01/2006")
	v.SetDefault("auto_decimal_place", false)
	v.SetDefault("first_weekday", "monday")
	v.SetDefault("ahead_months", 2)
	v.SetDefault("rates_file", "")
	v.SetDefault("log_env", "development")
}

// Load reads the configuration. An empty path skips the config file; a
// missing .env file is ignored.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	defaults(v)
	v.SetEnvPrefix("MONEYBOOK")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.DefaultCurrency = strings.ToUpper(cfg.DefaultCurrency)

	day, ok := weekdays[strings.ToLower(v.GetString("first_weekday"))]
	if !ok {
		return nil, fmt.Errorf("invalid first_weekday %q", v.GetString("first_weekday"))
	}
	cfg.FirstWeekday = day

	if cfg.AheadMonths < 0 {
		return nil, fmt.Errorf("invalid ahead_months %d", cfg.AheadMonths)
	}
	return cfg, nil
}

// DocumentOptions returns the document options matching the preferences.
func (c *Config) DocumentOptions() []document.Option {
	return []document.Option{
		document.WithDefaultCurrency(c.DefaultCurrency),
		document.WithDateFormat(c.DateFormat),
		document.WithAutoDecimalPlace(c.AutoDecimalPlace),
	}
}

// Period returns the range of the named period around today: "week",
// "month", "year" or "running" (the running year with AheadMonths).
func (c *Config) Period(name string, today date.Date) (date.Range, error) {
	switch strings.ToLower(name) {
	case "week":
		return date.WeekRange(today, c.FirstWeekday), nil
	case "", "month":
		return date.MonthRange(today), nil
	case "year":
		return date.YearRange(today), nil
	case "running":
		return date.RunningYear(today, c.AheadMonths), nil
	}
	return date.Range{}, fmt.Errorf("unknown period %q", name)
}
