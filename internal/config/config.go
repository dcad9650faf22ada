package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Fundamentals struct {
		File string `yaml:"file"`
	} `yaml:"fundamentals"`
	Market struct {
		Timezone       string   `yaml:"timezone"`
		OpenTime       string   `yaml:"open_time"`
		SessionMinutes int      `yaml:"session_minutes"`
		TradingDays    []string `yaml:"trading_days"`
	} `yaml:"market"`
	Schedule struct {
		// Snapshot runs evaluate provisional bars; the closing run expects
		// the day's final candle to be in the store.
		SnapshotCrons []string `yaml:"snapshot_crons"`
		ClosingCron   string   `yaml:"closing_cron"`
	} `yaml:"schedule"`
	Thresholds struct {
		RVOL         float64 `yaml:"rvol"`
		QuietMovePct float64 `yaml:"quiet_move_pct"`
		LowCap       float64 `yaml:"low_cap"`
		HighCap      float64 `yaml:"high_cap"`
		PennyMovePct float64 `yaml:"penny_move_pct"`
		MinVolume    int64   `yaml:"min_volume"`
		StopLossPct  float64 `yaml:"stop_loss_pct"`
	} `yaml:"thresholds"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Report struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"report"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("FUNDAMENTALS_FILE"); v != "" {
		cfg.Fundamentals.File = v
	}
	if v := os.Getenv("MARKET_TIMEZONE"); v != "" {
		cfg.Market.Timezone = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("STOP_LOSS_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Thresholds.StopLossPct = f
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/sniper.db"
	}
	if c.Fundamentals.File == "" {
		c.Fundamentals.File = "data/fundamentals.yaml"
	}
	if c.Market.Timezone == "" {
		c.Market.Timezone = "Asia/Dhaka"
	}
	if c.Market.OpenTime == "" {
		c.Market.OpenTime = "10:00"
	}
	if c.Market.SessionMinutes == 0 {
		c.Market.SessionMinutes = 270
	}
	if len(c.Market.TradingDays) == 0 {
		c.Market.TradingDays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday"}
	}
	if len(c.Schedule.SnapshotCrons) == 0 {
		// Two intraday evaluations during the 10:00-14:30 session.
		c.Schedule.SnapshotCrons = []string{"0 0 11 * * *", "0 0 13 * * *"}
	}
	if c.Schedule.ClosingCron == "" {
		// After the close, once the final candle has landed.
		c.Schedule.ClosingCron = "0 45 14 * * *"
	}
	if c.Thresholds.RVOL == 0 {
		c.Thresholds.RVOL = 2.5
	}
	if c.Thresholds.QuietMovePct == 0 {
		c.Thresholds.QuietMovePct = 0.02
	}
	if c.Thresholds.LowCap == 0 {
		c.Thresholds.LowCap = 50
	}
	if c.Thresholds.HighCap == 0 {
		c.Thresholds.HighCap = 500
	}
	if c.Thresholds.PennyMovePct == 0 {
		c.Thresholds.PennyMovePct = 0.005
	}
	if c.Thresholds.MinVolume == 0 {
		c.Thresholds.MinVolume = 50000
	}
	if c.Thresholds.StopLossPct == 0 {
		c.Thresholds.StopLossPct = 0.07
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "outputs/signals"
	}
}

// TradingWeekdays parses the configured day names.
func (c *Config) TradingWeekdays() ([]time.Weekday, error) {
	names := map[string]time.Weekday{
		"Sunday": time.Sunday, "Monday": time.Monday, "Tuesday": time.Tuesday,
		"Wednesday": time.Wednesday, "Thursday": time.Thursday,
		"Friday": time.Friday, "Saturday": time.Saturday,
	}
	out := make([]time.Weekday, 0, len(c.Market.TradingDays))
	for _, name := range c.Market.TradingDays {
		d, ok := names[name]
		if !ok {
			return nil, fmt.Errorf("unknown trading day %q", name)
		}
		out = append(out, d)
	}
	return out, nil
}

// Validate checks that all required fields make sense.
func (c *Config) Validate() error {
	if c.Market.SessionMinutes <= 0 {
		return fmt.Errorf("market.session_minutes must be positive")
	}
	if c.Thresholds.StopLossPct <= 0 || c.Thresholds.StopLossPct >= 1 {
		return fmt.Errorf("thresholds.stop_loss_pct must be in (0,1)")
	}
	if c.Thresholds.RVOL <= 0 {
		return fmt.Errorf("thresholds.rvol must be positive")
	}
	if _, err := c.TradingWeekdays(); err != nil {
		return err
	}
	return nil
}
