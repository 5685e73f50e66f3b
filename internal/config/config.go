// Package config defines process configuration and its loading hooks.
package config

import (
	"fmt"
	"time"

	"github.com/okian/teamsplit/internal/domain/roster"
	"github.com/okian/teamsplit/internal/domain/topk"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// HistoryPath points at the CSV or XLSX results export.
	HistoryPath string `koanf:"history_path"`

	// HistorySheet selects the worksheet of an XLSX export; empty means the first.
	HistorySheet string `koanf:"history_sheet"`

	// WinMarker, LossMarker and EndMarker describe the spreadsheet cells.
	WinMarker  string `koanf:"win_marker"`
	LossMarker string `koanf:"loss_marker"`
	EndMarker  string `koanf:"end_marker"`

	// Timezone decides the calendar date used in tie-break seeds.
	Timezone string `koanf:"timezone"`

	// RosterOrder is "history" (spreadsheet column order) or "online".
	RosterOrder string `koanf:"roster_order"`

	// ReportLimit caps how many of the best splits are printed.
	ReportLimit int `koanf:"report_limit"`

	// RateLimitRPS and RateLimitBurst bound POST /proposals.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		WinMarker:      "W",
		LossMarker:     "L",
		EndMarker:      "End data",
		Timezone:       "Local",
		RosterOrder:    string(roster.OrderHistory),
		ReportLimit:    topk.Capacity,
		RateLimitRPS:   5,
		RateLimitBurst: 10,
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WinMarker == "" || c.LossMarker == "":
		return fmt.Errorf("%w: win_marker and loss_marker must not be empty", ErrInvalidConfig)
	case c.WinMarker == c.LossMarker:
		return fmt.Errorf("%w: win_marker and loss_marker must differ", ErrInvalidConfig)
	case c.ReportLimit < 1 || c.ReportLimit > topk.Capacity:
		return fmt.Errorf("%w: report_limit must be between 1 and %d", ErrInvalidConfig, topk.Capacity)
	case c.RateLimitRPS <= 0 || c.RateLimitBurst < 1:
		return fmt.Errorf("%w: rate limits must be positive", ErrInvalidConfig)
	}
	if _, err := roster.ParseOrder(c.RosterOrder); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
