package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateIdentity(); err != nil {
		return err
	}
	if err := c.validateDedupe(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateIdentity() error {
	region := c.Identity.DefaultRegion
	if region == "" {
		return errors.New("identity.default_region must be set")
	}
	if len(region) > 3 {
		return fmt.Errorf("identity.default_region %q is too long for a country calling code", region)
	}
	for _, r := range region {
		if r < '0' || r > '9' {
			return fmt.Errorf("identity.default_region %q must contain only digits", region)
		}
	}
	return nil
}

func (c *Config) validateDedupe() error {
	d := c.Dedupe
	if d.Threshold < 0 || d.Threshold > 1 {
		return errors.New("dedupe.threshold must be between 0 and 1")
	}
	if d.MinNameSimilarity < 0 || d.MinNameSimilarity > 1 {
		return errors.New("dedupe.min_name_similarity must be between 0 and 1")
	}
	for name, w := range map[string]float64{
		"dedupe.identifier_weight": d.IdentifierWeight,
		"dedupe.name_weight":       d.NameWeight,
		"dedupe.chat_weight":       d.ChatWeight,
	} {
		if w < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	sum := d.IdentifierWeight + d.NameWeight + d.ChatWeight
	if sum == 0 {
		return errors.New("dedupe weights must not all be zero")
	}
	if math.Abs(sum-1) > 0.01 {
		return fmt.Errorf("dedupe weights must sum to 1.0, got %.2f", sum)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
