package parser

import (
	"fmt"

	"github.com/tormentor-esp/extension/pkg/core"
)

// ParseSettings parses [enabled, pingEnabled, leadTimeSeconds,
// disableAfterMinutes]. The result is normalized.
func (p *Parser) ParseSettings(data []string) (core.Settings, error) {
	var s core.Settings

	a, err := args(":SETTINGS:", data, 4)
	if err != nil {
		return s, err
	}
	if s.Enabled, err = parseBool(a[0]); err != nil {
		return s, fmt.Errorf("error parsing enabled: %w", err)
	}
	if s.PingEnabled, err = parseBool(a[1]); err != nil {
		return s, fmt.Errorf("error parsing pingEnabled: %w", err)
	}
	lead, err := parseIntFromFloat(a[2])
	if err != nil {
		return s, fmt.Errorf("error converting leadTimeSeconds to int: %w", err)
	}
	disable, err := parseIntFromFloat(a[3])
	if err != nil {
		return s, fmt.Errorf("error converting disableAfterMinutes to int: %w", err)
	}
	s.LeadTimeSeconds = int(lead)
	s.DisableAfterMinutes = int(disable)

	normalized := s.Normalize()
	if normalized != s {
		p.logger.Debug("settings clamped", "received", s, "applied", normalized)
	}
	return normalized, nil
}
