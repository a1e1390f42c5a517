// pkg/core/settings.go
package core

// Settings is the user-facing configuration of the tracker. The host owns
// it; the tracker only reads it.
type Settings struct {
	Enabled             bool `json:"enabled" mapstructure:"enabled"`
	PingEnabled         bool `json:"pingEnabled" mapstructure:"pingEnabled"`
	LeadTimeSeconds     int  `json:"leadTimeSeconds" mapstructure:"leadTimeSeconds"`
	DisableAfterMinutes int  `json:"disableAfterMinutes" mapstructure:"disableAfterMinutes"`
}

// Lead time and late-game cut-off bounds. A DisableAfterMinutes of 0 means
// notifications are never turned off.
const (
	MinLeadTimeSeconds     = 5
	MaxLeadTimeSeconds     = 60
	MinDisableAfterMinutes = 5
	MaxDisableAfterMinutes = 60
)

// DefaultSettings mirrors the overlay menu defaults.
func DefaultSettings() Settings {
	return Settings{
		Enabled:             true,
		PingEnabled:         false,
		LeadTimeSeconds:     MinLeadTimeSeconds,
		DisableAfterMinutes: MaxDisableAfterMinutes,
	}
}

// Normalize clamps the numeric settings into their allowed ranges.
func (s Settings) Normalize() Settings {
	s.LeadTimeSeconds = clamp(s.LeadTimeSeconds, MinLeadTimeSeconds, MaxLeadTimeSeconds)
	if s.DisableAfterMinutes != 0 {
		s.DisableAfterMinutes = clamp(s.DisableAfterMinutes, MinDisableAfterMinutes, MaxDisableAfterMinutes)
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
