package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettings_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		in        Settings
		wantLead  int
		wantAfter int
	}{
		{"defaults untouched", DefaultSettings(), 5, 60},
		{"lead below range", Settings{LeadTimeSeconds: 1, DisableAfterMinutes: 10}, 5, 10},
		{"lead above range", Settings{LeadTimeSeconds: 90, DisableAfterMinutes: 10}, 60, 10},
		{"zero disable is the never sentinel", Settings{LeadTimeSeconds: 10, DisableAfterMinutes: 0}, 10, 0},
		{"disable below range", Settings{LeadTimeSeconds: 10, DisableAfterMinutes: 2}, 10, 5},
		{"disable above range", Settings{LeadTimeSeconds: 10, DisableAfterMinutes: 120}, 10, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			assert.Equal(t, tt.wantLead, got.LeadTimeSeconds)
			assert.Equal(t, tt.wantAfter, got.DisableAfterMinutes)
		})
	}
}

func TestParseGameMode(t *testing.T) {
	assert.Equal(t, GameModeTurbo, ParseGameMode("turbo"))
	assert.Equal(t, GameModeTurbo, ParseGameMode(" Accelerated "))
	assert.Equal(t, GameModeTurbo, ParseGameMode("23"))
	assert.Equal(t, GameModeNormal, ParseGameMode("normal"))
	assert.Equal(t, GameModeNormal, ParseGameMode(""))
	assert.Equal(t, "turbo", GameModeTurbo.String())
	assert.Equal(t, "normal", GameMode(9).String())
}

func TestPosition3D_String(t *testing.T) {
	assert.Equal(t, "-7232,-1472.5,256", Position3D{X: -7232, Y: -1472.5, Z: 256}.String())
}
