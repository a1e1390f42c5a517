// Package parser converts raw host arguments into typed tracker inputs. It
// does no state changes of its own.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/tormentor-esp/extension/internal/geo"
	"github.com/tormentor-esp/extension/internal/util"
	"github.com/tormentor-esp/extension/pkg/core"
)

// ErrMissingArgs is returned when a command carries fewer arguments than it
// needs.
var ErrMissingArgs = errors.New("missing arguments")

// parseUintFromFloat parses "32" or "32.00" into a uint64. Hosts that only
// have a number type send integers as floats.
func parseUintFromFloat(s string) (uint64, error) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != float64(uint64(f)) {
		return 0, fmt.Errorf("parseUintFromFloat: %q is not a valid uint64", s)
	}
	return uint64(f), nil
}

// parseIntFromFloat is parseUintFromFloat for signed values.
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "1.0", "yes":
		return true, nil
	case "false", "0", "0.0", "no", "":
		return false, nil
	}
	return false, fmt.Errorf("parseBool: %q is not a boolean", s)
}

// Parser holds nothing but a logger; every method is a pure conversion.
type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// args cleans host quoting and checks the argument count.
func args(command string, data []string, n int) ([]string, error) {
	if len(data) < n {
		return nil, fmt.Errorf("%s: %w: want %d, got %d", command, ErrMissingArgs, n, len(data))
	}
	return util.CleanArgs(data), nil
}

func parseEntityID(field, s string) (uint32, error) {
	v, err := parseUintFromFloat(s)
	if err != nil {
		return 0, fmt.Errorf("error converting %s to uint: %w", field, err)
	}
	if v > 1<<32-1 {
		return 0, fmt.Errorf("error converting %s to uint: %d overflows uint32", field, v)
	}
	return uint32(v), nil
}

func parsePosition(field, s string) (core.Position3D, error) {
	pos, err := geo.PositionFromString(s)
	if err != nil {
		return pos, fmt.Errorf("error parsing %s: %w", field, err)
	}
	return pos, nil
}

func parseSeconds(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting %s to float: %w", field, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("error parsing %s: non-finite value %q", field, s)
	}
	return v, nil
}
