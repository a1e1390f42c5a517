// Package hostapi is the call surface the host sees: a command name plus
// string arguments in, a JSON array string out.
//
//	["ok", command]              handler returned nothing
//	["ok", command, result]      handler returned a value
//	["error", command, message]  handler failed or is unknown
package hostapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tormentor-esp/extension/internal/dispatcher"
)

const (
	CommandVersion   = ":VERSION:"
	CommandTimestamp = ":TIMESTAMP:"

	// ArgSeparator splits a single-string call ("cmd|a|b") into arguments.
	ArgSeparator = "|"
)

// Host routes calls to a dispatcher.
type Host struct {
	dispatcher *dispatcher.Dispatcher
	version    string
	now        func() time.Time
}

func New(d *dispatcher.Dispatcher, version string) *Host {
	if version == "" {
		version = "No version set"
	}
	return &Host{dispatcher: d, version: version, now: time.Now}
}

func (h *Host) Version() string { return h.version }

// Call dispatches command with args and formats the reply.
func (h *Host) Call(command string, args []string) string {
	switch command {
	case CommandVersion:
		return FormatResponse(command, h.version, nil)
	case CommandTimestamp:
		return FormatResponse(command, strconv.FormatInt(h.now().UTC().UnixNano(), 10), nil)
	}
	if h.dispatcher == nil || !h.dispatcher.HasHandler(command) {
		return FormatResponse(command, nil, fmt.Errorf("no handler registered"))
	}

	result, err := h.dispatcher.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: h.now(),
	})
	return FormatResponse(command, result, err)
}

// CallString handles the single-string form "command|arg1|arg2".
func (h *Host) CallString(input string) string {
	parts := strings.Split(input, ArgSeparator)
	return h.Call(parts[0], parts[1:])
}

// FormatResponse renders a handler outcome as a JSON array.
func FormatResponse(command string, result any, err error) string {
	var reply []any
	switch {
	case err != nil:
		reply = []any{"error", command, err.Error()}
	case result == nil:
		reply = []any{"ok", command}
	default:
		reply = []any{"ok", command, result}
	}

	data, merr := json.Marshal(reply)
	if merr != nil {
		data, _ = json.Marshal([]any{"error", command, merr.Error()})
	}
	return string(data)
}

// Truncate cuts a reply to fit an output buffer of size bytes including
// the terminating NUL.
func Truncate(reply string, size int) string {
	if size <= 0 {
		return ""
	}
	if len(reply) < size {
		return reply
	}
	return reply[:size-1]
}
