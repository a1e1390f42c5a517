// Command tormentor_replay runs a YAML match scenario through the tracker
// and prints the spawn notifications it fires.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/tormentor-esp/extension/internal/config"
	"github.com/tormentor-esp/extension/internal/logging"
	"github.com/tormentor-esp/extension/internal/replay"
	"github.com/tormentor-esp/extension/internal/storage"
	"github.com/tormentor-esp/extension/internal/storage/memory"
	"github.com/tormentor-esp/extension/internal/util"
	"github.com/tormentor-esp/extension/pkg/core"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	flags := pflag.NewFlagSet("tormentor_replay", pflag.ContinueOnError)
	outDir := flags.StringP("out", "o", "", "export the match journal to this directory")
	asJSON := flags.Bool("json", false, "print the result as JSON")
	level := flags.String("log-level", "warn", "log level")
	if err := flags.Parse(argv); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tormentor_replay [flags] scenario.yaml")
		flags.PrintDefaults()
		return 2
	}

	sm := logging.NewSlogManager()
	sm.Setup(logging.Options{File: os.Stderr, Level: *level})
	logger := sm.Logger()

	scenario, err := replay.Load(flags.Arg(0))
	if err != nil {
		logger.Error("Failed to load scenario", "error", err, "path", flags.Arg(0))
		return 1
	}

	var backend storage.Backend = storage.Nop{}
	var mem *memory.Backend
	if *outDir != "" {
		mem = memory.New(config.MemoryConfig{OutputDir: *outDir})
		if err := mem.Init(); err != nil {
			logger.Error("Failed to init export", "error", err)
			return 1
		}
		backend = mem
	}

	opts := replay.Options{Backend: backend, Logger: logger}
	if !*asJSON {
		opts.OnNotification = func(n core.NotificationEvent) {
			fmt.Printf("%8.1f  spawner %-6d in %-5s  expires %.1f\n",
				n.FiredAt, n.SpawnerID, util.FormatCountdown(n.Remaining), n.ExpireAt)
		}
	}

	res, err := replay.Run(scenario, opts)
	if err != nil {
		logger.Error("Replay failed", "error", err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			logger.Error("Failed to encode result", "error", err)
			return 1
		}
	} else {
		fmt.Printf("session %s: %d ticks, %d notifications\n", res.Session, res.Ticks, len(res.Notifications))
	}
	if mem != nil {
		logger.Info("Match exported", "path", mem.ExportedFilePath())
	}

	for _, e := range res.Errors {
		logger.Error("Command rejected", "at", e.At, "command", e.Command, "error", e.Error)
	}
	if len(res.Errors) > 0 {
		return 1
	}
	return 0
}
