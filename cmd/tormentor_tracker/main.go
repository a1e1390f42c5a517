package main

/*
#include <stdlib.h>
#include <stdio.h>
#include <string.h>
*/
import "C"

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unsafe"

	"github.com/tormentor-esp/extension/internal/api"
	"github.com/tormentor-esp/extension/internal/clock"
	"github.com/tormentor-esp/extension/internal/config"
	"github.com/tormentor-esp/extension/internal/dispatcher"
	"github.com/tormentor-esp/extension/internal/influx"
	"github.com/tormentor-esp/extension/internal/logging"
	"github.com/tormentor-esp/extension/internal/match"
	"github.com/tormentor-esp/extension/internal/monitor"
	intOtel "github.com/tormentor-esp/extension/internal/otel"
	"github.com/tormentor-esp/extension/internal/parser"
	"github.com/tormentor-esp/extension/internal/storage"
	"github.com/tormentor-esp/extension/internal/ticker"
	"github.com/tormentor-esp/extension/internal/tracker"
	"github.com/tormentor-esp/extension/internal/worker"
	"github.com/tormentor-esp/extension/pkg/core"
	"github.com/tormentor-esp/extension/pkg/hostapi"
)

// BuildDate can be set at build time via ldflags
var (
	CurrentExtensionVersion string = "0.0.1"
	BuildDate               string = "unknown"

	ExtensionName string = "tormentor_tracker"
)

var (
	// ModuleFolder holds the library file and its config. Falls back to the
	// working directory when the loader path is unknown.
	ModuleFolder string

	LogFilePath string
	LogFile     *os.File
)

var (
	host *hostapi.Host

	slogManager  *logging.SlogManager
	Logger       *slog.Logger
	otelProvider *intOtel.Provider

	backend  *storage.Multi
	journal  *worker.Journal
	monSvc   *monitor.Service
	disp     *dispatcher.Dispatcher
	graylog  io.WriteCloser
	cancelFn context.CancelFunc

	closeOnce sync.Once
)

// settingsStore serializes reads and host updates of the feature settings.
type settingsStore struct {
	mu sync.RWMutex
	s  core.Settings
}

func (st *settingsStore) Get() core.Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

func (st *settingsStore) Set(s core.Settings) core.Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = config.SetSettings(s)
	return st.s
}

func init() {
	slogManager = logging.NewSlogManager()
	slogManager.Setup(logging.Options{Level: "info"})
	Logger = slogManager.Logger()

	ModuleFolder = resolveModuleFolder()
	if err := setup(); err != nil {
		Logger.Error("Extension setup failed, commands will report errors", "error", err)
	}
}

func resolveModuleFolder() string {
	if p := modulePath(); p != "" {
		return filepath.Dir(p)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func setup() error {
	if err := config.Load(ModuleFolder); err != nil {
		// defaults still apply
		Logger.Warn("Using default config", "error", err, "dir", ModuleFolder)
	}

	logsDir := config.GetString("logsDir")
	if !filepath.IsAbs(logsDir) {
		logsDir = filepath.Join(ModuleFolder, logsDir)
	}

	var err error
	LogFilePath = logging.LogFilePath(logsDir, ExtensionName, time.Now())
	LogFile, err = logging.OpenLogFile(LogFilePath)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	level := config.GetString("logLevel")

	if gc := config.GetGraylogConfig(); gc.Enabled {
		graylog, err = logging.NewGraylogWriter(gc.Address, ExtensionName)
		if err != nil {
			Logger.Warn("Graylog disabled", "error", err, "address", gc.Address)
			graylog = nil
		}
	}

	oc := config.GetOTelConfig()
	otelProvider, err = intOtel.New(intOtel.Config{
		Enabled:      oc.Enabled,
		ServiceName:  oc.ServiceName,
		BatchTimeout: oc.BatchTimeout,
		LogWriter:    LogFile,
		Endpoint:     oc.Endpoint,
		Insecure:     oc.Insecure,
	})
	if err != nil {
		Logger.Warn("OTel disabled", "error", err)
		otelProvider, _ = intOtel.New(intOtel.Config{})
	}

	matchCtx := match.NewContext()
	opts := logging.Options{
		File:     LogFile,
		Level:    level,
		Provider: otelProvider.LoggerProvider(),
		Context:  matchCtx.LogAttrs,
	}
	if graylog != nil {
		opts.Graylog = graylog
	}
	slogManager.Setup(opts)
	Logger = slogManager.Logger()
	Logger.Info("Starting extension",
		"version", CurrentExtensionVersion,
		"buildDate", BuildDate,
		"moduleFolder", ModuleFolder,
		"logFile", LogFilePath)

	zlog := logging.NewZerolog(LogFile, level)

	backend, err = storage.NewBackend(config.GetStorageConfig(), zlog, Logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if ic := config.GetInfluxConfig(); ic.Enabled {
		backend.Add("influx", influx.NewManager(ic, filepath.Join(logsDir, "influx_backup.log.gz"), zlog))
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Storage init failed", "error", err, "backends", backend.Names())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancelFn = cancel

	var sink storage.Backend = backend
	if uc := config.GetUploadConfig(); uc.Enabled {
		client := api.New(uc.URL, uc.Secret)
		hctx, hcancel := context.WithTimeout(ctx, 5*time.Second)
		if err := client.Healthcheck(hctx); err != nil {
			Logger.Warn("Archive service not reachable, uploads may fail", "error", err, "url", uc.URL)
		}
		hcancel()
		sink = api.NewUploader(backend, client, zlog)
	}

	journal = worker.NewJournal(sink, config.JournalLimit(), Logger)
	journal.Start(ctx)

	settings := &settingsStore{s: config.Settings()}
	hostClock := clock.NewHostClock()
	trk, err := tracker.New(tracker.Dependencies{
		Clock:    hostClock,
		Settings: settings.Get,
		Recorder: journal,
		Logger:   Logger,
	})
	if err != nil {
		return fmt.Errorf("tracker: %w", err)
	}
	outbox := worker.NewOutbox(config.OutboxLimit())

	monSvc = monitor.NewService(monitor.Dependencies{
		Tracker:    trk,
		Clock:      hostClock,
		Match:      matchCtx,
		Journal:    journal,
		Outbox:     outbox,
		Settings:   settings.Get,
		Backends:   backend.Names(),
		Version:    CurrentExtensionVersion,
		StatusPath: filepath.Join(logsDir, "status.json"),
		Interval:   config.StatusInterval(),
		Logger:     Logger,
	})
	monSvc.Start(ctx)

	manager := worker.NewManager(worker.Dependencies{
		Tracker:     trk,
		Clock:       hostClock,
		Parser:      parser.NewParser(Logger),
		Match:       matchCtx,
		Journal:     journal,
		Outbox:      outbox,
		Settings:    settings.Get,
		SetSettings: settings.Set,
		Status:      func() any { return monSvc.Status(false) },
		Version:     CurrentExtensionVersion,
		Logger:      Logger,
	})

	disp, err = dispatcher.New(logging.NewDispatcherLogger(zlog))
	if err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}
	manager.RegisterHandlers(disp)
	host = hostapi.New(disp, CurrentExtensionVersion)

	if config.AutoTick() {
		drv := ticker.New(func() { host.Call(":TICK:", nil) }, config.TickInterval())
		go func() {
			if err := drv.Run(ctx); err != nil && ctx.Err() == nil {
				Logger.Error("Tick driver stopped", "error", err)
			}
		}()
		Logger.Info("Auto tick enabled", "interval", config.TickInterval())
	}

	Logger.Info("Extension ready", "commands", len(disp.Commands()), "backends", backend.Names())
	return nil
}

func shutdown() {
	closeOnce.Do(func() {
		if cancelFn != nil {
			cancelFn()
		}
		if monSvc != nil {
			monSvc.Stop()
			if err := monSvc.WriteStatusFile(); err != nil {
				Logger.Warn("Final status write failed", "error", err)
			}
		}
		if journal != nil {
			journal.Close()
		}
		if disp != nil {
			disp.Close()
		}
		if backend != nil {
			if err := backend.Close(); err != nil {
				Logger.Error("Storage close failed", "error", err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := slogManager.Flush(ctx); err != nil {
			Logger.Warn("Log flush failed", "error", err)
		}
		if otelProvider != nil {
			_ = otelProvider.Shutdown(ctx)
		}
		if graylog != nil {
			_ = graylog.Close()
		}
		if LogFile != nil {
			_ = LogFile.Sync()
		}
	})
}

func call(command string, args []string) string {
	if host == nil {
		return hostapi.FormatResponse(command, nil, fmt.Errorf("extension not initialized"))
	}
	return host.Call(command, args)
}

// called by the host to read the extension version
//
//export TrackerVersion
func TrackerVersion(output *C.char, outputsize C.size_t) {
	reply(CurrentExtensionVersion, output, outputsize)
}

// called by the host as "command|arg1|arg2"
//
//export TrackerCallString
func TrackerCallString(output *C.char, outputsize C.size_t, input *C.char) {
	if host == nil {
		reply(call(C.GoString(input), nil), output, outputsize)
		return
	}
	reply(host.CallString(C.GoString(input)), output, outputsize)
}

// called by the host with a command and an argument array
//
//export TrackerCall
func TrackerCall(output *C.char, outputsize C.size_t, input *C.char, argv **C.char, argc C.int) {
	reply(call(C.GoString(input), argsFromC(argv, argc)), output, outputsize)
}

// called by the host when it unloads the extension
//
//export TrackerClose
func TrackerClose() {
	shutdown()
}

func argsFromC(argv **C.char, argc C.int) []string {
	if argc <= 0 || argv == nil {
		return nil
	}
	raw := unsafe.Slice(argv, int(argc))
	args := make([]string, len(raw))
	for i, p := range raw {
		args[i] = C.GoString(p)
	}
	return args
}

// reply copies s into the host's output buffer, NUL-terminated.
func reply(s string, output *C.char, outputsize C.size_t) {
	s = hostapi.Truncate(s, int(outputsize))
	if outputsize == 0 {
		return
	}
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	C.memmove(unsafe.Pointer(output), unsafe.Pointer(cs), C.size_t(len(s)+1))
}

func main() {}
