package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/procballs/audio"
	"github.com/lixenwraith/procballs/config"
	"github.com/lixenwraith/procballs/constants"
	"github.com/lixenwraith/procballs/core"
	"github.com/lixenwraith/procballs/engine"
	"github.com/lixenwraith/procballs/process"
	"github.com/lixenwraith/procballs/status"
	"github.com/lixenwraith/procballs/telemetry"
)

const version = "0.3.0"

const (
	logDir      = constants.LogDir
	logFileName = constants.LogFileName
	maxLogSize  = constants.MaxLogSize
)

var (
	configFlag = flag.String("config", "", "Path to a TOML config file")
	sourceFlag = flag.String("source", "", "Process source: ps, native")
	colorFlag  = flag.String("color", "", "Color mode: auto, truecolor, 256")
	debugFlag  = flag.Bool("debug", false, "Write a debug log to "+filepath.Join(logDir, logFileName))
	traceFlag  = flag.String("trace", "", "Write reconcile spans as JSON to this file")
	soundFlag  = flag.Bool("sound", false, "Play spawn/exit cues")
	userFlag   = flag.String("user", "", "Primary user whose processes are shown")
	widthFlag  = flag.Int("width", 0, "Canvas width in pixels; starts immediately (0 = fit)")
	heightFlag = flag.Int("height", 0, "Canvas height in pixels; starts immediately (0 = fit)")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	if logFile := setupLogging(cfg.Debug); logFile != nil {
		defer logFile.Close()
	}
	log.Printf("procballs %s run=%s source=%s primary=%s secondary=%s",
		version, telemetry.RunID, cfg.Source, cfg.Primary.User, cfg.Secondary.User)

	if err := run(cfg); err != nil {
		log.Printf("exit: %v", err)
		fmt.Fprintf(os.Stderr, "procballs: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers command-line flags over the file and environment
// Only flags given explicitly override
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return cfg, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source = *sourceFlag
		case "color":
			cfg.ColorMode = *colorFlag
		case "debug":
			cfg.Debug = *debugFlag
		case "trace":
			cfg.TraceFile = *traceFlag
		case "sound":
			cfg.Sound = *soundFlag
		case "user":
			cfg.Primary.User = *userFlag
		case "width":
			cfg.Width = *widthFlag
			cfg.AutoStart = true
		case "height":
			cfg.Height = *heightFlag
			cfg.AutoStart = true
		}
	})

	return cfg, cfg.Validate()
}

func run(cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	shutdown, err := telemetry.Init(version, cfg.TraceFile)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer flushCancel()
		if serr := shutdown(flushCtx); serr != nil {
			log.Printf("telemetry shutdown: %v", serr)
		}
	}()

	source, err := process.Open(ctx, cfg.Source, cfg.SnapshotTimeout.Duration)
	if err != nil {
		return err
	}
	if closer, ok := source.(io.Closer); ok {
		defer closer.Close()
	}

	applyColorMode(cfg.ColorMode)
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initialize terminal: %w", err)
	}
	// Normal exit terminal cleanup
	defer screen.Fini()
	core.SetCrashCleanup(screen.Fini)

	// Panic Recovery: Ensure terminal is reset even if the loop crashes
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mPROCBALLS CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	reg := status.NewRegistry()
	opts := []engine.MonitorOption{
		engine.WithRegistry(reg),
		engine.WithSnapshotTimeout(cfg.SnapshotTimeout.Duration),
	}
	if cfg.Seed != 0 {
		opts = append(opts, engine.WithRand(rand.New(rand.NewSource(cfg.Seed))))
	}

	if cfg.Sound {
		sm := audio.NewSoundManager(cfg.Volume)
		if err := sm.Initialize(); err != nil {
			// Non-fatal, runs without sound
			log.Printf("Audio initialization failed: %v (continuing without audio)", err)
		} else {
			defer sm.Cleanup()
			opts = append(opts, engine.WithCues(sm))
		}
	}

	monitor := engine.NewMonitor(source, cfg.Profiles(), opts...)
	game := engine.NewGame(screen, monitor, reg, cfg)
	return game.Run(ctx)
}

// applyColorMode steers tcell's color detection through its environment switches
func applyColorMode(mode string) {
	switch mode {
	case "256":
		os.Setenv("TCELL_TRUECOLOR", "disable")
	case "truecolor", "true", "24bit":
		os.Setenv("COLORTERM", "truecolor")
	}
}

// setupLogging sends the standard logger to a rotating file when debug is set
// Otherwise logs are discarded since the terminal belongs to the canvas
func setupLogging(debug bool) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	var rotateErr error
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotateErr = os.Rename(logPath, rotatedLogPath())
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if rotateErr != nil {
		log.Printf("log rotation failed, appending to %s: %v", logPath, rotateErr)
	}
	return f
}

// rotatedLogPath names the archive for an oversized log
var rotatedLogPath = func() string {
	return filepath.Join(logDir,
		fmt.Sprintf("procballs-%s.log", time.Now().Format("20060102-150405")))
}
