package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/rangefire/rangefire/internal/assets"
	"github.com/rangefire/rangefire/internal/audio"
	"github.com/rangefire/rangefire/internal/config"
	"github.com/rangefire/rangefire/internal/control"
	"github.com/rangefire/rangefire/internal/core/event"
	"github.com/rangefire/rangefire/internal/input"
	gonet "github.com/rangefire/rangefire/internal/net"
	"github.com/rangefire/rangefire/internal/persist"
	"github.com/rangefire/rangefire/internal/render"
	"github.com/rangefire/rangefire/internal/render/term"
	"github.com/rangefire/rangefire/internal/scripting"
	"github.com/rangefire/rangefire/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(session uuid.UUID) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             rangefire  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1msession:\033[0m %s\n\n", session)
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printSkip(msg string) {
	fmt.Printf("  \033[90m-\033[0m %s\n", msg)
}

// ── Main range logic ──────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger. The terminal renderer owns the screen, so logs go to a
	// file while it is enabled.
	if cfg.Terminal.Enabled && cfg.Logging.File == "" {
		cfg.Logging.File = "rangefire.log"
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	session := uuid.New()
	log = log.With(zap.Stringer("session", session))
	printBanner(session)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus()
	inputs := input.NewQueue(cfg.Loop.InputQueueSize)

	// 3. Scoring script
	printSection("scripting")
	var scorer world.Scorer = world.FlatScorer{}
	if luaEngine, err := scripting.NewEngine(cfg.Scripting.Dir, log); err != nil {
		log.Warn("lua engine unavailable, using flat scoring", zap.Error(err))
		printSkip("flat scoring")
	} else {
		defer luaEngine.Close()
		scorer = luaEngine
		printOK("lua scripts loaded")
	}

	// 4. Audio
	printSection("audio")
	var sounds audio.Bank = audio.Silent{}
	if cfg.Audio.Enabled {
		synth := audio.NewSynth(cfg.Audio.SampleRate, cfg.Audio.Volume, log)
		if err := synth.Start(); err != nil {
			log.Warn("audio unavailable, running silent", zap.Error(err))
			printSkip("silent")
		} else {
			defer synth.Close()
			sounds = synth
			printOK("speaker ready")
		}
	} else {
		printSkip("disabled")
	}

	// 5. Shot log
	printSection("database")
	var (
		shotLog  *persist.ShotLog
		shotRepo *persist.ShotRepo
	)
	if cfg.Database.Enabled {
		db, err := openDatabase(ctx, cfg.Database, log)
		switch {
		case err != nil && cfg.Database.Required:
			return fmt.Errorf("database: %w", err)
		case err != nil:
			log.Warn("database unavailable, shots will not be stored", zap.Error(err))
			printSkip("unavailable")
		default:
			defer db.Close()
			shotRepo = persist.NewShotRepo(db)
			if err := shotRepo.StartSession(ctx, session); err != nil {
				return fmt.Errorf("database: %w", err)
			}
			shotLog = persist.NewShotLog(shotRepo, session, cfg.Database.QueueSize, cfg.Database.FlushInterval, log)
			printOK("shot log ready")
		}
	} else {
		printSkip("disabled")
	}

	// 6. Presentation. Opened before the assets so the loading overlay and
	// the bridge are up while the world prepares.
	var (
		renderer render.Renderer  = render.NewScene()
		capturer control.Capturer = control.NopCapturer{}
		screen   *term.Terminal
	)
	if cfg.Terminal.Enabled {
		s, err := term.Open()
		if err != nil {
			log.Warn("terminal unavailable, running headless", zap.Error(err))
		} else {
			screen = term.New(s, bus, inputs, log)
			defer screen.Close()
			renderer, capturer = screen, screen
		}
	}

	var bridge *gonet.Server
	if cfg.Bridge.Enabled {
		bridge = gonet.NewServer(bus, inputs, cfg.Bridge.OutQueueSize, cfg.Bridge.WriteTimeout, log)
	}

	g, gctx := errgroup.WithContext(ctx)
	if bridge != nil {
		g.Go(func() error { return bridge.ListenAndServe(gctx, cfg.Bridge.BindAddress) })
	}
	if screen != nil {
		g.Go(func() error { return screen.Run(gctx) })
		screen.RenderFrame(0)
	}

	// 7. World
	deps := world.Deps{
		Assets:   assets.Loader{ModelsPath: cfg.Range.Models, ScenePath: cfg.Range.Scene, Log: log},
		Renderer: renderer,
		Capturer: capturer,
		Sounds:   sounds,
		Bus:      bus,
		Input:    inputs,
		Scorer:   scorer,
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		Log:      log,
	}
	if shotLog != nil {
		deps.Shots = shotLog
	}
	w := world.New(worldConfig(cfg), deps)
	if err := w.Init(gctx); err != nil {
		stop()
		if werr := g.Wait(); errors.Is(werr, term.ErrQuit) {
			return nil
		}
		return err
	}
	if screen == nil {
		lib := w.Library()
		printSection("assets")
		printStat("models", lib.Len())
		printStat("targets", len(lib.Scene().Targets))
	}

	g.Go(func() error { return w.Run(gctx) })
	if shotLog != nil {
		g.Go(func() error { return shotLog.Run(gctx) })
	}
	log.Info("range open",
		zap.Bool("terminal", screen != nil),
		zap.Bool("bridge", bridge != nil),
		zap.Bool("shot_log", shotLog != nil),
	)

	err = g.Wait()
	if errors.Is(err, term.ErrQuit) {
		err = nil
	}

	score := w.Score().State()
	log.Info("range closed",
		zap.Int("shots", score.Shots),
		zap.Int("hits", score.Hits),
		zap.Int("points", score.Points),
		zap.Uint64("frames", w.Frames()),
	)
	if shotRepo != nil {
		endCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shotRepo.EndSession(endCtx, session, score); err != nil {
			log.Error("end session", zap.Error(err))
		}
	}
	return err
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*persist.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if _, err := persist.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

func worldConfig(cfg *config.Config) world.Config {
	wc := world.DefaultConfig()
	wc.FrameInterval = cfg.FrameInterval()
	wc.MaxDelta = cfg.Loop.MaxDelta
	wc.MaxInputsPerFrame = cfg.Loop.MaxInputsPerFrame
	wc.MaxBulletHoles = cfg.Range.MaxBulletHoles
	wc.TargetDuration = float32(cfg.Range.TargetDuration)
	wc.BulletSpeed = float32(cfg.Weapon.BulletSpeed)
	wc.BulletLifetime = float32(cfg.Weapon.BulletLifetime)
	wc.MoveSpeed = float32(cfg.Player.MoveSpeed)
	wc.HeadHeight = float32(cfg.Player.HeadHeight)
	wc.Controls = control.Config{
		Capacity:     cfg.Weapon.Capacity,
		ReloadTime:   float32(cfg.Weapon.ReloadTime),
		ShotInterval: float32(cfg.Weapon.ShotInterval),
		LookSpeed:    float32(cfg.Player.LookSpeed),
	}
	return wc
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		if cfg.File == "" {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
