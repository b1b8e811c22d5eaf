// Package main is the wayfinder CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tactilepath/wayfinder/internal/cli"
	"github.com/tactilepath/wayfinder/internal/config"
	"github.com/tactilepath/wayfinder/internal/genai"
	"github.com/tactilepath/wayfinder/internal/generator"
	"github.com/tactilepath/wayfinder/internal/importer"
	"github.com/tactilepath/wayfinder/internal/models"
	"github.com/tactilepath/wayfinder/internal/roomsearch"
	"github.com/tactilepath/wayfinder/internal/server"
	"github.com/tactilepath/wayfinder/internal/steps"
	"github.com/tactilepath/wayfinder/internal/storage"
	"github.com/tactilepath/wayfinder/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/wayfinder/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// .env is optional; the generation API key usually lives there in dev.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "import":
		runImport()
	case "generate":
		runGenerate()
	case "adjust":
		runAdjust()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("wayfinder version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: wayfinder <command> [options]

Commands:
  server     Start the Wayfinder API server
  import     Import floorplan JSON files
  generate   Generate navigation instructions (--path or --floor)
  adjust     Rescale step counts in instruction text (--step-size)
  status     Show storage statistics
  version    Print version`)
}

// components holds the wired application dependencies.
type components struct {
	Storage *storage.SQLiteStorage
	Rooms   *roomsearch.Index
	Logger  *zap.Logger
}

func initComponents(cfg *config.Config, debug bool) (*components, error) {
	logger, err := utils.NewLogger(debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	rooms, err := roomsearch.NewIndex(cfg.Storage.RoomIndexPath)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to open room index: %w", err)
	}
	return &components{Storage: st, Rooms: rooms, Logger: logger}, nil
}

func (c *components) Close() {
	_ = c.Rooms.Close()
	_ = c.Storage.Close()
	_ = c.Logger.Sync()
}

func newGenerator(cfg *config.Config, c *components) (*generator.Generator, error) {
	client, err := genai.NewClient(genai.Config{
		BaseURL:   cfg.Generation.BaseURL,
		APIKeyEnv: cfg.Generation.APIKeyEnv,
		Model:     cfg.Generation.Model,
		Timeout:   cfg.Generation.Timeout(),
	})
	if err != nil {
		return nil, err
	}
	return generator.New(c.Storage, client, c.Logger,
		generator.WithBatchSize(cfg.Generation.BatchSize)), nil
}

func mustLoad(configPath *string, debug *bool) (*config.Config, *components) {
	cfg, resolved, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	c, err := initComponents(cfg, cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	c.Logger.Debug("config loaded", zap.String("config_path", resolved))
	return cfg, c
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, c := mustLoad(configPath, debug)
	defer c.Close()

	gen, err := newGenerator(cfg, c)
	if err != nil {
		c.Logger.Fatal("Failed to create generation client", zap.Error(err))
	}

	im := importer.New(c.Storage, c.Rooms, c.Logger)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if len(cfg.Import.Directories) > 0 {
		w := importer.NewWatcher(im, cfg.Import.Directories, cfg.Import.Extensions, c.Logger)
		if err := w.Start(watchCtx); err != nil {
			c.Logger.Fatal("Failed to start import watcher", zap.Error(err))
		}
		defer w.Stop()
		w.SyncExistingFiles(watchCtx)
	}

	srv := server.NewServer(c.Storage, gen, c.Rooms, cfg, c.Logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			c.Logger.Fatal("Server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		c.Logger.Info("Shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			c.Logger.Error("Shutdown failed", zap.Error(err))
		}
	}
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	files := fs.Args()
	if len(files) == 0 {
		fmt.Println("Usage: wayfinder import [options] <file.json> [file.json...]")
		os.Exit(1)
	}

	_, c := mustLoad(configPath, debug)
	defer c.Close()

	im := importer.New(c.Storage, c.Rooms, c.Logger)
	ctx := context.Background()
	for _, f := range files {
		if err := im.ImportFile(ctx, f); err != nil {
			fmt.Printf("Failed to import %s: %v\n", f, err)
			os.Exit(1)
		}
		fmt.Printf("Imported %s\n", f)
	}
}

func runGenerate() {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	pathID := fs.String("path", "", "generate for one path")
	floorID := fs.String("floor", "", "generate for every path on a floor")
	format := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if (*pathID == "") == (*floorID == "") {
		fmt.Println("Specify exactly one of --path or --floor")
		os.Exit(1)
	}

	cfg, c := mustLoad(configPath, debug)
	defer c.Close()

	gen, err := newGenerator(cfg, c)
	if err != nil {
		fmt.Printf("Failed to create generation client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out := cli.OutputFormat(*format)
	if *pathID != "" {
		set, err := gen.GeneratePath(ctx, *pathID, nil)
		if err != nil {
			fmt.Printf("Generation failed: %v\n", err)
			os.Exit(1)
		}
		_ = cli.WriteInstructionSet(os.Stdout, set, out)
		return
	}

	result, err := gen.GenerateFloor(ctx, *floorID)
	if err != nil {
		fmt.Printf("Bulk generation failed: %v\n", err)
		os.Exit(1)
	}
	_ = cli.WriteFloorResult(os.Stdout, result, out)
	if result.Failed > 0 {
		os.Exit(1)
	}
}

func runAdjust() {
	fs := flag.NewFlagSet("adjust", flag.ExitOnError)
	sizeArg := fs.String("step-size", "medium", "stride preference: small, medium, or large")
	_ = fs.Parse(os.Args[2:])

	size, err := models.ParseStepSize(*sizeArg)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// Adjust args, or stdin when no args are given.
	if fs.NArg() > 0 {
		for _, text := range fs.Args() {
			fmt.Println(steps.Adjust(text, size))
		}
		return
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Printf("Failed to read stdin: %v\n", err)
		os.Exit(1)
	}
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		fmt.Println(steps.Adjust(line, size))
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, c := mustLoad(configPath, debug)
	defer c.Close()

	ctx := context.Background()
	rooms, err := c.Storage.CountRooms(ctx)
	if err != nil {
		fmt.Printf("Failed to read status: %v\n", err)
		os.Exit(1)
	}
	paths, err := c.Storage.CountPaths(ctx)
	if err != nil {
		fmt.Printf("Failed to read status: %v\n", err)
		os.Exit(1)
	}
	sets, err := c.Storage.CountInstructionSets(ctx)
	if err != nil {
		fmt.Printf("Failed to read status: %v\n", err)
		os.Exit(1)
	}
	disk, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.RoomIndexPath)
	if err != nil {
		fmt.Printf("Failed to read status: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rooms:            %d\n", rooms)
	fmt.Printf("Paths:            %d\n", paths)
	fmt.Printf("Instruction sets: %d\n", sets)
	fmt.Printf("Disk usage:       %.1f MB\n", float64(disk)/(1024*1024))
}
