package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ironsheep/shape-counter/internal/cache"
	"github.com/ironsheep/shape-counter/internal/config"
	"github.com/ironsheep/shape-counter/internal/httpapi"
	"github.com/ironsheep/shape-counter/internal/imaging"
	"github.com/ironsheep/shape-counter/internal/logging"
	"github.com/ironsheep/shape-counter/internal/server"
	"github.com/ironsheep/shape-counter/internal/shapes"
	"github.com/ironsheep/shape-counter/internal/vision"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const defaultInput = "assets/input_images/Shapes.jpg"

type options struct {
	configPath string
	out        string
	backend    string
	show       bool
	labels     bool
	dumpMask   string
	jsonOut    bool
	mcp        bool
	httpAddr   string
	version    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("shape-counter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.StringVar(&opts.out, "out", "", "Annotated output image path (default from config)")
	fs.StringVar(&opts.backend, "backend", "", "Vision backend: native or opencv")
	fs.BoolVar(&opts.show, "show", false, "Display the annotated image until a key is pressed")
	fs.BoolVar(&opts.labels, "labels", false, "Draw the kind name next to each outline")
	fs.StringVar(&opts.dumpMask, "dump-mask", "", "Write the binary mask as a .npy file")
	fs.BoolVar(&opts.jsonOut, "json", false, "Print counts and shapes as JSON instead of the text report")
	fs.BoolVar(&opts.mcp, "mcp", false, "Serve MCP over stdin/stdout")
	fs.StringVar(&opts.httpAddr, "http", "", "Serve the HTTP API on this address (e.g. :8080)")
	fs.BoolVar(&opts.version, "version", false, "Print version information")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "shape-counter - count triangles, squares, rectangles and circles in an image")
		fmt.Fprintln(stderr)
		fmt.Fprintf(stderr, "Usage: shape-counter [options] [image] (default %s)\n", defaultInput)
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr)
		fmt.Fprintf(stderr, "Environment variables override config keys with the %s_ prefix,\n", config.EnvPrefix)
		fmt.Fprintln(stderr, "e.g. SHAPES_DETECT_MIN_AREA=300 or SHAPES_LOG_LEVEL=debug.")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "shape-counter %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}
	applyFlags(fs, &opts, cfg)

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return 2
	}
	defer logging.Sync(logger)

	backend, err := vision.ByName(cfg.Backend)
	if err != nil {
		fmt.Fprintf(stderr, "backend: %v\n", err)
		return 2
	}
	palette, err := cfg.PaletteColors()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}

	switch {
	case opts.mcp:
		return runMCP(cfg, backend, palette, logger)
	case opts.httpAddr != "":
		return runHTTP(cfg, backend, palette, logger)
	}

	input := defaultInput
	if fs.NArg() > 0 {
		input = fs.Arg(0)
	}
	return runCount(input, &opts, cfg, backend, palette, logger, stdout, stderr)
}

// applyFlags lets explicitly set flags win over the config file.
func applyFlags(fs *flag.FlagSet, opts *options, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.Output.Path = opts.out
		case "backend":
			cfg.Backend = opts.backend
		case "labels":
			cfg.Detect.Labels = opts.labels
		case "http":
			cfg.Server.Addr = opts.httpAddr
		}
	})
}

func runCount(input string, opts *options, cfg *config.Config, backend vision.Backend,
	palette shapes.Palette, logger *zap.Logger, stdout, stderr io.Writer) int {
	images := imaging.NewImageCache()
	d := shapes.NewDetector(backend,
		shapes.WithParams(cfg.Params()),
		shapes.WithPalette(palette),
		shapes.WithImageCache(images),
		shapes.WithLogger(logger),
	)

	res, err := d.DetectFile(input)
	if err != nil {
		if errors.Is(err, shapes.ErrImageLoad) {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if err := imaging.Save(res.Annotated, cfg.Output.Path, cfg.Output.JPEGQuality); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	logger.Info("annotated image written", zap.String("path", cfg.Output.Path))

	if opts.dumpMask != "" {
		if err := dumpMask(images, input, cfg.Params(), opts.dumpMask); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		logger.Info("mask written", zap.String("path", opts.dumpMask))
	}

	if opts.jsonOut {
		var sum string
		if sum, err = cache.FileMD5(input); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(struct {
			Input  string         `json:"input"`
			MD5    string         `json:"md5"`
			Output string         `json:"output"`
			Counts shapes.Counts  `json:"counts"`
			Shapes []shapes.Shape `json:"shapes"`
		}{input, sum, cfg.Output.Path, res.Counts, res.Shapes})
	} else {
		err = shapes.WriteReport(stdout, res.Counts)
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if opts.show {
		if err := vision.Show("detected shapes", res.Annotated); err != nil {
			logger.Warn("display unavailable", zap.Error(err))
		}
	}
	return 0
}

func dumpMask(images *imaging.ImageCache, input string, p shapes.Params, path string) error {
	img, err := images.Load(input)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mask file: %w", err)
	}
	if err := vision.WriteMaskNPY(f, vision.Binarize(img, p.VisionOptions())); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runMCP(cfg *config.Config, backend vision.Backend, palette shapes.Palette, logger *zap.Logger) int {
	logger.Debug("starting MCP server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	srv := server.New(
		server.WithBackend(backend),
		server.WithParams(cfg.Params()),
		server.WithPalette(palette),
		server.WithJPEGQuality(cfg.Output.JPEGQuality),
		server.WithVersion(Version),
		server.WithLogger(logger),
	)
	if err := srv.Run(); err != nil {
		logger.Error("server error", zap.Error(err))
		return 1
	}
	return 0
}

func runHTTP(cfg *config.Config, backend vision.Backend, palette shapes.Palette, logger *zap.Logger) int {
	logger.Info("starting shape-counter HTTP server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store httpapi.ResultStore
	if cfg.Redis.Addr != "" {
		rc := cache.New(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		}, logger)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis connection failed, cache disabled", zap.Error(err))
		} else {
			logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
			store = rc
		}
	}

	gin.SetMode(cfg.Server.Mode)
	h := httpapi.NewHandler(httpapi.Options{
		Backend:   backend,
		Params:    cfg.Params(),
		Palette:   palette,
		MaxUpload: cfg.Server.MaxUpload,
		Store:     store,
		Logger:    logger,
	})
	router := httpapi.NewRouter(h, httpapi.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", zap.Error(err))
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
			return 1
		}
	}
	return 0
}
