package main

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"modelbridge/internal/catalog"
	"modelbridge/internal/config"
)

// options collects flag values before they are merged into a config.Config.
type options struct {
	configPath string
	logLevel   string

	addr           string
	engine         string
	modelsDir      string
	maxModels      int
	maxBodyBytes   int64
	ortLibraryPath string
	callTimeout    time.Duration
	corsEnabled    bool
	corsOrigins    []string
	corsMethods    []string
	corsHeaders    []string
}

func defaultAddr() string {
	if v := os.Getenv("MODELBRIDGE_ADDR"); v != "" {
		return v
	}
	return ":8080"
}

func buildRootCmd() *cobra.Command { return buildRootCmdWith(&options{}) }

// buildRootCmdWith constructs the command tree. Flag values land in opts.
func buildRootCmdWith(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "modelbridge",
		Short:         "Load models, run them on tensors and release them by handle",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (.yaml, .yml, .json or .toml)")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	pf.StringVar(&opts.modelsDir, "models-dir", "~/models", "Directory scanned for model files")

	serve := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the bridge over HTTP",
		Example: "  modelbridge serve --engine onnx --models-dir ~/models --max-models 4",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel, os.Stderr)
			return runServe(cmd.Context(), cfg, opts.callTimeout, log)
		},
	}
	f := serve.Flags()
	f.StringVar(&opts.addr, "addr", defaultAddr(), "HTTP listen address (defaults MODELBRIDGE_ADDR or :8080)")
	f.StringVar(&opts.engine, "engine", "onnx", "Inference engine: onnx|ort|echo")
	f.IntVar(&opts.maxModels, "max-models", 0, "Maximum live modules (0=unlimited, 1=single-model)")
	f.Int64Var(&opts.maxBodyBytes, "max-body-bytes", 0, "Maximum JSON request body size (0=16MiB)")
	f.StringVar(&opts.ortLibraryPath, "ort-library-path", "", "Path to libonnxruntime for the ort engine")
	f.DurationVar(&opts.callTimeout, "call-timeout", 0, "Per-call timeout (0=none)")
	f.BoolVar(&opts.corsEnabled, "cors", false, "Enable CORS")
	f.StringSliceVar(&opts.corsOrigins, "cors-origins", nil, "Allowed CORS origins")
	f.StringSliceVar(&opts.corsMethods, "cors-methods", nil, "Allowed CORS methods")
	f.StringSliceVar(&opts.corsHeaders, "cors-headers", nil, "Allowed CORS headers")

	models := &cobra.Command{
		Use:   "models",
		Short: "List model files in the models directory as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			list, err := catalog.LoadDir(cfg.ModelsDir)
			if err != nil {
				return err
			}
			enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		},
	}

	root.AddCommand(serve, models)
	return root
}

// resolveConfig merges defaults, the optional config file and explicitly set
// flags, in that order of increasing precedence.
func resolveConfig(fs *pflag.FlagSet, opts *options) (config.Config, error) {
	cfg := config.Config{
		Addr:      opts.addr,
		Engine:    opts.engine,
		ModelsDir: opts.modelsDir,
		LogLevel:  opts.logLevel,
	}
	if opts.configPath != "" {
		fileCfg, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		mergeFile(&cfg, fileCfg)
	}
	set := func(name string) bool {
		f := fs.Lookup(name)
		return f != nil && f.Changed
	}
	if set("addr") {
		cfg.Addr = opts.addr
	}
	if set("engine") {
		cfg.Engine = opts.engine
	}
	if set("models-dir") {
		cfg.ModelsDir = opts.modelsDir
	}
	if set("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if set("max-models") {
		cfg.MaxModels = opts.maxModels
	}
	if set("max-body-bytes") {
		cfg.MaxBodyBytes = opts.maxBodyBytes
	}
	if set("ort-library-path") {
		cfg.ORTLibraryPath = opts.ortLibraryPath
	}
	if set("cors") {
		cfg.CORSEnabled = opts.corsEnabled
	}
	if set("cors-origins") {
		cfg.CORSAllowedOrigins = opts.corsOrigins
	}
	if set("cors-methods") {
		cfg.CORSAllowedMethods = opts.corsMethods
	}
	if set("cors-headers") {
		cfg.CORSAllowedHeaders = opts.corsHeaders
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr()
	}
	return cfg, cfg.Validate()
}

// mergeFile copies the non-zero values of the file config over dst.
func mergeFile(dst *config.Config, src config.Config) {
	if src.Addr != "" {
		dst.Addr = src.Addr
	}
	if src.Engine != "" {
		dst.Engine = src.Engine
	}
	if src.ModelsDir != "" {
		dst.ModelsDir = src.ModelsDir
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.MaxModels != 0 {
		dst.MaxModels = src.MaxModels
	}
	if src.MaxBodyBytes != 0 {
		dst.MaxBodyBytes = src.MaxBodyBytes
	}
	if src.ORTLibraryPath != "" {
		dst.ORTLibraryPath = src.ORTLibraryPath
	}
	if src.CORSEnabled {
		dst.CORSEnabled = true
	}
	if len(src.CORSAllowedOrigins) > 0 {
		dst.CORSAllowedOrigins = src.CORSAllowedOrigins
	}
	if len(src.CORSAllowedMethods) > 0 {
		dst.CORSAllowedMethods = src.CORSAllowedMethods
	}
	if len(src.CORSAllowedHeaders) > 0 {
		dst.CORSAllowedHeaders = src.CORSAllowedHeaders
	}
}
