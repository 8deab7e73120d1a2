package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	cardsheet "github.com/alnah/go-cardsheet"
	"github.com/alnah/go-cardsheet/internal/assets"
	"github.com/alnah/go-cardsheet/internal/config"
	"github.com/alnah/go-cardsheet/internal/ctxlog"
	"github.com/alnah/go-cardsheet/internal/hints"
)

// paths holds the files named on the command line.
type paths struct {
	template string
	input    string // optional
	export   string
}

// run dispatches version and help, then converts.
func run(ctx context.Context, args []string, env *Environment) error {
	if len(args) > 0 {
		switch args[0] {
		case "version":
			fmt.Fprintf(env.Stdout, "cardsheet %s\n", Version)
			return nil
		case "help":
			printUsage(env.Stdout)
			return nil
		}
	}

	flags, positional, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printUsage(env.Stdout)
		return nil
	}
	if err != nil {
		return err
	}

	p, err := resolvePaths(positional, flags)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(flags, env)
	if err != nil {
		return err
	}

	log := newLogger(env, flags, cfg)
	ctx = ctxlog.WithLogger(ctx, log)
	warnUnknownEnvVars(log, env.Environ())
	defer tuneProcs(log)()

	return runConvert(ctx, p, flags.common.quiet, cfg, env)
}

// resolvePaths checks the positional template and the required --export.
func resolvePaths(positional []string, flags *cliFlags) (*paths, error) {
	switch {
	case len(positional) == 0:
		return nil, fmt.Errorf("%w: missing template file", ErrUsage)
	case len(positional) > 1:
		return nil, fmt.Errorf("%w: unexpected arguments: %s", ErrUsage, strings.Join(positional[1:], " "))
	case flags.io.export == "":
		return nil, fmt.Errorf("%w: missing output path (-e/--export)", ErrUsage)
	}
	return &paths{template: positional[0], input: flags.io.input, export: flags.io.export}, nil
}

// buildConfig layers defaults < config file < environment < flags and
// validates the result.
func buildConfig(flags *cliFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)
	cfg, err := loadConfig(flags, envCfg, env)
	if err != nil {
		return nil, err
	}
	applyEnvConfig(envCfg, cfg)
	if err := mergeFlags(flags, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfig loads the file named by --config, else CARDSHEET_CONFIG, else
// returns a copy of env.Config.
func loadConfig(flags *cliFlags, envCfg *envConfig, env *Environment) (*config.Config, error) {
	name := flags.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name == "" {
		cfg := config.DefaultConfig()
		if env.Config != nil {
			*cfg = *env.Config
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *cliFlags, cfg *config.Config) error {
	// I/O
	if flags.set("cards") {
		cfg.Cards.PerPage = flags.io.cards
	}
	if flags.io.sheet != "" {
		cfg.Data.Sheet = flags.io.sheet
	}
	if flags.io.marker != "" {
		cfg.Data.Marker = flags.io.marker
	}
	if flags.io.baseDir != "" {
		cfg.Assets.BaseDir = flags.io.baseDir
	}
	if flags.io.onMissing != "" {
		cfg.Assets.OnMissing = flags.io.onMissing
	}

	// Page
	if flags.page.size != "" {
		cfg.Page.Size = flags.page.size
	}
	if flags.page.orientation != "" {
		cfg.Page.Orientation = flags.page.orientation
	}
	if flags.set("margin") {
		margin := flags.page.margin
		cfg.Page.Margin = &margin
	}
	if flags.page.cardSize != "" {
		size, err := cardsheet.ParseCardSize(flags.page.cardSize)
		if err != nil {
			return fmt.Errorf("--card-size: %w", err)
		}
		cfg.Cards.Width, cfg.Cards.Height = size.Width, size.Height
	}

	// Output
	if flags.set("cut-lines") {
		cfg.Cards.CutLines = flags.output.cutLines
	}
	if flags.output.footerText != "" {
		cfg.Footer.Text = flags.output.footerText
	}
	return nil
}

// runConvert loads the inputs, renders and writes the PDF.
func runConvert(ctx context.Context, p *paths, quiet bool, cfg *config.Config, env *Environment) error {
	log := ctxlog.FromContext(ctx)

	tpl, err := cardsheet.LoadTemplate(p.template)
	if err != nil {
		return withHint(err, "")
	}
	log.Debug("template loaded", "path", p.template, "shapes", len(tpl.Shapes))

	marker := cfg.Data.Marker
	if marker == "" {
		marker = cardsheet.DefaultMarker
	}
	var records []cardsheet.Record
	if p.input != "" {
		records, err = cardsheet.LoadRecords(p.input, cardsheet.LoadOptions{Sheet: cfg.Data.Sheet, Marker: marker})
		if err != nil {
			return err
		}
		log.Debug("data loaded", "path", p.input, "records", len(records))
		warnUnbound(log, tpl, records, marker)
	}

	baseDir := resolveBaseDir(cfg, p.input)
	loader, err := assets.NewAssetResolver(baseDir, tpl.Dir)
	if err != nil {
		return fmt.Errorf("%w: %w%s", cardsheet.ErrReadFile, err, hints.ForMissingAsset(baseDir))
	}

	opts := []cardsheet.Option{
		cardsheet.WithAssetLoader(loader),
		cardsheet.WithMarker(marker),
		cardsheet.WithMissingPolicy(cardsheet.MissingPolicy(cfg.Assets.OnMissing)),
		cardsheet.WithClock(env.Now),
		cardsheet.WithDateFormat(cfg.Footer.DateFormat),
	}
	if cfg.Output.Creator != "" {
		opts = append(opts, cardsheet.WithCreator(cfg.Output.Creator))
	}
	conv, err := cardsheet.NewConverter(opts...)
	if err != nil {
		return err
	}

	result, err := conv.Convert(ctx, cardsheet.Input{
		Template: tpl,
		Records:  records,
		Cards:    cfg.Cards.PerPage,
		Page:     buildPageSettings(cfg),
		Card:     buildCardSize(cfg),
		CutLines: cfg.Cards.CutLines,
		Footer:   cfg.Footer.Text,
	})
	if err != nil {
		return withHint(err, strings.Join(loader.BasePaths(), ", "))
	}

	if err := result.WriteFile(p.export); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForOutputDirectory())
	}

	if !quiet {
		printSummary(env, p.export, result, records)
	}
	return nil
}

// resolveBaseDir returns the image directory: the configured one, else the
// data file directory, else the working directory.
func resolveBaseDir(cfg *config.Config, input string) string {
	if cfg.Assets.BaseDir != "" {
		return cfg.Assets.BaseDir
	}
	if input != "" {
		return filepath.Dir(input)
	}
	return "."
}

// buildPageSettings fills unset page fields with defaults.
func buildPageSettings(cfg *config.Config) *cardsheet.PageSettings {
	page := cardsheet.DefaultPageSettings()
	if cfg.Page.Size != "" {
		page.Size = strings.ToLower(cfg.Page.Size)
	}
	if cfg.Page.Orientation != "" {
		page.Orientation = strings.ToLower(cfg.Page.Orientation)
	}
	if cfg.Page.Margin != nil {
		page.Margin = *cfg.Page.Margin
	}
	return page
}

// buildCardSize fills unset card dimensions with the poker size.
func buildCardSize(cfg *config.Config) *cardsheet.CardSize {
	size := cardsheet.DefaultCardSize()
	if cfg.Cards.Width > 0 {
		size.Width = cfg.Cards.Width
	}
	if cfg.Cards.Height > 0 {
		size.Height = cfg.Cards.Height
	}
	return size
}

// warnUnbound logs when no data column binds to any shape, the usual sign
// of headers written without the marker.
func warnUnbound(log *slog.Logger, tpl *cardsheet.Template, records []cardsheet.Record, marker string) {
	if len(records) == 0 {
		return
	}
	bindings, err := records[0].Bindings(marker)
	if err != nil {
		return
	}
	for name := range bindings {
		if _, ok := tpl.Shape(name); ok {
			return
		}
	}
	names := make([]string, len(tpl.Shapes))
	for i := range tpl.Shapes {
		names[i] = tpl.Shapes[i].Name
	}
	log.Warn("no data column matches a shape, rendering template defaults" +
		hints.ForUnboundColumns(marker, names))
}

// withHint appends the hint matching the error class. searched names the
// image directories for missing asset errors.
func withHint(err error, searched string) error {
	switch {
	case errors.Is(err, cardsheet.ErrMissingAsset):
		return fmt.Errorf("%w%s", err, hints.ForMissingAsset(searched))
	case errors.Is(err, cardsheet.ErrTemplateParse):
		return fmt.Errorf("%w%s", err, hints.ForTemplateParse())
	case errors.Is(err, cardsheet.ErrInvalidLayout):
		return fmt.Errorf("%w%s", err, hints.ForInvalidLayout())
	}
	return err
}

// printSummary reports what was written and which rows were dropped.
func printSummary(env *Environment, export string, res *cardsheet.Result, records []cardsheet.Record) {
	fmt.Fprintf(env.Stdout, "%s: %d %s on %d %s\n", export,
		res.Components, plural(res.Components, "card", "cards"),
		res.Sheets, plural(res.Sheets, "sheet", "sheets"))
	if len(res.Skipped) == 0 {
		return
	}
	rows := make([]string, 0, len(res.Skipped))
	for _, i := range res.Skipped {
		if i >= 0 && i < len(records) {
			rows = append(rows, fmt.Sprint(records[i].Row))
		}
	}
	fmt.Fprintf(env.Stdout, "skipped %d %s with missing images (rows %s)\n",
		len(res.Skipped), plural(len(res.Skipped), "record", "records"), strings.Join(rows, ", "))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// newLogger builds the stderr logger: --verbose means debug, --quiet means
// errors only, otherwise log.level from the config (default info).
func newLogger(env *Environment, flags *cliFlags, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case flags.common.verbose:
		level = slog.LevelDebug
	case flags.common.quiet:
		level = slog.LevelError
	case cfg.Log.Level != "":
		_ = level.UnmarshalText([]byte(cfg.Log.Level))
	}
	return slog.New(slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{Level: level}))
}

// tuneProcs sets GOMAXPROCS to the container CPU quota and returns the undo
// function. Set only fails on an invalid GOMAXPROCS, where runtime defaults
// still apply.
func tuneProcs(log *slog.Logger) func() {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...))
	}))
	if err != nil {
		log.Debug("maxprocs", "error", err)
		return func() {}
	}
	return undo
}
