package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	cardsheet "github.com/alnah/go-cardsheet"
)

// commonFlags holds flags that control the run itself.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// ioFlags holds data, output and merge flags.
type ioFlags struct {
	input     string
	export    string
	cards     int
	sheet     string
	marker    string
	baseDir   string
	onMissing string
}

// pageFlags holds sheet and grid geometry flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
	cardSize    string
}

// outputFlags holds decoration flags.
type outputFlags struct {
	cutLines   bool
	footerText string
}

// cliFlags holds every flag of the command. changed records which flags
// were set explicitly, so zero values can still override the config.
type cliFlags struct {
	common  commonFlags
	io      ioFlags
	page    pageFlags
	output  outputFlags
	changed map[string]bool
}

// set reports whether the named flag appeared on the command line.
func (f *cliFlags) set(name string) bool {
	return f.changed[name]
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVar(&f.config, "config", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addIOFlags adds input, output and merge flags to a FlagSet.
func addIOFlags(fs *flag.FlagSet, f *ioFlags) {
	fs.StringVarP(&f.input, "input", "i", "", "CSV or XLSX data file")
	fs.StringVarP(&f.export, "export", "e", "", "output PDF path")
	fs.IntVarP(&f.cards, "cards", "c", 0, "cards per sheet: 8 or 9 (default: one per page)")
	fs.StringVar(&f.sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	fs.StringVar(&f.marker, "marker", "", "column prefix binding data to shapes (default: @)")
	fs.StringVar(&f.baseDir, "base-dir", "", "directory for image paths (default: data file directory)")
	fs.StringVar(&f.onMissing, "on-missing", "", "missing image policy: abort, skip")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0-3)")
	fs.StringVar(&f.cardSize, "card-size", "", "card size in inches as W,H (default: 2.5,3.5)")
}

// addOutputFlags adds decoration flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.cutLines, "cut-lines", false, "draw dashed cut lines around cards")
	fs.StringVar(&f.footerText, "footer-text", "", "sheet footer: {page}, {pages}, {date}, {template}")
}

// parseFlags parses the command line and returns the positional args.
// Parse failures and invalid --cards values wrap ErrUsage; -h returns
// flag.ErrHelp unwrapped.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("cardsheet", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	f := &cliFlags{changed: make(map[string]bool)}
	addCommonFlags(fs, &f.common)
	addIOFlags(fs, &f.io)
	addPageFlags(fs, &f.page)
	addOutputFlags(fs, &f.output)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	fs.Visit(func(fl *flag.Flag) { f.changed[fl.Name] = true })

	if f.set("cards") && f.io.cards != cardsheet.CardsEight && f.io.cards != cardsheet.CardsNine {
		return nil, nil, fmt.Errorf("%w: --cards must be 8 or 9, got %d", ErrUsage, f.io.cards)
	}
	if f.common.quiet && f.common.verbose {
		return nil, nil, fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	return f, fs.Args(), nil
}
