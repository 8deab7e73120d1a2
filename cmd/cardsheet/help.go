package main

import (
	"fmt"
	"io"
)

// printUsage prints the command usage.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cardsheet <template> -e <output.pdf> [-i <data>] [-c 8|9] [flags]")
	fmt.Fprintln(w, "       cardsheet version")
	fmt.Fprintln(w, "       cardsheet help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Merge spreadsheet rows into a JSON or YAML card template and render")
	fmt.Fprintln(w, "a printable PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  template    Template file (.json, .yaml, .yml)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -i, --input <path>        CSV or XLSX data file (omit to render defaults once)")
	fmt.Fprintln(w, "  -e, --export <path>       Output PDF path (required)")
	fmt.Fprintln(w, "  -c, --cards <n>           Cards per sheet: 8 or 9 (default: one per page)")
	fmt.Fprintln(w, "      --sheet <name>        XLSX sheet (default: first sheet)")
	fmt.Fprintln(w, "      --marker <s>          Column prefix binding data to shapes (default: @)")
	fmt.Fprintln(w, "      --base-dir <path>     Directory for image paths (default: data file directory)")
	fmt.Fprintln(w, "      --on-missing <s>      Missing image policy: abort, skip (default: abort)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0-3, default: 0.25)")
	fmt.Fprintln(w, "      --card-size <W,H>     Card size in inches (default: 2.5,3.5)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "      --cut-lines           Draw dashed cut lines around cards")
	fmt.Fprintln(w, "      --footer-text <s>     Sheet footer; placeholders: {page}, {pages},")
	fmt.Fprintln(w, "                            {date}, {template}")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "General:")
	fmt.Fprintln(w, "      --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w, "  -h, --help                Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  CARDSHEET_CONFIG          Config file (overridden by --config)")
	fmt.Fprintln(w, "  CARDSHEET_PAGE_SIZE       Page size")
	fmt.Fprintln(w, "  CARDSHEET_BASE_DIR        Image directory")
	fmt.Fprintln(w, "  CARDSHEET_ON_MISSING      Missing image policy")
	fmt.Fprintln(w, "  CARDSHEET_MARKER          Column prefix")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Precedence: defaults < config file < environment < flags.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0  success")
	fmt.Fprintln(w, "  1  unexpected error")
	fmt.Fprintln(w, "  2  invalid usage, config, template or data")
	fmt.Fprintln(w, "  3  file read or write error")
	fmt.Fprintln(w, "  4  missing image")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  cardsheet monster.json -i monsters.csv -e monsters.pdf -c 9")
	fmt.Fprintln(w, "  cardsheet board.yaml -e board.pdf -p a4 --orientation landscape")
	fmt.Fprintln(w, "  cardsheet deck.json -i deck.xlsx --sheet Heroes -e heroes.pdf -c 8 --on-missing skip")
}
