// Command bluest-log views and analyzes BlueST protocol log files.
//
// Log files are written by bluest-decode with the -protocol-log flag.
//
// Usage:
//
//	bluest-log <command> [flags] <file.blog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL, CSV or XLSX
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	bluest-log view session.blog
//
//	# View only decoded updates of one feature
//	bluest-log view -category notification -feature Temperature session.blog
//
//	# Export to a spreadsheet
//	bluest-log export -format xlsx -o session.xlsx session.blog
//
//	# Keep one device
//	bluest-log filter -device-id C0:FF:EE:00:00:01 -o device.blog session.blog
//
//	# Show statistics
//	bluest-log stats session.blog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bluest-sdk/bluest-go/cmd/bluest-log/commands"
)

const usage = `bluest-log - BlueST Protocol Log Analyzer

Usage:
  bluest-log <command> [flags] <file.blog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL, CSV or XLSX
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "bluest-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// logPath returns the single positional argument or exits.
func logPath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `bluest-log view - View log file in human-readable format

Usage:
  bluest-log view [flags] <file.blog>

Flags:
`)
		fs.PrintDefaults()
	}

	layer := fs.String("layer", "", "Filter by layer (transport, feature, session)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (notification, command, response, state, error)")
	feature := fs.String("feature", "", "Filter by feature name")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := logPath(fs)

	filter := commands.ViewFilter{Feature: *feature}
	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fail(err)
		}
		filter.Layer = &l
	}
	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fail(err)
		}
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `bluest-log export - Export log file to JSONL, CSV or XLSX

Usage:
  bluest-log export [flags] <file.blog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", commands.FormatJSONL, "Output format (jsonl, csv, xlsx)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := logPath(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `bluest-log filter - Filter log file and write to new file

Usage:
  bluest-log filter [flags] <file.blog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	sessionID := fs.String("session-id", "", "Filter by session ID")
	deviceID := fs.String("device-id", "", "Filter by device ID")
	feature := fs.String("feature", "", "Filter by feature name")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.String("layer", "", "Filter by layer (transport, feature, session)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (notification, command, response, state, error)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := logPath(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:    *output,
		SessionID: *sessionID,
		DeviceID:  *deviceID,
		Feature:   *feature,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Direction: *direction,
		Category:  *category,
	}
	if err := commands.RunFilter(path, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `bluest-log stats - Show statistics about the log file

Usage:
  bluest-log stats <file.blog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := logPath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
