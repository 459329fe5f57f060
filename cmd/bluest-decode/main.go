// Command bluest-decode decodes BlueST characteristic notifications.
//
// It reads one notification per line from stdin, in the form
//
//	<characteristic-uuid> <hex payload>
//
// prints the decoded feature updates and fans them out to the sinks enabled
// in the configuration (NATS, Redis shadow, WebSocket stream). Notifications
// of the config characteristic are parsed as command responses.
//
// Usage:
//
//	bluest-decode [flags]
//
// Flags:
//
//	-config string            Configuration file path
//	-device-id string         Device identifier stamped on records
//	-board string             Board: default, sensor_tile_box, remote_node
//	-protocol-version int     BlueST protocol version: 1 or 2
//	-advertise-mask string    Feature mask from the advertisement
//	-log-level string         Log level: debug, info, warn, error
//	-protocol-log string      Write a CBOR protocol log to this file
//	-format string            Output format: text or json (default "text")
//	-capture string           Record the input notifications to a CBOR file
//	-replay string            Read notifications from a CBOR capture instead of stdin
//	-interactive              Start the interactive shell
//
// Examples:
//
//	# Decode a capture
//	bluest-decode < capture.txt
//
//	# Publish a live stream to NATS with a protocol log
//	bluest-decode -config /etc/bluest/decode.yaml -protocol-log session.blog
//
//	# Record a session and decode it again later
//	bluest-decode -capture session.cbor < capture.txt
//	bluest-decode -replay session.cbor -format json
//
//	# Explore a board interactively
//	bluest-decode -interactive -board sensor_tile_box
//
// Interactive Commands:
//
//	discover <uuid|mask>        - Register the features of a characteristic
//	features                    - List registered features
//	decode <uuid|mask> <hex>    - Decode one notification
//	encode <feature> <command>  - Encode a command and print the writes
//	response <hex>              - Parse a config characteristic notification
//	enable|disable <feature>    - Toggle a feature
//	firmware <device> <fw>      - Look up a firmware in the catalog
//	stats                       - Show pipeline counters
//	quit                        - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bluest-sdk/bluest-go/cmd/bluest-decode/commands"
	"github.com/bluest-sdk/bluest-go/pkg/catalog"
	"github.com/bluest-sdk/bluest-go/pkg/config"
	"github.com/bluest-sdk/bluest-go/pkg/log"
	"github.com/bluest-sdk/bluest-go/pkg/session"
)

// Options holds the command-line flags.
type Options struct {
	ConfigFile      string
	DeviceID        string
	Board           string
	ProtocolVersion uint
	AdvertiseMask   string
	LogLevel        string
	ProtocolLog     string
	Format          string
	Capture         string
	Replay          string
	Interactive     bool
}

var opts Options

func init() {
	flag.StringVar(&opts.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&opts.DeviceID, "device-id", "", "Device identifier stamped on records")
	flag.StringVar(&opts.Board, "board", "", "Board: default, sensor_tile_box, remote_node")
	flag.UintVar(&opts.ProtocolVersion, "protocol-version", 0, "BlueST protocol version: 1 or 2")
	flag.StringVar(&opts.AdvertiseMask, "advertise-mask", "", "Feature mask from the advertisement (e.g. 0x001C0000)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&opts.ProtocolLog, "protocol-log", "", "Write a CBOR protocol log to this file")
	flag.StringVar(&opts.Format, "format", commands.FormatText, "Output format: text or json")
	flag.StringVar(&opts.Capture, "capture", "", "Record the input notifications to a CBOR file")
	flag.StringVar(&opts.Replay, "replay", "", "Read notifications from a CBOR capture instead of stdin")
	flag.BoolVar(&opts.Interactive, "interactive", false, "Start the interactive shell")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("bluest-decode failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies the flags that were set.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device-id":
			cfg.Session.DeviceID = opts.DeviceID
		case "board":
			cfg.Session.Board = opts.Board
		case "protocol-version":
			cfg.Session.ProtocolVersion = uint8(opts.ProtocolVersion)
		case "advertise-mask":
			mask, err := config.ParseMask(opts.AdvertiseMask)
			if err != nil {
				flagErr = fmt.Errorf("invalid -advertise-mask %q: %w", opts.AdvertiseMask, err)
				return
			}
			cfg.Session.AdvertiseMask = mask
		case "log-level":
			cfg.Log.Level = opts.LogLevel
		case "protocol-log":
			cfg.Log.ProtocolLog = opts.ProtocolLog
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settings, err := cfg.SessionSettings()
	if err != nil {
		return err
	}
	sess := session.New(settings)
	sess.SetLogger(logger)
	defer sess.Close()

	// Protocol events go to the file log and, at debug level, to the
	// structured log as well.
	var protocolLoggers []log.Logger
	if cfg.Log.ProtocolLog != "" {
		fl, err := log.NewFileLogger(cfg.Log.ProtocolLog)
		if err != nil {
			return fmt.Errorf("cannot open protocol log: %w", err)
		}
		defer func() {
			if err := fl.Close(); err != nil {
				logger.Warn("closing protocol log", "error", err)
			}
		}()
		protocolLoggers = append(protocolLoggers, fl)
		logger.Info("protocol log enabled", "path", cfg.Log.ProtocolLog)
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		protocolLoggers = append(protocolLoggers, log.NewSlogAdapter(logger))
	}
	if len(protocolLoggers) > 0 {
		sess.SetProtocolLogger(log.NewMultiLogger(protocolLoggers...))
	}

	var cat *catalog.Catalog
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		logger.Info("firmware catalog loaded", "path", cfg.Catalog.Path, "firmwares", len(cat.FirmwaresV2)+len(cat.FirmwaresV1))
	}

	sinks, stopServer, err := commands.BuildSinks(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stopServer()

	pipeline := session.NewPipeline(sess, sinks...)
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Warn("closing sinks", "error", err)
		}
	}()

	logger.Info("session started",
		"session", sess.ID(),
		"board", cfg.Session.Board,
		"protocol_version", cfg.Session.ProtocolVersion,
		"advertise_mask", fmt.Sprintf("0x%08X", cfg.Session.AdvertiseMask),
		"sinks", len(sinks))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if opts.Interactive {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
		return commands.NewShell(sess, pipeline, cat, os.Stdout).Run(ctx, cancel)
	}

	stream := &commands.Stream{
		Pipeline: pipeline,
		Printer:  commands.NewPrinter(os.Stdout, opts.Format),
		Errors:   os.Stderr,
	}
	if opts.Capture != "" {
		f, err := os.Create(opts.Capture)
		if err != nil {
			return fmt.Errorf("cannot create capture: %w", err)
		}
		defer f.Close()
		stream.Capture = f
	}

	done := make(chan error, 1)
	go func() {
		var (
			sum commands.StreamSummary
			err error
		)
		if opts.Replay != "" {
			sum, err = replay(ctx, stream, opts.Replay)
		} else {
			sum, err = stream.Run(ctx, os.Stdin)
		}
		logger.Info("input finished",
			"lines", sum.Lines,
			"records", sum.Records,
			"responses", sum.Responses,
			"parse_errors", sum.ParseErrors,
			"decode_errors", sum.DecodeErrors)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
		return nil
	}
}

func replay(ctx context.Context, stream *commands.Stream, path string) (commands.StreamSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return commands.StreamSummary{}, fmt.Errorf("cannot open replay: %w", err)
	}
	defer f.Close()
	return stream.Replay(ctx, f)
}
