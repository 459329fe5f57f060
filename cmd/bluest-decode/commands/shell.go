package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/uuid"

	"github.com/bluest-sdk/bluest-go/pkg/catalog"
	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/session"
	"github.com/bluest-sdk/bluest-go/pkg/wire"
)

// Shell runs interactive commands against one session.
type Shell struct {
	session  *session.Session
	pipeline *session.Pipeline
	catalog  *catalog.Catalog
	out      io.Writer
	printer  *Printer
}

// NewShell creates a shell writing to out. cat may be nil.
func NewShell(s *session.Session, p *session.Pipeline, cat *catalog.Catalog, out io.Writer) *Shell {
	return &Shell{
		session:  s,
		pipeline: p,
		catalog:  cat,
		out:      out,
		printer:  NewPrinter(out, FormatText),
	}
}

// Run reads commands with readline until quit, EOF or ctx is done.
func (sh *Shell) Run(ctx context.Context, cancel context.CancelFunc) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bluest> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	sh.out = rl.Stdout()
	sh.printer = NewPrinter(sh.out, FormatText)
	sh.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(sh.out, "Exiting...")
			cancel()
			return nil
		}
		if quit := sh.Execute(ctx, line); quit {
			cancel()
			return nil
		}
	}
}

// Execute runs one command line. It returns true when the shell should
// exit.
func (sh *Shell) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "help", "?":
		sh.printHelp()
	case "quit", "exit", "q":
		return true
	case "discover":
		sh.cmdDiscover(args)
	case "features", "f":
		sh.cmdFeatures()
	case "decode", "d":
		sh.cmdDecode(ctx, args)
	case "encode", "e":
		sh.cmdEncode(args)
	case "response", "r":
		sh.cmdResponse(args)
	case "enable", "disable":
		sh.cmdEnable(cmd == "enable", args)
	case "firmware":
		sh.cmdFirmware(args)
	case "stats":
		st := sh.pipeline.Stats()
		fmt.Fprintf(sh.out, "notifications=%d updates=%d decode_errors=%d sink_errors=%d\n",
			st.Notifications, st.Updates, st.DecodeErrors, st.SinkErrors)
	default:
		fmt.Fprintf(sh.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (sh *Shell) printHelp() {
	fmt.Fprintf(sh.out, `Commands:
  discover <uuid|mask>           register the features of a characteristic
  features                       list registered features
  decode <uuid> <hex>            decode a notification
  encode <feature> <command>     pack a command (see below)
  response <hex>                 parse a config characteristic notification
  enable|disable <feature>       toggle a feature
  firmware <device-id> <fw-id>   look up the firmware catalog
  stats                          pipeline counters
  help                           show this help
  quit                           exit

Encode commands:
%s
`, CommandHelp)
}

// characteristic accepts a UUID or a standard feature mask.
func characteristic(s string) (uuid.UUID, error) {
	if ch, err := uuid.Parse(s); err == nil {
		return ch, nil
	}
	mask, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is neither a UUID nor a mask", ErrSyntax, s)
	}
	return model.StandardCharacteristic(uint32(mask)), nil
}

func (sh *Shell) cmdDiscover(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(sh.out, "Usage: discover <uuid|mask>")
		return
	}
	ch, err := characteristic(args[0])
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	fs, err := sh.session.Discover(ch)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "%s:\n", ch)
	for _, f := range fs {
		fmt.Fprintf(sh.out, "  %s\n", f)
	}
}

func (sh *Shell) cmdFeatures() {
	fs := sh.session.Features()
	if len(fs) == 0 {
		fmt.Fprintln(sh.out, "No features registered")
		return
	}
	for _, f := range fs {
		state := "enabled"
		if !f.Enabled() {
			state = "disabled"
		}
		fmt.Fprintf(sh.out, "  %-36s %-16s %s\n", f.Name(), f.Descriptor().Type, state)
	}
}

func (sh *Shell) cmdDecode(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(sh.out, "Usage: decode <uuid|mask> <hex>")
		return
	}
	ch, err := characteristic(args[0])
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	data, err := ParseHex(strings.Join(args[1:], ""))
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}

	before := sh.pipeline.Stats().DecodeErrors
	records := sh.pipeline.Process(ctx, wire.Notification{Characteristic: ch, Data: data, ReceivedAt: time.Now()})
	for _, r := range records {
		_ = sh.printer.Record(r)
	}
	if sh.pipeline.Stats().DecodeErrors != before {
		fmt.Fprintf(sh.out, "Decode error: %v\n", sh.pipeline.LastError())
	}
}

func (sh *Shell) cmdEncode(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(sh.out, "Usage: encode <feature> <command> [args]")
		return
	}
	feature, err := sh.resolveFeature(args)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	cmdArgs := args[len(strings.Fields(feature)):]

	cmd, err := ParseCommand(cmdArgs)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	target, err := sh.session.CommandTarget(feature)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	fd := &frameDump{w: sh.out, target: target.String()}
	if err := sh.session.Send(feature, cmd, fd); err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
	}
}

// frameDump prints each characteristic write it receives.
type frameDump struct {
	w      io.Writer
	target string
}

func (d *frameDump) Write(p []byte) (int, error) {
	fmt.Fprintf(d.w, "write %s: % X\n", d.target, p)
	return len(p), nil
}

// resolveFeature matches the longest prefix of args that names a
// registered feature, since feature names may contain spaces.
func (sh *Shell) resolveFeature(args []string) (string, error) {
	for n := len(args) - 1; n >= 1; n-- {
		name := strings.Join(args[:n], " ")
		if _, ok := sh.session.Feature(name); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", session.ErrUnknownFeature, args[0])
}

func (sh *Shell) cmdResponse(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(sh.out, "Usage: response <hex>")
		return
	}
	data, err := ParseHex(strings.Join(args, ""))
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	resp, err := sh.session.ParseResponse(data)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	_ = sh.printer.Response(resp)
}

func (sh *Shell) cmdEnable(enable bool, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(sh.out, "Usage: enable|disable <feature>")
		return
	}
	name := strings.Join(args, " ")
	if err := sh.session.SetEnabled(name, enable); err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "%s enabled=%t\n", name, enable)
}

func (sh *Shell) cmdFirmware(args []string) {
	if sh.catalog == nil {
		fmt.Fprintln(sh.out, "No catalog loaded (set catalog.path)")
		return
	}
	if len(args) != 2 {
		fmt.Fprintln(sh.out, "Usage: firmware <device-id> <fw-id>")
		return
	}
	dev, err1 := strconv.ParseUint(args[0], 0, 8)
	fw, err2 := strconv.ParseUint(args[1], 0, 8)
	if err1 != nil || err2 != nil {
		fmt.Fprintln(sh.out, "Error: ids are bytes, e.g. 0x06 0x01")
		return
	}
	f, ok := sh.catalog.Firmware(uint8(dev), uint8(fw))
	if !ok {
		fmt.Fprintf(sh.out, "No firmware 0x%02X/0x%02X in catalog\n", dev, fw)
		return
	}
	fmt.Fprintf(sh.out, "%s on %s\n", f.FriendlyName(), f.BoardName)
	for _, ch := range f.Characteristics {
		fmt.Fprintf(sh.out, "  %s %s\n", ch.UUID, ch.Name)
	}
}
