package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/leafo/midimatrix/internal/routing"
)

const consoleHelp = `Commands:
  ins                        list MIDI inputs
  outs                       list MIDI outputs
  connect <in> <out>         route an input to an output
  disconnect <in> <out>      remove a route
  connections                list active routes
  matrix                     show the routing matrix
  channels <out>             show the channel filter of an output
  enable <out> <ch...|all>   let channels (1-16) through an output
  disable <out> <ch...|all>  block channels (1-16) on an output
  edit <out>                 edit an output's channel filter interactively
  stats                      show routing statistics
  help                       show this help
  quit                       stop the router
`

const editHelp = `Channel edit: <ch> toggles a channel, "all" / "none" set every channel,
"ok" applies the change, "cancel" discards it.
`

// console is the line-oriented front end. It keeps no routing state; the
// only thing it holds is a pending channel edit.
type console struct {
	engine *routing.Engine
	in     *bufio.Reader
	out    io.Writer
	edit   *routing.ChannelEdit
}

func newConsole(engine *routing.Engine, in io.Reader, out io.Writer) *console {
	return &console{engine: engine, in: bufio.NewReader(in), out: out}
}

// run reads commands until quit, EOF or ctx is done.
func (c *console) run(ctx context.Context) error {
	fmt.Fprint(c.out, consoleHelp)
	for {
		c.prompt()
		line, err := c.in.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			quit, cmdErr := c.execute(ctx, line)
			if cmdErr != nil {
				if ctx.Err() != nil || errors.Is(cmdErr, routing.ErrEngineStopped) {
					return nil
				}
				fmt.Fprintln(c.out, warnStyle.Render("Error: "+cmdErr.Error()))
			}
			if quit {
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *console) prompt() {
	if c.edit != nil {
		fmt.Fprintf(c.out, "edit output %d> ", c.edit.Output)
		return
	}
	fmt.Fprint(c.out, "> ")
}

// execute runs one command line and reports whether the console should exit.
func (c *console) execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	if c.edit != nil {
		return false, c.editCommand(ctx, fields)
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "help", "?":
		fmt.Fprint(c.out, consoleHelp)
	case "ins", "inputs":
		fmt.Fprint(c.out, formatDevices("MIDI Inputs:", c.engine.ListDevices(routing.Input)))
	case "outs", "outputs":
		fmt.Fprint(c.out, formatDevices("MIDI Outputs:", c.engine.ListDevices(routing.Output)))
	case "connect", "disconnect":
		in, out, err := parsePair(args)
		if err != nil {
			return false, err
		}
		if cmd == "connect" {
			if err := c.engine.Connect(ctx, in, out); err != nil {
				return false, err
			}
			fmt.Fprintf(c.out, "Connected input %d to output %d\n", in, out)
		} else {
			if err := c.engine.Disconnect(ctx, in, out); err != nil {
				return false, err
			}
			fmt.Fprintf(c.out, "Disconnected input %d from output %d\n", in, out)
		}
	case "connections", "ls":
		conns, err := c.engine.ListConnections(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprint(c.out, formatConnections(conns, c.engine.ListDevices(routing.Input), c.engine.ListDevices(routing.Output)))
	case "matrix":
		conns, err := c.engine.ListConnections(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprint(c.out, formatMatrix(conns, c.engine.ListDevices(routing.Input), c.engine.ListDevices(routing.Output)))
	case "channels":
		out, err := parseOne(args)
		if err != nil {
			return false, err
		}
		mask, err := c.engine.GetChannelMask(ctx, out)
		if err != nil {
			return false, err
		}
		fmt.Fprint(c.out, formatMask(fmt.Sprintf("Channel filter for output %d", out), mask))
	case "enable", "disable":
		return false, c.setChannels(ctx, args, cmd == "enable")
	case "edit":
		out, err := parseOne(args)
		if err != nil {
			return false, err
		}
		edit, err := c.engine.BeginChannelEdit(ctx, out)
		if err != nil {
			return false, err
		}
		c.edit = edit
		fmt.Fprint(c.out, editHelp)
		fmt.Fprint(c.out, formatMask("Pending", edit.Pending))
	case "stats":
		s, err := c.engine.Stats(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprint(c.out, formatStats(s))
	case "quit", "exit", "q":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (try \"help\")", cmd)
	}
	return false, nil
}

func (c *console) setChannels(ctx context.Context, args []string, enabled bool) error {
	if len(args) < 2 {
		return errors.New("usage: enable|disable <out> <ch...|all>")
	}
	out, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	if len(args) == 2 && strings.EqualFold(args[1], "all") {
		var mask routing.ChannelMask
		if enabled {
			mask = routing.AllChannels()
		}
		return c.engine.SetChannelMask(ctx, out, mask)
	}

	channels, err := parseChannels(args[1:])
	if err != nil {
		return err
	}
	mask, err := c.engine.GetChannelMask(ctx, out)
	if err != nil {
		return err
	}
	for _, ch := range channels {
		mask[ch] = enabled
	}
	return c.engine.SetChannelMask(ctx, out, mask)
}

func (c *console) editCommand(ctx context.Context, fields []string) error {
	switch strings.ToLower(fields[0]) {
	case "ok":
		edit := c.edit
		c.edit = nil
		if err := c.engine.ApplyChannelEdit(ctx, edit); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Channel filter for output %d updated\n", edit.Output)
		return nil
	case "cancel":
		c.edit = nil
		fmt.Fprintln(c.out, "Channel edit discarded")
		return nil
	case "all":
		c.edit.EnableAll()
	case "none":
		c.edit.DisableAll()
	default:
		channels, err := parseChannels(fields)
		if err != nil {
			return err
		}
		for _, ch := range channels {
			if err := c.edit.Toggle(ch); err != nil {
				return err
			}
		}
	}
	fmt.Fprint(c.out, formatMask("Pending", c.edit.Pending))
	return nil
}

func parseIndex(s string) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return -1, fmt.Errorf("invalid device index %q", s)
	}
	return idx, nil
}

func parseOne(args []string) (int, error) {
	if len(args) != 1 {
		return -1, errors.New("expected one device index")
	}
	return parseIndex(args[0])
}

func parsePair(args []string) (int, int, error) {
	if len(args) != 2 {
		return -1, -1, errors.New("expected <in> <out>")
	}
	in, err := parseIndex(args[0])
	if err != nil {
		return -1, -1, err
	}
	out, err := parseIndex(args[1])
	if err != nil {
		return -1, -1, err
	}
	return in, out, nil
}

// parseChannels turns one-based channel numbers into zero-based ones. It
// rejects the whole list if any entry is out of range.
func parseChannels(args []string) ([]int, error) {
	channels := make([]int, 0, len(args))
	for _, arg := range args {
		ch, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid channel %q", arg)
		}
		if ch < 1 || ch > routing.NumChannels {
			return nil, fmt.Errorf("channel %d (must be 1-%d): %w", ch, routing.NumChannels, routing.ErrInvalidChannel)
		}
		channels = append(channels, ch-1)
	}
	return channels, nil
}
