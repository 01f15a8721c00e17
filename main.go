// midimatrix routes MIDI short messages from input ports to output ports
// through a connection matrix with per-output channel filters.
//
// Usage:
//
//	midimatrix [--config router.yaml] [--driver rtmidi|portmidi] [--quiet]
//	midimatrix --list
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/leafo/midimatrix/internal/mididriver"
	"github.com/leafo/midimatrix/internal/routing"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "midimatrix: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("midimatrix", pflag.ContinueOnError)
	configFile := flags.String("config", "", "Load startup settings and presets from a YAML file")
	driverName := flags.String("driver", "rtmidi", "MIDI backend: rtmidi or portmidi")
	queueSize := flags.Int("queue-size", routing.DefaultQueueSize, "Inbound messages buffered between the driver and the router")
	maxDevices := flags.Int("max-devices", routing.DefaultMaxDevices, "Maximum ports used per direction")
	quiet := flags.Bool("quiet", false, "Suppress MIDI message logging during operation")
	logLevel := flags.String("log-level", "info", "Log level: debug, info, warn, error")
	list := flags.Bool("list", false, "List MIDI ports and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	config := defaultConfig()
	if *configFile != "" {
		var err error
		config, err = loadConfig(*configFile)
		if err != nil {
			return err
		}
	}
	// Flags given on the command line win over the file.
	if flags.Changed("driver") {
		config.Driver = *driverName
	}
	if flags.Changed("queue-size") {
		config.QueueSize = *queueSize
	}
	if flags.Changed("max-devices") {
		config.MaxDevices = *maxDevices
	}
	if flags.Changed("quiet") {
		config.Quiet = *quiet
	}
	if flags.Changed("log-level") {
		config.LogLevel = *logLevel
	}
	if err := validateConfig(config); err != nil {
		return err
	}

	level, _ := parseLogLevel(config.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	drv, err := openDriver(config.Driver)
	if err != nil {
		return err
	}
	platform := mididriver.New(drv, logger)
	defer platform.Close()
	logger.Info("MIDI driver ready", "driver", platform.Name())

	engine, err := routing.NewEngine(platform, routing.Options{
		MaxDevices: config.MaxDevices,
		QueueSize:  config.QueueSize,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	if *list {
		fmt.Print(formatDevices("MIDI Inputs:", engine.ListDevices(routing.Input)))
		fmt.Print(formatDevices("MIDI Outputs:", engine.ListDevices(routing.Output)))
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, engine, config, os.Stdin, os.Stdout, logger)
}

// serve runs the engine, applies presets and drives the console until the
// user quits or ctx is canceled.
func serve(ctx context.Context, engine *routing.Engine, config *Config, in io.Reader, out io.Writer, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The console and the notice printer share the terminal.
	out = &syncWriter{w: out}

	engineDone := make(chan error, 1)
	go func() { engineDone <- engine.Run(ctx) }()

	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		printNotices(ctx, engine, out, config.Quiet, logger)
	}()

	if err := applyPresets(ctx, engine, config, out, logger); err != nil {
		cancel()
		<-engineDone
		<-printerDone
		return err
	}

	consoleErr := make(chan error, 1)
	go func() { consoleErr <- newConsole(engine, in, out).run(ctx) }()

	var err error
	select {
	case err = <-consoleErr:
	case <-ctx.Done():
	}

	fmt.Fprintln(out, "Shutting down...")
	cancel()
	<-engineDone
	<-printerDone
	return err
}

// applyPresets makes the connections and channel filters named in config.
// A preset naming a device that is not present is reported and skipped;
// only a stopped engine ends startup.
func applyPresets(ctx context.Context, engine *routing.Engine, config *Config, w io.Writer, logger *slog.Logger) error {
	ins := engine.ListDevices(routing.Input)
	outs := engine.ListDevices(routing.Output)

	skip := func(kind string, err error) {
		logger.Warn("skipping preset", "preset", kind, "error", err)
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Warning: skipping %s preset: %v", kind, err)))
	}

	for _, preset := range config.Channels {
		out, err := findDevice(outs, preset.Output)
		if err != nil {
			skip("channel", err)
			continue
		}
		if err := engine.SetChannelMask(ctx, out, maskFromChannels(preset.Enabled)); err != nil {
			return err
		}
		logger.Info("channel preset applied", "output", out, "channels", preset.Enabled)
	}

	for _, conn := range config.Connections {
		in, err := findDevice(ins, conn.Input)
		if err != nil {
			skip("connection", err)
			continue
		}
		out, err := findDevice(outs, conn.Output)
		if err != nil {
			skip("connection", err)
			continue
		}
		if err := engine.Connect(ctx, in, out); err != nil {
			return err
		}
	}
	return nil
}

// printNotices echoes routed and dropped messages and reports device
// failures until ctx is done.
func printNotices(ctx context.Context, engine *routing.Engine, out io.Writer, quiet bool, logger *slog.Logger) {
	ins := engine.ListDevices(routing.Input)
	outs := engine.ListDevices(routing.Output)

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-engine.Notices():
			switch n.Kind {
			case routing.NoticeRouted:
				if !quiet {
					fmt.Fprintln(out, formatRoute(deviceName(outs, n.Output), n.Message))
				}
			case routing.NoticeDropped:
				if !quiet {
					fmt.Fprintln(out, formatDropped(deviceName(ins, n.Input), n.Message))
				}
			case routing.NoticeOpenFailed:
				fmt.Fprintln(out, warnStyle.Render("Warning: "+n.Err.Error()))
			case routing.NoticeDriverError:
				logger.Warn("MIDI driver reported an error", "input", n.Input, "name", deviceName(ins, n.Input), "error", n.Err)
			}
		}
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
