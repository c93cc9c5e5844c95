// Command statecast-sim is a reference telemetry device simulator.
//
// It registers the properties, groups and notifications of a YAML device
// definition, runs both schedulers and takes updates from an interactive
// prompt. Publishes go to stdout by default, or onto a NATS bus with
// -nats.
//
// Usage:
//
//	statecast-sim [flags]
//
// Flags:
//
//	-config string       Device definition file (built-in demo when empty)
//	-device string       Device ID (auto-generated when empty)
//	-nats string         NATS server URL; publish over NATS instead of stdout
//	-subject-prefix string  Leading NATS subject token (default "statecast")
//	-props-tick duration    Property scheduler cadence (default 100ms)
//	-notify-tick duration   Notification sweep cadence (default 1s)
//	-log-level string    Log level: debug, info, warn, error (default "info")
//	-event-log string    Append engine events to a CBOR log file
//	-metrics-addr string Serve Prometheus metrics on this address
//
// Examples:
//
//	# Run the built-in demo device against stdout
//	statecast-sim
//
//	# Run a custom device over NATS
//	statecast-sim -config device.yaml -nats nats://127.0.0.1:4222
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/statecast/statecast-go/pkg/log"
	"github.com/statecast/statecast-go/pkg/metrics"
	"github.com/statecast/statecast-go/pkg/natspub"
)

type options struct {
	ConfigFile    string
	DeviceID      string
	NATSURL       string
	SubjectPrefix string
	PropsTick     time.Duration
	NotifyTick    time.Duration
	LogLevel      string
	EventLog      string
	MetricsAddr   string
}

var opts options

func init() {
	flag.StringVar(&opts.ConfigFile, "config", "", "Device definition file (built-in demo when empty)")
	flag.StringVar(&opts.DeviceID, "device", "", "Device ID (auto-generated when empty)")
	flag.StringVar(&opts.NATSURL, "nats", "", "NATS server URL; publish over NATS instead of stdout")
	flag.StringVar(&opts.SubjectPrefix, "subject-prefix", natspub.DefaultSubjectPrefix, "Leading NATS subject token")
	flag.DurationVar(&opts.PropsTick, "props-tick", 100*time.Millisecond, "Property scheduler cadence")
	flag.DurationVar(&opts.NotifyTick, "notify-tick", time.Second, "Notification sweep cadence")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&opts.EventLog, "event-log", "", "Append engine events to a CBOR log file")
	flag.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := DefaultDeviceConfig()
	if opts.ConfigFile != "" {
		loaded, err := LoadDeviceConfig(opts.ConfigFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	deviceID := opts.DeviceID
	if deviceID == "" {
		deviceID = cfg.Device.ID
	}
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	slogger := newSlogger(opts.LogLevel)
	logger, closeLog, err := buildEventLogger(slogger)
	if err != nil {
		return err
	}
	defer closeLog()

	var (
		cloud   Cloud
		console *consoleCloud
	)
	if opts.NATSURL != "" {
		client, err := natspub.Connect(natspub.Config{
			URL:           opts.NATSURL,
			DeviceID:      deviceID,
			SubjectPrefix: opts.SubjectPrefix,
		})
		if err != nil {
			return fmt.Errorf("connect NATS: %w", err)
		}
		defer client.Close()
		cloud = client
		slogger.Info("publishing over NATS",
			"url", opts.NATSURL, "state_subject", client.StateSubject())
	} else {
		console = newConsoleCloud()
		cloud = console
	}

	var collector metrics.Collector
	if opts.MetricsAddr != "" {
		collector = metrics.NewPrometheus(nil, "")
		go func() {
			if err := http.ListenAndServe(opts.MetricsAddr, promhttp.Handler()); err != nil {
				slogger.Error("metrics server", "error", err)
			}
		}()
		slogger.Info("serving metrics", "addr", opts.MetricsAddr)
	}

	device, err := NewDevice(cfg, cloud, DeviceOptions{
		DeviceID:   deviceID,
		PropsTick:  opts.PropsTick,
		NotifyTick: opts.NotifyTick,
		Logger:     logger,
		Metrics:    collector,
	})
	if err != nil {
		return err
	}

	ia, err := newInteractive(device, console)
	if err != nil {
		return err
	}

	name := cfg.Device.Name
	if name == "" {
		name = "statecast device"
	}
	fmt.Fprintf(ia.Stdout(), "%s (%s)\n", name, deviceID)
	fmt.Fprintf(ia.Stdout(), "%d properties, %d groups, %d notifications\n",
		device.Props.Count(), device.Props.GroupCount(), device.Notify.Count())

	if err := device.Start(); err != nil {
		return err
	}
	defer device.Stop()

	ia.Run()
	return nil
}

// newSlogger builds the application logger at the requested level.
func newSlogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// buildEventLogger assembles the engine event logger: slog always, plus
// the CBOR file log when requested.
func buildEventLogger(slogger *slog.Logger) (log.Logger, func(), error) {
	adapter := log.NewSlogAdapter(slogger)
	if opts.EventLog == "" {
		return adapter, func() {}, nil
	}

	file, err := log.NewFileLogger(opts.EventLog)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	closer := func() {
		if err := file.Close(); err != nil {
			slogger.Warn("closing event log", "error", err)
		}
	}
	return log.NewMultiLogger(adapter, file), closer, nil
}
