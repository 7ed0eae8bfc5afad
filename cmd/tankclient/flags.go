package main

import (
	"flag"
	"io"

	"github.com/zeusync/tankclient/internal/config"
)

// parseFlags loads the config file named by -config (if any) and applies
// every flag that was set on top of it.
func parseFlags(args []string, output io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("tankclient", flag.ContinueOnError)
	fs.SetOutput(output)

	configPath := fs.String("config", "", "YAML config file")
	mode := fs.String("mode", "", "play, observe, replay or serve")
	name := fs.String("name", "", "player name; empty joins as observer")
	host := fs.String("host", "", "game server host (listen host in serve mode)")
	port := fs.Int("port", 0, "game server port (listen port in serve mode)")
	replayFile := fs.String("replay", "", "replay file, optionally gzip-compressed")
	speed := fs.Int("speed", 0, "replay speed exponent: plays at 2^speed")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	metricsAddr := fs.String("metrics-addr", "", "serve Prometheus metrics on this address")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *mode
		case "name":
			cfg.Player.Name = *name
		case "host":
			cfg.Server.Host = *host
		case "port":
			cfg.Server.Port = *port
		case "replay":
			cfg.Replay.File = *replayFile
		case "speed":
			cfg.Replay.SpeedExponent = *speed
		case "log-level":
			cfg.Log.Level = *logLevel
		case "metrics-addr":
			cfg.Metrics.Addr = *metricsAddr
		}
	})

	// a nameless player can only watch
	if cfg.Mode == config.ModePlay && cfg.Player.Name == "" {
		cfg.Mode = config.ModeObserve
	}
	return cfg, cfg.Validate()
}
