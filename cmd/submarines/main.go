package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"

	"go.uber.org/zap"

	"github.com/yookoala/submarines/comms"
	"github.com/yookoala/submarines/config"
	"github.com/yookoala/submarines/game"
	"github.com/yookoala/submarines/logging"
	"github.com/yookoala/submarines/protocol"
	"github.com/yookoala/submarines/ui"
	"github.com/yookoala/submarines/wire"
)

// closerFunc adapts a cancel function to io.Closer.
type closerFunc func()

func (fn closerFunc) Close() error {
	fn()
	return nil
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logging.InitLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	code := run(cfg, log)
	logging.SyncLogger(log)
	os.Exit(code)
}

func run(cfg *config.Config, log *zap.SugaredLogger) int {
	var codec wire.Codec = wire.NewJSONCodec()
	if cfg.Codec == "legacy" {
		codec = wire.NewLegacyCodec(protocol.IsListField)
	}

	metrics := &comms.Metrics{}
	opts := comms.Options{
		Transport: comms.Transport(cfg.Transport),
		Addr:      cfg.Addr,
		Codec:     codec,
		Logger:    log,
		Metrics:   metrics,
	}

	var connector comms.Connector
	if cfg.Host {
		fmt.Printf("Waiting for the opponent on %s (%s)...\n", cfg.Addr, cfg.Transport)
		connector = &comms.Listener{Options: opts}
	} else {
		fmt.Printf("Connecting to %s (%s)...\n", cfg.Addr, cfg.Transport)
		connector = &comms.Dialer{Options: opts}
	}

	var prompter game.Prompter = ui.NewConsole(os.Stdin, os.Stdout)
	if cfg.Bot {
		prompter = ui.NewBot(log, cfg.BotSeed)
	}

	var negotiator game.StartNegotiator = game.NonceNegotiator{}
	if cfg.Start == "race" {
		negotiator = game.RaceNegotiator{ReadyTimeout: cfg.ReadyTimeout}
	}

	// Until the opponent shows up a signal only cancels the wait. After
	// that it also closes the session, which the opponent sees as CLOSED.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := comms.CloseOnSignal(closerFunc(cancel), log, os.Interrupt, syscall.SIGTERM)
	defer func() { stop() }()

	g := game.New(connector, prompter,
		game.WithNegotiator(negotiator),
		game.WithLogger(log),
		game.OnConnect(func(s *comms.Session) {
			stop()
			stop = comms.CloseOnSignal(closerFunc(func() {
				cancel()
				s.Close()
			}), log, os.Interrupt, syscall.SIGTERM)
		}),
	)

	outcome, err := g.Run(ctx)
	log.Infof("metrics: %v", metrics.Snapshot())
	if err != nil && ctx.Err() != nil {
		log.Infof("interrupted in stage %s: %s", g.Stage(), err)
		fmt.Fprintln(os.Stderr, "Interrupted.")
		return 130
	}
	if err != nil {
		log.Errorf("game ended in stage %s: %s", g.Stage(), err)
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	if cfg.Bot {
		fmt.Println("Outcome:", outcome)
	}
	return 0
}
