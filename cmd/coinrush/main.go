package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinrush/client"
	"coinrush/config"
	"coinrush/network"
	"coinrush/room"
	"coinrush/store"
)

func main() {
	mode := flag.String("mode", "", "server or client (default from COINRUSH_MODE)")
	envFile := flag.String("env", ".env", "dotenv file to load")
	flag.Parse()

	if err := config.InitConfig(*envFile); err != nil {
		log.Fatalf("config: %v", err)
	}
	if *mode != "" {
		os.Setenv("COINRUSH_MODE", *mode)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Mode {
	case config.ModeServer:
		err = runServer(ctx, cfg)
	case config.ModeClient:
		err = runClient(ctx, cfg)
	}
	if err != nil {
		log.Fatalf("%s: %v", cfg.Mode, err)
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags)

	ropts := room.DefaultOptions()
	ropts.Tuning = cfg.Tuning
	ropts.SendInterval = cfg.SendInterval
	ropts.PurgeScores = cfg.PurgeScores
	ropts.Logger = log.New(os.Stdout, "[room] ", log.LstdFlags)

	nopts := network.Options{
		Key:        cfg.Key,
		ProtocolID: cfg.ProtocolID,
		Logger:     log.New(os.Stdout, "[net] ", log.LstdFlags),
	}

	var recorder *store.Recorder
	if cfg.DBDriver != config.DriverNone {
		st, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
		}
		defer st.Close()
		session, err := st.StartSession(ctx)
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		recorder = store.NewRecorder(st, session, 64, log.New(os.Stdout, "[store] ", log.LstdFlags))
		ropts.Recorder = recorder
		nopts.Store = st
		nopts.Session = session
		logger.Printf("recording scores to %s session %s", cfg.DBDriver, session)
	}

	r := room.New(ropts)
	go r.Run()
	nopts.Room = r

	srv := network.NewServer(nopts)
	srv.Listen("game", cfg.ServerAddr, srv.Routes())
	if cfg.APIAddr != "" {
		srv.Listen("api", cfg.APIAddr, srv.APIRoutes())
	}

	<-ctx.Done()
	logger.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
	r.Stop()
	if recorder != nil {
		recorder.Close()
	}
	return nil
}

func runClient(ctx context.Context, cfg *config.Config) error {
	// the terminal belongs to the UI, so logs go to a file
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "[client] ", log.LstdFlags)

	id := cfg.ClientID
	if id == 0 {
		id = uint64(time.Now().UnixMilli())
	}

	err = client.Run(ctx, client.Options{
		ServerURL:  cfg.ServerURL,
		Key:        cfg.Key,
		ProtocolID: cfg.ProtocolID,
		ClientID:   id,
		TokenTTL:   cfg.TokenTTL,
		HoldWindow: cfg.HoldWindow,
		Sound:      cfg.Sound,
		Logger:     logger,
	})
	if err != nil {
		logger.Printf("client stopped: %v", err)
		return fmt.Errorf("client %d: %w", id, err)
	}
	return nil
}
