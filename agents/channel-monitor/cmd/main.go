package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	channelmonitor "channel-monitor/agents/channel-monitor"
	"channel-monitor/shared/config"
	"channel-monitor/shared/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	agent := channelmonitor.NewChannelMonitorAgent(cfg)
	s := scheduler.New(cfg, agent)

	if cfg.Schedule == "" {
		if err := agent.Initialize(ctx); err != nil {
			log.Fatalf("Failed to initialize agent: %v", err)
		}
		if err := s.RunOnce(ctx); err != nil {
			log.Fatalf("Failed to run: %v", err)
		}
		return
	}

	log.Println("Starting scheduler...")
	if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Scheduler failed: %v", err)
	}
}
