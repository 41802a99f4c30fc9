package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flashnotify/internal/app"
	"flashnotify/internal/config"
	logx "flashnotify/pkg/logx"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "usage: flashnotify (takes no arguments; configure via TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID and FLASHNOTIFY_CONFIG)")
		return 2
	}

	boot := logx.NewConsole("INFO").With(logx.String("comp", "main"))

	if err := config.LoadDotenv(os.Getenv(config.EnvDotenvPath)); err != nil {
		boot.Warn("dotenv not loaded", logx.Err(err))
	}
	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		boot.Error("fatal: configuration", logx.Err(err))
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfg)
	if err != nil {
		boot.Error("fatal: init", logx.Err(err))
		return 1
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		boot.Error("fatal: run", logx.Err(err))
		return 1
	}
	return 0
}
