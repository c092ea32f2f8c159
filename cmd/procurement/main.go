package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alex-Easy/diploma-try-2/config"
	"github.com/Alex-Easy/diploma-try-2/internal/api"
	"github.com/Alex-Easy/diploma-try-2/internal/app"
	"github.com/Alex-Easy/diploma-try-2/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	h        = flag.Bool("h", false, "show help")
	conffile = flag.String("c", "procurement.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Usage: procurement [flags]")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()
	if *h {
		printHelp()
		return
	}

	cfg := config.LoadConfig(*conffile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	ws := webserver.Init(cfg, application.DB())
	api.InitRouter(cfg, application.Bus(), application)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ws.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ws.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
	}
}
