package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/impressalabs/console/config"
	"github.com/impressalabs/console/internal/adminapi"
	"github.com/impressalabs/console/internal/app"
	"github.com/impressalabs/console/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "help usage")
	conffile = flag.String("c", "/etc/impressa-console.yml", "config yaml file")
)

func printHelp() {
	if *h {
		ustr := fmt.Sprintf("impressa-console usage:\n%s -h | -c [config file]\n\nOptions:", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s\n", ustr)
		flag.PrintDefaults()
		os.Exit(0)
	}
}

func main() {
	flag.Parse()
	printHelp()

	cfg := config.LoadConfig(*conffile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	adminapi.Setup(application.Sessions(), application.Catalog(), application.IdNode())
	server := webserver.NewWebServer(cfg, application.Sessions())

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalf("web server error %s", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		zap.S().Errorf("web server shutdown error %s", err.Error())
	}
}
