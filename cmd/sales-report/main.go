package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikolayk812/storefront-core/internal/app"
	"github.com/nikolayk812/storefront-core/internal/config"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		stdlog.Fatalf("sales-report failed: %v", err)
	}
}

func run() error {
	var (
		configDir = flag.String("config", "configs", "directory holding base.yaml and <env>.yaml")
		date      = flag.String("date", "", "report day as YYYY-MM-DD, defaults to yesterday in the report timezone")
	)
	flag.Parse()

	env := os.Getenv("APP_ENV") // dev | staging | prod
	if env == "" {
		env = "dev"
	}

	cfg, err := config.Load(*configDir, env)
	if err != nil {
		return err
	}

	// the report run never checks out, so it never needs stock delivery
	cfg.Notifications.Enabled = false

	location, err := cfg.ReportLocation()
	if err != nil {
		return err
	}

	day := time.Now().In(location).AddDate(0, 0, -1)
	if *date != "" {
		day, err = time.ParseInLocation(time.DateOnly, *date, location)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := container.Close(shutdownCtx); err != nil {
			stdlog.Printf("shutdown: %v", err)
		}
	}()

	report, err := container.SalesReport.Run(ctx, day)
	if err != nil {
		return err
	}

	container.Logger.Info("sales report done",
		zap.String("date", day.Format(time.DateOnly)),
		zap.Int("orders", report.TotalOrders),
		zap.Int("products", len(report.ProductsSold)),
	)

	return nil
}
