// Команда posctl: консольный доступ к заказам кассы через те же хранилища, что и сервис.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundry-pos/internal/app"
)

func loadDependencies(ctx context.Context) (*app.Dependencies, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.ConfigureLogging()
	return app.NewDependencies(ctx, cfg, prometheus.NewRegistry(), log.WithField("component", "posctl"))
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.WarnLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, loadDependencies).RunContext(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("posctl failed")
	}
}
