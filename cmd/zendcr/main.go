package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/pbinitiative/zendcr/internal/config"
	"github.com/pbinitiative/zendcr/internal/log"
	"github.com/pbinitiative/zendcr/internal/otel"
	"github.com/pbinitiative/zendcr/internal/profile"
	"github.com/pbinitiative/zendcr/internal/rest"
	"github.com/pbinitiative/zendcr/pkg/bpmn"
	"github.com/pbinitiative/zendcr/pkg/dcr/exporter"
	"github.com/pbinitiative/zendcr/pkg/storage/inmemory"
)

func main() {
	profile.InitProfile()
	log.Init()
	defer log.Sync()

	appContext, ctxCancel := context.WithCancel(context.Background())

	conf := config.InitConfig()

	openTelemetry, err := otel.SetupOtel(conf.Tracing)
	if err != nil {
		log.Error("Failed to set up OTEL: %s", err)
		os.Exit(1)
	}

	engine := bpmn.NewEngine(
		bpmn.EngineWithName(conf.Name),
		bpmn.EngineWithNestingThreshold(conf.Translation.NestingThreshold),
		bpmn.EngineWithTranslationCache(inmemory.NewTranslationCache(conf.Translation.CacheSize, conf.Translation.CacheTTL)),
		bpmn.EngineWithExporter(exporter.NewLogExporter(hclog.Default().Named("exporter"))),
	)
	log.Info("Started %s with nesting threshold %d", engine.Name(), engine.NestingThreshold())

	// Start the public API
	svr := rest.NewServer(&engine, conf)
	svr.Start()

	appStop := make(chan os.Signal, 2)
	handleSigterm(appStop, appContext)

	ctxCancel()
	// cleanup
	svr.Stop(context.Background())
	openTelemetry.Stop(context.Background())
}

func handleSigterm(appStop chan os.Signal, ctx context.Context) {
	signal.Notify(appStop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	sig := <-appStop
	log.Infof(ctx, "Received %s. Shutting down", sig.String())
}
