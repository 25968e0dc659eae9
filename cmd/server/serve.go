package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	airdrop "vouch/internal/airdrop/service"
	"vouch/internal/asset"
	jwttoken "vouch/internal/jwt_token"
	"vouch/internal/platform/config"
	"vouch/internal/platform/httpserver"
	"vouch/internal/platform/logger"
	"vouch/internal/platform/metrics"
	"vouch/internal/protocol/admin"
	"vouch/internal/protocol/attestation"
	"vouch/internal/protocol/commitment"
	"vouch/internal/protocol/ratelimit"
	"vouch/internal/protocol/verifier"
	httptransport "vouch/internal/transport/http"
)

func newServeCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, metrics endpoint and event dispatcher",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.New(cfg.Logging)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	deps, err := openDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close(log)

	adminSvc, err := admin.New(deps.store, admin.WithLogger(log), admin.WithAuditPublisher(deps.dispatcher))
	if err != nil {
		return err
	}
	verifierSvc, err := verifier.New(deps.store, verifier.WithLogger(log), verifier.WithAuditPublisher(deps.dispatcher))
	if err != nil {
		return err
	}
	limitSvc, err := ratelimit.New(deps.store, ratelimit.WithLogger(log), ratelimit.WithAuditPublisher(deps.dispatcher))
	if err != nil {
		return err
	}
	commitSvc, err := commitment.New(deps.store, commitment.WithLogger(log), commitment.WithAuditPublisher(deps.dispatcher))
	if err != nil {
		return err
	}
	attestSvc, err := attestation.New(deps.store,
		attestation.WithLogger(log),
		attestation.WithAuditPublisher(deps.dispatcher),
		attestation.WithMetrics(m),
		attestation.WithDirectProofs(cfg.Protocol.AllowDirectProofs),
	)
	if err != nil {
		return err
	}
	airdropSvc, err := airdrop.New(deps.store,
		airdrop.WithLogger(log),
		airdrop.WithAuditPublisher(deps.dispatcher),
		airdrop.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	assetSvc, err := asset.New(deps.store, asset.WithLogger(log), asset.WithAuditPublisher(deps.dispatcher))
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)
	router := httptransport.NewRouter(httptransport.Services{
		Config:       adminSvc,
		Verifiers:    verifierSvc,
		RateLimits:   limitSvc,
		Commitments:  commitSvc,
		Attestations: attestSvc,
		Airdrops:     airdropSvc,
		Assets:       assetSvc,
		Events:       deps.events,
	}, httptransport.RouterConfig{
		Logger:         log,
		Metrics:        m,
		Validator:      jwttoken.NewJWTServiceAdapter(jwtService),
		AdminToken:     cfg.Server.AdminToken,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	log.InfoContext(ctx, "starting vouchd",
		"addr", cfg.Server.Addr,
		"metrics_addr", cfg.Server.MetricsAddr,
		"storage", cfg.Storage.Backend,
		"direct_proofs", cfg.Protocol.AllowDirectProofs,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return deps.dispatcher.Run(ctx)
	})
	g.Go(func() error {
		return httpserver.Serve(ctx, httpserver.New(cfg.Server.Addr, router), cfg.Server.ShutdownTimeout, log)
	})
	g.Go(func() error {
		return httpserver.Serve(ctx, httpserver.New(cfg.Server.MetricsAddr, metricsMux), cfg.Server.ShutdownTimeout, log)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("vouchd stopped: %w", err)
	}
	return nil
}
