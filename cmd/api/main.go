package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "dealfinder/internal/adapters/http_server"
	"dealfinder/internal/adapters/memcache"
	"dealfinder/internal/adapters/observability"
	"dealfinder/internal/adapters/omnidim"
	redisad "dealfinder/internal/adapters/redis"
	"dealfinder/internal/adapters/resend"
	"dealfinder/internal/adapters/serper"
	"dealfinder/internal/adapters/twilio"
	"dealfinder/internal/app"
	"dealfinder/internal/domain"
	"dealfinder/internal/pricing"
	"dealfinder/internal/shared"
	"dealfinder/internal/storage"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var integ server.Integrations
	checks := map[string]domain.Pinger{}

	// storage
	store, err := storage.Open(ctx, cfg.MySQLDSN, cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("storage unavailable")
	}
	defer store.Close()
	integ.Storage = store.Kind
	checks["storage"] = store
	log.Info().Str("storage", store.Kind).Msg("data log ready")

	// cache
	var cache domain.Cache = memcache.New(10 * time.Minute)
	integ.Cache = "memory"
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, using in-memory cache")
		} else {
			cache, integ.Cache = rc, "redis"
			checks["cache"] = rc
		}
	}

	// outside services; a nil client means demo data for that step
	var search domain.SearchClient
	if cfg.SerperKey != "" {
		if c, err := serper.New(cfg.SerperBase, cfg.SerperKey, 5); err != nil {
			log.Warn().Err(err).Msg("serper client disabled")
		} else {
			search, integ.Search = c, true
			checks["serper"] = c
		}
	}

	var voice domain.VoiceClient
	var agents domain.AgentProvisioner
	switch {
	case cfg.OmniKey != "":
		var opts []omnidim.Option
		if cfg.PublicURL != "" {
			opts = append(opts, omnidim.WithWebhookURL(cfg.PublicURL+"/v1/webhooks/voice"))
		}
		if c, err := omnidim.New(cfg.OmniBase, cfg.OmniKey, cfg.OmniAgentID, opts...); err != nil {
			log.Warn().Err(err).Msg("omnidimension client disabled")
		} else {
			voice, agents, integ.Voice = c, c, "omnidimension"
			checks["omnidimension"] = c
			if cfg.OmniAgentID == "" {
				log.Info().Msg("OMNIDIMENSION_AGENT_ID is empty; agents are provisioned per product")
			}
		}
	case cfg.TwilioSID != "":
		if c, err := twilio.New(cfg.TwilioBase, cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom); err != nil {
			log.Warn().Err(err).Msg("twilio client disabled")
		} else {
			voice, integ.Voice = c, "twilio"
			checks["twilio"] = c
		}
	}

	var mailer domain.Mailer
	if cfg.ResendKey != "" {
		if c, err := resend.New(cfg.ResendBase, cfg.ResendKey, cfg.ResendFrom); err != nil {
			log.Warn().Err(err).Msg("resend client disabled")
		} else {
			mailer, integ.Email = c, true
			checks["resend"] = c
		}
	}

	// services
	est := pricing.New()
	logs := app.NewLogService(store)
	h := &server.Handlers{
		Est:          est,
		Search:       app.NewSearchService(search, cache, cfg.CacheTTL, est),
		Calls:        app.NewCallService(voice, est, app.NewEventLog(0), logs, cfg.CallWorkers),
		Reports:      app.NewReportService(mailer, logs),
		Logs:         logs,
		Agents:       app.NewAgentService(agents),
		Integrations: integ,
		Checks:       checks,
	}

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Bool("demo", integ.Demo()).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
