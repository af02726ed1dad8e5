package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/civicsignal/petitiond/internal/config"
	"github.com/civicsignal/petitiond/internal/infra/database"
	"github.com/civicsignal/petitiond/internal/infra/gateway"
	"github.com/civicsignal/petitiond/internal/infra/repository"
	"github.com/civicsignal/petitiond/internal/present/rest"
	"github.com/civicsignal/petitiond/internal/present/rest/middleware"
	"github.com/civicsignal/petitiond/internal/service"
	"github.com/civicsignal/petitiond/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	conf, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		shutdown, err := setupTracer(conf.Server.TraceEndpoint)
		if err != nil {
			logger.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		logger.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)
	counts := repository.NewCountCache(mc)

	userRepo := repository.NewUserRepository(db)
	petitionRepo := repository.NewPetitionRepository(db, counts)
	signatureRepo := repository.NewSignatureRepository(db, counts)
	engagementRepo := repository.NewEngagementRepository(db)

	captcha := gateway.NewCaptchaVerifier(conf.Captcha.Secret, logger)
	mailer := gateway.NewMailClient(conf.Mail.Endpoint, conf.Mail.APIKey, conf.Mail.FromAddress)
	identity := gateway.NewIdentityClient(
		conf.Auth.IssuerBaseURL,
		conf.Auth.ClientID,
		conf.Auth.ClientSecret,
		conf.Auth.RedirectURI,
		logger,
	)

	authService := service.NewAuthService(identity, userRepo, conf.Auth.SessionSecret)
	notifier := service.NewNotifier(mailer, conf.Server.BaseURL, logger)
	events := service.NewEventService(rdb, logger)

	petitionUC := usecase.NewPetitionUsecase(petitionRepo, userRepo, captcha, notifier, events, logger)
	signatureUC := usecase.NewSignatureUsecase(signatureRepo, petitionRepo, captcha, notifier, events, logger)
	engagementUC := usecase.NewEngagementUsecase(engagementRepo, petitionRepo, signatureRepo, signatureUC, notifier, events, logger)

	handler := rest.NewHandler(petitionUC, signatureUC, engagementUC, authService, events)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("petitiond"))
	}
	e.Use(middleware.NewAuthMiddleware(authService).IdentifyIdentity)

	handler.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

func setupTracer(endpoint string) (func(), error) {
	ctx := context.Background()

	opts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
	if endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "petitiond"),
		)),
	)
	otel.SetTracerProvider(provider)

	return func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slog.Error("failed to shut down tracer provider", slog.String("error", err.Error()))
		}
	}, nil
}
