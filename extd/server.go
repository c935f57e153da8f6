package extd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/satori/uuid"
	"github.com/yusufsyaifudin/appstore/container"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"github.com/yusufsyaifudin/appstore/transport/restapi"
	"github.com/yusufsyaifudin/ylog"
	jaegerPropagator "go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/contrib/propagators/ot"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const shutdownTimeout = 15 * time.Second

// RunServer located in extd (extended), it stitches config, container and transport then blocks until
// SIGINT/SIGTERM or the http server stops.
func RunServer(ctx context.Context, cfg container.Config) (err error) {

	if ctx == nil {
		ctx = context.TODO()
	}

	ctx = SetupLog(ctx)

	if err = cfg.Validate(); err != nil {
		ylog.Error(ctx, "config: invalid", ylog.KV("error", err))
		return
	}

	// ** tracing, exporter is optional but propagator is always registered
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		&ot.OT{},
		&jaegerPropagator.Jaeger{},
	))

	if cfg.Tracer.JaegerEndpoint != "" {
		exp, _err := jaeger.New(
			jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Tracer.JaegerEndpoint)),
		)
		if _err != nil {
			err = fmt.Errorf("cannot setup jaeger exporter: %w", _err)
			ylog.Error(ctx, "tracer: failed", ylog.KV("error", err))
			return
		}

		tp := tracer.InitTraceProvider(exp, cfg.App.Name, cfg.App.Environment)
		defer func() {
			if _err := tp.Shutdown(context.Background()); _err != nil {
				ylog.Error(ctx, "tracer: shutdown failed", ylog.KV("error", _err))
			}
		}()
	}

	// ** setup repositories
	ylog.Info(ctx, "container preparation: starting")
	var repositories *container.RepositoryImpl
	repositories, err = container.SetupRepositories(cfg.DatabaseResources)
	defer func() {
		ylog.Info(ctx, "closing container: starting")
		if repositories == nil {
			ylog.Info(ctx, "closing container: no need to close")
			return
		}

		if _err := repositories.Close(); _err != nil {
			ylog.Error(ctx, "closing container: failed", ylog.KV("error", _err))
		}

		ylog.Info(ctx, "closing container: done")
	}()

	if err != nil {
		ylog.Error(ctx, "container preparation: failed", ylog.KV("error", err))
		return
	}

	if err = repositories.Ping(ctx); err != nil {
		ylog.Error(ctx, "container preparation: ping failed", ylog.KV("error", err))
		return
	}

	var redisConns *container.RedisConnMaker
	if len(cfg.RedisResources) > 0 {
		redisConns, err = container.NewRedisConnMaker(ctx, cfg.RedisResources)
		if err != nil {
			ylog.Error(ctx, "redis preparation: failed", ylog.KV("error", err))
			return
		}

		defer func() {
			if _err := redisConns.Close(); _err != nil {
				ylog.Error(ctx, "closing redis: failed", ylog.KV("error", _err))
			}
		}()
	}

	ylog.Info(ctx, "container preparation: done")

	// ** START SERVICES using configured repositories
	ylog.Info(ctx, "services preparation: starting")
	services, err := container.SetupServices(cfg, repositories, redisConns)
	if err != nil {
		ylog.Error(ctx, "service preparation: failed", ylog.KV("error", err))
		return
	}

	defer func() {
		if _err := services.Close(); _err != nil {
			ylog.Error(ctx, "closing services: failed", ylog.KV("error", _err))
		}
	}()

	// ** HTTP TRANSPORT
	ylog.Info(ctx, "transport preparation: starting")
	serverConfig := restapi.Config{
		ServiceName:           cfg.App.Name,
		AuthService:           services.Auth(),
		AppService:            services.App(),
		ChangelogService:      services.Changelog(),
		RatingService:         services.Rating(),
		AllowedOrigins:        cfg.Transport.HTTP.AllowedOrigins,
		CookieSecure:          cfg.Auth.CookieSecure,
		DownloadRatePerMinute: cfg.Download.RatePerMinute,
		DownloadBurst:         cfg.Download.Burst,
		TrustedProxyHops:      cfg.Download.TrustedProxyHops,
		MaxBodyBytes:          cfg.Transport.HTTP.MaxBodyBytes,
	}

	ylog.Info(ctx, "http transport: starting")
	server, err := restapi.NewHTTPTransport(serverConfig)
	if err != nil {
		ylog.Error(ctx, "http transport: failed", ylog.KV("error", err))
		return
	}

	httpPort := fmt.Sprintf(":%d", cfg.Transport.HTTP.Port)
	h2s := &http2.Server{}
	httpServer := &http.Server{
		Addr:              httpPort,
		Handler:           h2c.NewHandler(server.Server(), h2s), // HTTP/2 Cleartext handler
		ReadHeaderTimeout: 10 * time.Second,
	}

	var apiErrChan = make(chan error, 1)
	go func() {
		ylog.Info(ctx, fmt.Sprintf("http transport: done running on port %d", cfg.Transport.HTTP.Port))
		apiErrChan <- httpServer.ListenAndServe()
	}()

	ylog.Info(ctx, "system: up and running...")

	// ** listen for sigterm signal
	var signalChan = make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-signalChan:
		ylog.Info(ctx, "system: exiting...")
		ylog.Info(ctx, "http transport: exiting...")

		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if _err := httpServer.Shutdown(shutdownCtx); _err != nil {
			ylog.Error(ctx, "http transport: ", ylog.KV("error", _err))
		}

	case _err := <-apiErrChan:
		if _err != nil && !errors.Is(_err, http.ErrServerClosed) {
			err = _err
			ylog.Error(ctx, "http transport: error", ylog.KV("error", err))
		}
	}

	return
}

// SetupLog sets zap as global ylog logger and returns ctx carrying system trace data.
func SetupLog(ctx context.Context) context.Context {

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "ts",
			MessageKey:     "msg",
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			LineEnding:     zapcore.DefaultLineEnding,
			LevelKey:       "level",
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
		}),
		zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), // pipe to multiple writer
		zapcore.DebugLevel,
	)

	zapLog := zap.New(core)

	propagateData := tracer.LogData{
		RemoteAddr: "system",
		TraceID:    uuid.NewV4().String(),
	}

	traceLog, err := ylog.NewTracer(propagateData, ylog.WithTag("tracer"))
	if err != nil {
		log.Fatalf("error prepare tracer system data: %s", err)
		return ctx
	}

	// inject context
	ctx = ylog.Inject(ctx, traceLog)

	// ** set global logger
	ylog.SetGlobalLogger(ylog.NewZap(zapLog))

	return ctx
}
