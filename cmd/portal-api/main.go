package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo"
	echo_middleware "github.com/labstack/echo/middleware"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/reform.v1"
	"gopkg.in/reform.v1/dialects/postgresql"

	"github.com/shrujansacharya/Team-Connect-App/config"
	"github.com/shrujansacharya/Team-Connect-App/engine"
	"github.com/shrujansacharya/Team-Connect-App/gateway"
	"github.com/shrujansacharya/Team-Connect-App/gateway/razorpay"
	"github.com/shrujansacharya/Team-Connect-App/httputils"
	"github.com/shrujansacharya/Team-Connect-App/ledger"
	"github.com/shrujansacharya/Team-Connect-App/period"
	"github.com/shrujansacharya/Team-Connect-App/services/auth"
	"github.com/shrujansacharya/Team-Connect-App/services/festivals"
	"github.com/shrujansacharya/Team-Connect-App/services/landing"
	"github.com/shrujansacharya/Team-Connect-App/services/members"
	"github.com/shrujansacharya/Team-Connect-App/services/savings"
	"github.com/shrujansacharya/Team-Connect-App/services/updater"
)

var (
	VERSION = "dev"

	onLoggerDev         = flag.Bool("logger-dev", false, "Enable development logger.")
	onLoggerDebugLevelF = flag.Bool("logger-debug-level", false, "Enable debug level logger.")
)

func main() {
	var wg sync.WaitGroup
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		defaultLogger("INFO", false)
		zap.L().Panic("Failed load configuration.", zap.Error(err))
	}

	level := cfg.LoggerLevel
	if *onLoggerDebugLevelF {
		level = "DEBUG"
	}
	defaultLogger(level, cfg.LoggerDev || *onLoggerDev)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	zap.L().Info("Starting portal API...", zap.String("version", VERSION))
	defer func() { zap.L().Info("Done.") }()

	sqlDB := setupPostgres(cfg.PGConn, 0, 5, 5)
	db := reform.NewDB(sqlDB, postgresql.Dialect, reform.NewPrintfLogger(zap.L().Sugar().Debugf))
	if _, err := db.Exec("SELECT version();"); err != nil {
		zap.L().Panic("Failed to check version to PostgreSQL.", zap.Error(err))
	}

	var natsConn *nats.EncodedConn
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("portal-api"))
		if err != nil {
			zap.L().Panic("Failed connect to NATS.", zap.Error(err))
		}
		defer nc.Close()
		natsConn, err = nats.NewEncodedConn(nc, nats.JSON_ENCODER)
		if err != nil {
			zap.L().Panic("Failed create encoded NATS connection.", zap.Error(err))
		}
		zap.L().Info("NATS - Connected!")
	}

	prometheus.MustRegister(engine.Metrics()...)

	provider := razorpay.NewProvider(razorpay.Config{
		KeyID:         cfg.RazorpayKeyID,
		KeySecret:     cfg.RazorpayKeySecret,
		WebhookSecret: cfg.RazorpayWebhookSecret,
		EntrypointURL: cfg.RazorpayEntrypointURL,
	})
	if !provider.Configured() {
		zap.L().Warn("Razorpay is not configured, payments are disabled.")
	}

	resolver := period.NewResolver()
	ledgerStore := ledger.NewPostgres(db)
	orderStore := gateway.NewStore(db)
	userStore := members.NewPostgres(db)
	verifier := engine.NewVerifier(provider.KeySecret(), ledgerStore)
	aggregator := engine.NewAggregator(ledgerStore, userStore)
	publisher := updater.NewPublisher(natsConn)

	tokens := auth.NewTokens(cfg.JWTSecret)
	guard := auth.NewGuard(tokens, userStore)

	authSvc := auth.NewService(userStore, tokens, cfg.AdminPassword)
	membersSvc := members.NewService(userStore, ledgerStore, resolver)
	savingsSvc := savings.NewService(resolver, ledgerStore, orderStore, provider, verifier, aggregator, userStore, publisher)
	festivalsSvc := festivals.NewService(db, func(c echo.Context) string {
		if u := auth.CurrentUser(c); u != nil {
			return u.UserID
		}
		return ""
	})
	landingSvc := landing.NewService(db, cfg.RazorpayKeyID)

	e := echo.New()

	e.Use(echo_middleware.CORSWithConfig(echo_middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET,
			echo.PUT,
			echo.POST,
			echo.DELETE,
			echo.OPTIONS,
			echo.CONNECT,
			echo.HEAD,
			echo.TRACE,
		},
	}))

	e.Use(echo_middleware.Recover())

	e.Use(echo_middleware.Logger())
	e.Use(echo_middleware.BodyLimit("64K"))
	e.Use(httputils.RequestInfoMiddleware(VERSION))

	api := e.Group("/api")
	authSvc.Routes(api, guard)
	membersSvc.Routes(api, guard.Authenticate, guard.RequireApproved, guard.RequireAdmin)
	savingsSvc.Routes(api, guard)
	festivalsSvc.Routes(api, guard.Authenticate, guard.RequireApproved, guard.RequireAdmin)
	landingSvc.Routes(api, guard.Authenticate, guard.RequireAdmin)

	e.POST("/webhook/razorpay", provider.WebhookHandler(savingsSvc.RecordCaptured))
	e.GET("/debug/metrics", echo.WrapHandler(httputils.DebugMux()))

	wg.Add(1)
	go func() {
		defer wg.Done()
		zap.L().Info("Start portal API server.",
			zap.String("address", ":"+cfg.Port),
		)
		if err := e.Start(":" + cfg.Port); err != nil {
			zap.L().Error("Failed run portal API server.", zap.Error(err))
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Failed shutdown portal API server.", zap.Error(err))
		}
		if err := e.Close(); err != nil {
			zap.L().Error("Failed close portal API server.", zap.Error(err))
		}
		zap.L().Debug("Portal API server stopped.")
	}()
	wg.Wait()
}

// Configure configure zap logger.
//
// Available values of level:
// - DEBUG
// - INFO
// - WARN
// - ERROR
// - DPANIC
// - PANIC
// - FATAL
func defaultLogger(levelSet string, dev bool) {
	level := zapcore.InfoLevel
	if err := level.Set(levelSet); err != nil {
		panic(err)
	}
	config := zap.NewProductionConfig()
	if dev {
		config = zap.NewDevelopmentConfig()
	}
	config.Level.SetLevel(level)
	l, err := config.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(l)
	zap.RedirectStdLog(l.Named("stdlog"))
}

func setupPostgres(conn string, maxLifetime time.Duration, maxOpen, maxIdle int) *sql.DB {
	sqlDB, err := sql.Open("postgres", conn)
	if err != nil {
		zap.L().Panic("Failed to connect to PostgreSQL.", zap.Error(err))
	}
	sqlDB.SetConnMaxLifetime(maxLifetime)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	if err = sqlDB.Ping(); err != nil {
		zap.L().Panic("Failed to connect ping PostgreSQL.", zap.Error(err))
	}
	zap.L().Info("Postgres - Connected!")
	return sqlDB
}
