package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm/config"
	"crm/controllers"
	"crm/logger"
	"crm/middleware"
	"crm/models"
	"crm/repository"
	"crm/routes"
	"crm/services"
	"crm/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(os.Args) > 1 {
		var cmdErr error
		switch os.Args[1] {
		case "token":
			cmdErr = printToken(cfg, os.Args[2:])
		case "hash-key":
			cmdErr = printKeyHash(os.Args[2:])
		default:
			cmdErr = fmt.Errorf("unknown command %q", os.Args[1])
		}
		if cmdErr != nil {
			fmt.Fprintln(os.Stderr, cmdErr)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		logger.L().WithError(err).Fatal("server stopped")
	}
}

// printToken handles `crm token <id> [role]`.
func printToken(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: crm token <id> [role]")
	}
	role := middleware.RoleAdmin
	if len(args) > 1 {
		role = args[1]
	}
	token, err := utils.GenerateToken([]byte(cfg.JWTSecret), args[0], role, utils.TokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

// printKeyHash handles `crm hash-key <key>` and prints the value for
// API_KEY_HASH.
func printKeyHash(args []string) error {
	if len(args) != 1 || args[0] == "" {
		return errors.New("usage: crm hash-key <key>")
	}
	hash, err := utils.HashAPIKey(args[0])
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func run(cfg *config.Config) error {
	log, err := logger.Init(cfg.Log)
	if err != nil {
		return err
	}

	location, err := cfg.Location()
	if err != nil {
		return err
	}
	models.SetZone(location)

	gin.SetMode(cfg.GinMode)
	log.Printf("Running in %s mode with %s store", gin.Mode(), cfg.StoreDriver)

	store, err := config.OpenStore(cfg, location)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			log.WithError(err).Warn("closing store failed")
		}
	}()

	middleware.InitMetrics(prometheus.DefaultRegisterer)

	if cfg.StatsInterval > 0 {
		scheduler, err := utils.StartStatsScheduler(location, cfg.StatsInterval, store)
		if err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           newRouter(cfg, store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newRouter(cfg *config.Config, store repository.Store) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.PrometheusMiddleware())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(middleware.ErrorHandler())

	auth := middleware.AuthConfig{
		JWTSecret:  []byte(cfg.JWTSecret),
		APIKeyHash: cfg.APIKeyHash,
	}
	sellerCtl := controllers.NewSellerController(services.NewSellerService(store, nil))
	transactionCtl := controllers.NewTransactionController(services.NewTransactionService(store, nil))

	routes.InitializeOpsRoutes(r, store, cfg.MetricsAllowedIPs)
	routes.InitializeRoutes(r, sellerCtl, transactionCtl, auth)
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-API-Key", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return c
}
