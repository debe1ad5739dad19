package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/jobs"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"github.com/shashiranjanraj/storefront/pkg/notification"
	"github.com/shashiranjanraj/storefront/pkg/oauth"
	"github.com/shashiranjanraj/storefront/pkg/payment"
	"github.com/shashiranjanraj/storefront/pkg/schedule"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

var serveMigrateFlag bool

// storefront serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server, scheduler and workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrateFlag, "migrate", false, "apply pending migrations before serving")
}

func serve(ctx context.Context) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := database.Connect(); err != nil {
		return err
	}
	if serveMigrateFlag {
		if err := migration.New(database.DB).Run(); err != nil {
			return err
		}
	}

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("cache: redis unavailable, using in-process state", "error", err)
	}
	defer cache.Close()

	if uri := config.LogMongoURI(); uri != "" {
		closeSink, err := logger.AttachMongo(uri, config.LogMongoDB(), config.LogMongoCollection())
		if err != nil {
			logger.Warn("logger: mongo sink disabled", "error", err)
		}
		defer closeSink()
	}

	storage.Connect(ctx)

	pool := workerpool.New(config.WorkerPoolSize())
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pool.Shutdown(shutdownCtx); err != nil {
			logger.Warn("workerpool: shutdown incomplete", "error", err)
		}
	}()

	hub := ws.NewHub(middleware.DefaultCORSOptions(config.CORSOrigins()).OriginAllowed)
	go hub.Run(ctx)
	kernel.ListenOrderFeed(hub)

	deps := kernel.Deps{
		DB:       database.DB,
		States:   cache.NewStateStore(),
		Images:   storage.Default(),
		Notifier: services.NewMailNotifier(notification.New()),
		Pool:     pool,
		Hub:      hub,
	}
	if key := config.StripeSecretKey(); key != "" {
		deps.Gateway = payment.NewStripeGateway(key)
	} else {
		logger.Warn("payment: STRIPE_SECRET_KEY not set, checkout disabled")
	}
	if config.GoogleClientID() != "" {
		google, err := oauth.NewGoogleProvider(config.GoogleClientID(), config.GoogleClientSecret(), config.GoogleRedirectURL())
		if err != nil {
			logger.Warn("oauth: google sign-in disabled", "error", err)
		} else {
			deps.OAuth = google
		}
	}

	k := kernel.NewHTTPKernel(deps)

	if err := jobs.Register(k.Services().Resets); err != nil {
		return err
	}
	schedule.Start(ctx)

	return server.Start(ctx, ":"+config.AppPort(), k.Handler())
}

// storefront route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		k := kernel.NewHTTPKernel(kernel.Deps{DB: database.DB, Hub: ws.NewHub(nil)})

		infos := k.Router().Routes()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
