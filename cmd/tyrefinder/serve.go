package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/matst80/tyre-finder/pkg/catalog"
	"github.com/matst80/tyre-finder/pkg/common"
	"github.com/matst80/tyre-finder/pkg/export"
	"github.com/matst80/tyre-finder/pkg/gallery"
	"github.com/matst80/tyre-finder/pkg/server"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the filter api",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		store, err := loadStore(ctx)
		if err != nil {
			if store == nil || !errors.Is(err, catalog.ErrNoProducts) {
				return err
			}
			log.Warn(err)
		}

		opts := server.Options{
			Store:       store,
			ListingTTL:  viper.GetDuration("cache.listing-ttl"),
			Admin:       adminAuth(),
			ExportHosts: exportHosts(),
		}
		if !opts.Admin.Enabled() {
			log.Warn("No admin.api-key or admin.secret, /admin routes are disabled")
		}
		hooks := []common.ShutdownHook{}

		if addr := viper.GetString("redis.addr"); addr != "" {
			cache := server.NewCache(addr, viper.GetString("redis.password"), viper.GetInt("redis.db"))
			if err := cache.Ping(ctx); err != nil {
				log.Warnf("Redis at %s not reachable, listing results are not cached: %v", addr, err)
				cache.Close()
			} else {
				opts.Cache = cache
				hooks = append(hooks, func(ctx context.Context) error {
					return cache.Close()
				})
			}
		}

		var b *broker
		if url := viper.GetString("rabbit.url"); url != "" {
			b, err = connectBroker(url, viper.GetString("rabbit.prefix"))
			if err != nil {
				log.Errorf("Failed to connect to RabbitMQ: %v", err)
			} else {
				opts.Tracking = b.Tracking()
				opts.Notify = b.Notify
				hooks = append(hooks, b.Close)
			}
		}

		if base := viper.GetString("gallery.base"); base != "" {
			opts.Galleries = gallery.NewLoader(base, viper.GetInt("catalog.retries"))
		}
		if viper.GetBool("export.enabled") {
			opts.Exporter = export.NewExporter(exportConfig())
			if len(opts.ExportHosts) == 0 {
				log.Warn("No export.allowed-hosts, every export request will be rejected")
			}
		}

		app := server.NewApp(opts)
		if b != nil {
			if err := b.ListenForCatalogChanges(app); err != nil {
				log.Errorf("Failed to listen for catalog changes: %v", err)
			}
		}
		app.Sessions().StartPruning(ctx, time.Minute, viper.GetDuration("sessions.max-idle"))

		timeouts := common.LoadTimeoutConfig(common.DefaultTimeoutConfig())
		srv := common.NewServerWithTimeouts(&http.Server{
			Addr:    viper.GetString("listen"),
			Handler: app.Handler(),
		}, timeouts)
		debug := &http.Server{
			Addr:    viper.GetString("debug-listen"),
			Handler: app.DebugHandler(),
		}

		common.RunServerWithShutdown([]*http.Server{srv, debug}, "tyrefinder", timeouts.Shutdown, timeouts.Hook, hooks...)
		return nil
	},
}

func init() {
	serveCmd.Flags().String("listen", ":8080", "Api listen address")
	serveCmd.Flags().String("debug-listen", ":8081", "Health and metrics listen address")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("debug-listen", serveCmd.Flags().Lookup("debug-listen"))
}
