package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/matst80/tyre-finder/pkg/browser"
	"github.com/matst80/tyre-finder/pkg/catalog"
	"github.com/matst80/tyre-finder/pkg/common"
	"github.com/matst80/tyre-finder/pkg/export"
	"github.com/matst80/tyre-finder/pkg/server"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var envReplacer = strings.NewReplacer(".", "_", "-", "_")

var rootCmd = &cobra.Command{
	Use:   "tyrefinder",
	Short: "Cascading tyre filters over a product listing page.",
	Long: `tyrefinder reads a tyre product listing (markup, rendered page, csv or json export)
and serves the listing filter, find-your-tyre form, pattern sidebar, size table
filter, product galleries and table pdf export over http.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tyrefinder.yaml)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("source", "html", "Catalog source: html, url, rendered, csv or json")
	rootCmd.PersistentFlags().String("path", "", "Catalog file path or page url")
	viper.BindPFlag("catalog.source", rootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("path"))

	rootCmd.AddCommand(serveCmd, optionsCmd, catalogCmd, exportCmd, adminTokenCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".tyrefinder")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("tyrefinder")
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	setDefaults()

	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	common.SetLogLevel(levelString)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Unable to read config: %v\n", err)
			os.Exit(1)
		}
	}
}

func setDefaults() {
	viper.SetDefault("listen", ":8080")
	viper.SetDefault("debug-listen", ":8081")
	viper.SetDefault("catalog.render-delay", catalog.DefaultRenderDelay)
	viper.SetDefault("catalog.retries", 3)
	viper.SetDefault("gallery.base", "")
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("cache.listing-ttl", 10*time.Minute)
	viper.SetDefault("sessions.max-idle", 30*time.Minute)
	viper.SetDefault("rabbit.url", "")
	viper.SetDefault("rabbit.prefix", "tyres")
	viper.SetDefault("export.enabled", true)
	viper.SetDefault("export.chrome", "")
	viper.SetDefault("export.selector", export.DefaultSelector)
	viper.SetDefault("export.file-name", export.DefaultFileName)
	viper.SetDefault("export.allowed-hosts", []string{})
	viper.SetDefault("admin.api-key", "")
	viper.SetDefault("admin.secret", "")
}

func browserConfig() browser.Config {
	cfg := browser.DefaultConfig()
	cfg.ExecPath = viper.GetString("export.chrome")
	return cfg
}

func sourceConfig() catalog.SourceConfig {
	return catalog.SourceConfig{
		Kind:        viper.GetString("catalog.source"),
		Path:        viper.GetString("catalog.path"),
		RenderDelay: viper.GetDuration("catalog.render-delay"),
		RetryMax:    viper.GetInt("catalog.retries"),
		Browser:     browserConfig(),
	}
}

func exportConfig() export.Config {
	cfg := export.DefaultConfig()
	cfg.Selector = viper.GetString("export.selector")
	cfg.FileName = viper.GetString("export.file-name")
	cfg.Browser = browserConfig()
	return cfg
}

func adminAuth() *server.AdminAuth {
	return &server.AdminAuth{
		ApiKey: viper.GetString("admin.api-key"),
		Secret: []byte(viper.GetString("admin.secret")),
	}
}

// exportHosts is export.allowed-hosts, or the gallery host when none are set.
func exportHosts() []string {
	hosts := viper.GetStringSlice("export.allowed-hosts")
	if len(hosts) > 0 {
		return hosts
	}
	if u, err := url.Parse(viper.GetString("gallery.base")); err == nil && u.Hostname() != "" {
		return []string{u.Hostname()}
	}
	return nil
}

// loadStore builds the configured source and loads the first snapshot.
func loadStore(ctx context.Context) (*catalog.Store, error) {
	cfg := sourceConfig()
	if cfg.Path == "" {
		return nil, fmt.Errorf("no catalog path, set --path or catalog.path")
	}
	src, err := catalog.NewSource(cfg)
	if err != nil {
		return nil, err
	}
	store := catalog.NewStore(src)
	if _, err := store.Reload(ctx); err != nil {
		return store, fmt.Errorf("unable to load catalog from %s: %w", src, err)
	}
	return store, nil
}
