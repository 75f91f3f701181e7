package main

import (
	"errors"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/matst80/tyre-finder/pkg/catalog"
	"github.com/matst80/tyre-finder/pkg/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load the catalog and print it as json",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(cmd.Context())
		if err != nil && !errors.Is(err, catalog.ErrNoProducts) {
			return err
		}
		c := store.Get()

		if notify, _ := cmd.Flags().GetBool("notify"); notify {
			if err := notifyChange(c); err != nil {
				return err
			}
		}
		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			log.Infof("%d products, %d table rows (%d visible)", len(c.Products), len(c.Rows), c.VisibleCount())
			return nil
		}
		enc := sonic.ConfigDefault.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

// notifyChange tells running servers to reload.
func notifyChange(c *catalog.Catalog) error {
	url := viper.GetString("rabbit.url")
	if url == "" {
		return errors.New("rabbit.url is not set")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	defer conn.Close()
	change := messaging.CatalogChange{Source: c.Source, Reason: "catalog command", Time: time.Now()}
	if err := messaging.NotifyCatalogChanged(conn, viper.GetString("rabbit.prefix"), change); err != nil {
		return err
	}
	log.Infof("Published %s for %s", messaging.CatalogChanged, c.Source)
	return nil
}

func init() {
	catalogCmd.Flags().Bool("notify", false, "Publish a catalog change so running servers reload")
	catalogCmd.Flags().BoolP("quiet", "q", false, "Only log counts")
}
