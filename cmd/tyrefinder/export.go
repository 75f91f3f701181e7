package main

import (
	"github.com/matst80/tyre-finder/pkg/export"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <url>",
	Short: "Save the size table of a page as a pdf",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := exportConfig()
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.FileName
		}
		exporter := export.NewExporter(cfg)
		if err := exporter.ExportFile(cmd.Context(), args[0], out); err != nil {
			return err
		}
		log.Infof("Saved %s", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Output file (default is export.file-name)")
}
