package cmd

import (
	"context"
	"fmt"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"persondir/store"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show where the directory is stored and how big it is",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := a.dir.Initialize().Wait(ctx); err != nil {
		return err
	}

	size, err := store.Size(a.blob, cfg.Storage.Key)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backend: %s\n", cfg.Storage.Backend)
	if cfg.Storage.Path != "" {
		fmt.Fprintf(out, "Path:    %s\n", cfg.Storage.Path)
	}
	fmt.Fprintf(out, "Key:     %s\n", cfg.Storage.Key)
	fmt.Fprintf(out, "People:  %d\n", len(a.dir.People()))
	fmt.Fprintf(out, "Size:    %s\n", units.HumanSize(float64(size)))
	return nil
}
