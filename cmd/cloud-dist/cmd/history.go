package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyPrune string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent transfers",
	Long:  `Shows the local log of recent uploads and downloads.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}

		store := openHistory(cfg)
		if store == nil {
			return fmt.Errorf("transfer history is unavailable")
		}
		defer store.Close()

		if historyPrune != "" {
			age, err := time.ParseDuration(historyPrune)
			if err != nil {
				return fmt.Errorf("invalid prune age %q: %w", historyPrune, err)
			}
			n, err := store.Prune(time.Now().Add(-age))
			if err != nil {
				return err
			}
			fmt.Printf("Pruned %d records\n", n)
			return nil
		}

		records, err := store.Recent(historyLimit)
		if err != nil {
			return err
		}

		if jsonOut {
			return json.NewEncoder(os.Stdout).Encode(records)
		}

		if len(records) == 0 {
			fmt.Println("No transfers recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tDIRECTION\tNAME\tFOLDER\tSIZE\tNOTE")
		for _, r := range records {
			note := ""
			if r.Duplicate {
				note = "name already existed"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.Direction, r.Name, r.Folder, r.Size, note)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records to show")
	historyCmd.Flags().StringVar(&historyPrune, "prune", "", "delete records older than this age (e.g. 720h)")
	rootCmd.AddCommand(historyCmd)
}
