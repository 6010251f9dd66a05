package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/prober/internal/core/config"
	"github.com/vietddude/prober/internal/core/domain"
	"github.com/vietddude/prober/internal/infra/storage"
	"github.com/vietddude/prober/internal/infra/storage/file"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current sentinel of every configured job",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "JOB\tSTORE\tSENTINEL\tUPDATED")

	shared := map[string]map[string]domain.SentinelRecord{}
	for _, job := range cfg.Jobs {
		value, updated := "-", "-"

		switch job.Store.Type {
		case config.StoreMemory:
			value = "(not persisted)"
		case config.StoreFile:
			if v, err := readFileSentinel(job.Store.Path); err != nil {
				slog.Warn("Failed to read sentinel file", "job", job.Name, "error", err)
			} else if v != "" {
				value = v
			}
		default:
			records, ok := shared[job.Store.Type]
			if !ok {
				records = loadRecords(ctx, cfg, job.Store.Type)
				shared[job.Store.Type] = records
			}
			if r, ok := records[job.Name]; ok {
				value = r.Value
				if r.UpdatedAt > 0 {
					updated = time.Unix(r.UpdatedAt, 0).UTC().Format(time.RFC3339)
				}
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", job.Name, job.Store.Type, value, updated)
	}
	_ = w.Flush()
}

func readFileSentinel(path string) (string, error) {
	v, err := file.Read[string](path, storage.StringCodec{})
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

// loadRecords indexes the sentinels of one shared backend by job.
func loadRecords(ctx context.Context, cfg *config.AppConfig, storeType string) map[string]domain.SentinelRecord {
	out := map[string]domain.SentinelRecord{}

	repo, closeFn, err := openRecords(ctx, cfg, storeType)
	if err != nil {
		slog.Error("Failed to open sentinel repository", "store", storeType, "error", err)
		return out
	}
	defer closeFn()

	records, err := repo.List(ctx)
	if err != nil {
		slog.Error("Failed to list sentinels", "store", storeType, "error", err)
		return out
	}
	for _, r := range records {
		out[r.Job] = r
	}
	return out
}
