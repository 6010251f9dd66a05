package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vietddude/prober/internal/core/config"
	"github.com/vietddude/prober/internal/infra/storage"
	"github.com/vietddude/prober/internal/infra/storage/file"
)

var resetSentinelCmd = &cobra.Command{
	Use:   "reset-sentinel [job] [value]",
	Short: "Overwrite the sentinel of a job with the given value",
	Args:  cobra.ExactArgs(2),
	Run:   runResetSentinel,
}

func init() {
	rootCmd.AddCommand(resetSentinelCmd)
}

func runResetSentinel(cmd *cobra.Command, args []string) {
	name := args[0]
	value, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Printf("Invalid sentinel value: %v\n", err)
		os.Exit(1)
	}

	cfg := loadConfig()
	job, ok := findJob(cfg, name)
	if !ok {
		slog.Error("Unknown job", "job", name)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := resetSentinel(ctx, cfg, job, value); err != nil {
		slog.Error("Failed to reset sentinel", "job", name, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully reset sentinel for %s to %d\n", name, value)
}

func resetSentinel(ctx context.Context, cfg *config.AppConfig, job config.JobConfig, value int64) error {
	switch job.Store.Type {
	case config.StoreMemory:
		return fmt.Errorf("job %s keeps its sentinel in memory", job.Name)
	case config.StoreFile:
		st, err := file.Open[int64](job.Store.Path, storage.IntCodec{})
		if err != nil {
			return err
		}
		defer func() {
			_ = st.Close()
		}()
		return st.Commit(ctx, value)
	default:
		repo, closeFn, err := openRecords(ctx, cfg, job.Store.Type)
		if err != nil {
			return err
		}
		defer closeFn()
		text, err := storage.IntCodec{}.Encode(value)
		if err != nil {
			return err
		}
		return repo.Put(ctx, job.Name, text)
	}
}
