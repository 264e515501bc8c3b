package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/uploadauth/internal/config"
)

// CleanupLoginsCommand prunes the login history synchronously, bypassing
// the task queue.
type CleanupLoginsCommand struct {
	DatabasePath string
	Days         int

	cfg config.Config
	out io.Writer
}

func NewCleanupLoginsCommand(cfg config.Config) *CleanupLoginsCommand {
	return &CleanupLoginsCommand{cfg: cfg}
}

func (cmd *CleanupLoginsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("cleanup-logins", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database file")
	fs.IntVar(&cmd.Days, "days", cmd.cfg.LoginHistory.RetentionDays, "Delete login events older than this many days")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s cleanup-logins [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete login history older than the retention period.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Days <= 0 {
		fs.Usage()
		return fmt.Errorf("days must be positive")
	}
	return nil
}

func (cmd *CleanupLoginsCommand) Run() error {
	svc, err := openServices(cmd.DatabasePath, cmd.cfg, cmd.cfg.Admin)
	if err != nil {
		return err
	}
	defer svc.Close()

	deleted, err := svc.history.Prune(context.Background(), cmd.Days)
	if err != nil {
		return fmt.Errorf("failed to clean up login events: %w", err)
	}

	fmt.Fprintf(output(cmd.out), "Deleted %d login events older than %d days\n", deleted, cmd.Days)
	return nil
}
