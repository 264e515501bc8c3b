package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/uploadauth/internal/config"
)

// IssueTokenCommand mints an access token for an existing active account
// without a password. Operator use only.
type IssueTokenCommand struct {
	DatabasePath string
	Email        string
	TTL          time.Duration

	cfg config.Config
	out io.Writer
}

func NewIssueTokenCommand(cfg config.Config) *IssueTokenCommand {
	return &IssueTokenCommand{cfg: cfg}
}

func (cmd *IssueTokenCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database file")
	fs.StringVar(&cmd.Email, "email", "", "Email of the account to issue a token for (required)")
	fs.DurationVar(&cmd.TTL, "ttl", cmd.cfg.Token.TTL, "Token lifetime")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s issue-token -email EMAIL [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print an access token for an active account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s issue-token -email dev@example.com -ttl 10m\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Email == "" {
		fs.Usage()
		return fmt.Errorf("email is required")
	}
	if cmd.TTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	return nil
}

func (cmd *IssueTokenCommand) Run() error {
	svc, err := openServices(cmd.DatabasePath, cmd.cfg, cmd.cfg.Admin)
	if err != nil {
		return err
	}
	defer svc.Close()

	token, _, err := svc.auth.IssueToken(context.Background(), cmd.Email, cmd.TTL)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Fprintln(output(cmd.out), token)
	return nil
}
