package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/uploadauth/internal/config"
)

type BootstrapAdminCommand struct {
	DatabasePath string
	Email        string
	Password     string

	cfg config.Config
	out io.Writer
}

func NewBootstrapAdminCommand(cfg config.Config) *BootstrapAdminCommand {
	return &BootstrapAdminCommand{cfg: cfg}
}

func (cmd *BootstrapAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("bootstrap-admin", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database file")
	fs.StringVar(&cmd.Email, "email", cmd.cfg.Admin.Email, "Admin email (defaults to ADMIN_EMAIL)")
	fs.StringVar(&cmd.Password, "password", cmd.cfg.Admin.Password, "Admin password (defaults to ADMIN_PASSWORD)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s bootstrap-admin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create the administrator account if it does not exist yet.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("email and password are required")
	}
	return nil
}

func (cmd *BootstrapAdminCommand) Run() error {
	svc, err := openServices(cmd.DatabasePath, cmd.cfg, config.Admin{Email: cmd.Email, Password: cmd.Password})
	if err != nil {
		return err
	}
	defer svc.Close()

	created, acct, err := svc.auth.BootstrapAdmin(context.Background())
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	out := output(cmd.out)
	if !created {
		fmt.Fprintf(out, "Admin %s already exists (id %d)\n", acct.Email, acct.ID)
		return nil
	}
	fmt.Fprintf(out, "Created admin %s (id %d)\n", acct.Email, acct.ID)
	return nil
}
