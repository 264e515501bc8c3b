package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/uploadauth/internal/config"
)

type CreateUserCommand struct {
	DatabasePath string
	Email        string
	Password     string
	Admin        bool

	cfg config.Config
	out io.Writer
}

func NewCreateUserCommand(cfg config.Config) *CreateUserCommand {
	return &CreateUserCommand{cfg: cfg}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database file")
	fs.StringVar(&cmd.Email, "email", "", "Account email (required)")
	fs.StringVar(&cmd.Password, "password", "", "Account password (required)")
	fs.BoolVar(&cmd.Admin, "admin", false, "Grant admin rights")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -email EMAIL -password PASSWORD [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an active account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -email dev@example.com -password s3cret\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s create-user -email ops@example.com -password s3cret -admin\n", os.Args[0])
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

func (cmd *CreateUserCommand) Run() error {
	svc, err := openServices(cmd.DatabasePath, cmd.cfg, cmd.cfg.Admin)
	if err != nil {
		return err
	}
	defer svc.Close()

	acct, err := svc.auth.CreateAccount(context.Background(), cmd.Email, cmd.Password, cmd.Admin)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	role := "user"
	if acct.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(output(cmd.out), "Created %s %s (id %d)\n", role, acct.Email, acct.ID)
	return nil
}
