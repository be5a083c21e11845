package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entities"
)

type CreateUserCommand struct {
	Username     string
	FullName     string
	Email        string
	Password     string
	Role         string
	DatabasePath string
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("createuser", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Login name (required)")
	fs.StringVar(&cmd.FullName, "name", "", "Full name (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password (required, min 12 characters)")
	fs.StringVar(&cmd.Role, "role", string(entities.UserRoleLibrarian), "Role: admin, librarian or member")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s createuser [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account with credentials for local authentication.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s createuser -username admin -name \"Head Librarian\" -email admin@example.org -password <secret> -role admin\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.FullName == "" || cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("username, name, email and password are required")
	}

	switch entities.UserRole(cmd.Role) {
	case entities.UserRoleAdmin, entities.UserRoleLibrarian, entities.UserRoleMember:
	default:
		return fmt.Errorf("invalid role %q", cmd.Role)
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	cfg.Auth.Mode = config.AuthModeLocal

	authService := auth.NewService(db.DB, cfg.Auth)
	user, err := authService.CreateUser(cmd.Username, cmd.FullName, cmd.Email, cmd.Password, entities.UserRole(cmd.Role))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Printf("Created %s %q (id %d)\n", user.Role, user.Username, user.ID)
	return nil
}
