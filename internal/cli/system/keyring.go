package system

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/julianstephens/habitreel/internal/cli"
	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/keyring"
	"github.com/julianstephens/habitreel/internal/storage"
	"github.com/julianstephens/habitreel/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	Status KeyringStatusCmd `cmd:"" help:"Check keyring availability and stored secrets."`
	Token  KeyringTokenCmd  `cmd:"" help:"Manage the photo provider token."`
}

// KeyringSetCmd stores the database connection string in the OS keyring.
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !storage.IsPostgres(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// The keyring is encrypted, so embedded passwords are allowed here.
		ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
		ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return err
	}

	ctx.Println("✓ Connection string stored successfully in OS keyring")
	ctx.Printf("  %s will use it whenever no database is configured\n", constants.AppName)
	return nil
}

type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no connection string found in keyring. Use '%s keyring set' to store one", constants.AppName)
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	ctx.Println("Connection string retrieved from keyring:")
	ctx.Println(maskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}

	ctx.Println("✓ Connection string deleted from OS keyring")
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}

	ctx.Println("✓ OS keyring is available")
	for _, secret := range []keyring.Secret{keyring.ConnectionString, keyring.RewardToken} {
		if _, err := secret.Get(); err == nil {
			ctx.Printf("✓ A %s is stored in keyring\n", secret.Label)
		} else if errors.Is(err, keyring.ErrNotFound) {
			ctx.Printf("ℹ No %s stored in keyring\n", secret.Label)
		}
	}
	return nil
}

type KeyringTokenCmd struct {
	Set    KeyringTokenSetCmd    `cmd:"" help:"Store the bearer token sent to the photo provider."`
	Delete KeyringTokenDeleteCmd `cmd:"" help:"Remove the photo provider token."`
}

type KeyringTokenSetCmd struct {
	Token string `arg:"" help:"Bearer token for the photo provider."`
}

func (cmd *KeyringTokenSetCmd) Run(ctx *cli.Context) error {
	if err := keyring.RewardToken.Set(strings.TrimSpace(cmd.Token)); err != nil {
		return err
	}
	ctx.Println("✓ Photo provider token stored in OS keyring")
	return nil
}

type KeyringTokenDeleteCmd struct{}

func (cmd *KeyringTokenDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.RewardToken.Delete(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no photo provider token found in keyring")
		}
		return err
	}
	ctx.Println("✓ Photo provider token deleted from OS keyring")
	return nil
}

// maskPassword hides the password of a URL or key=value connection string.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil || u.User == nil {
			return connStr
		}
		if _, ok := u.User.Password(); !ok {
			return connStr
		}
		u.User = url.UserPassword(u.User.Username(), "****")
		return u.String()
	}

	fields := strings.Fields(connStr)
	for i, field := range fields {
		if strings.HasPrefix(field, "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
