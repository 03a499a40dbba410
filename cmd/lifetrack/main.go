// Command lifetrack is the operational tool around the data core: it runs
// full backups and restores against the configured cloud backend, erases a
// user's local data, and sets the vault PIN.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/lifetrack/internal/buildinfo"
	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/config"
	"github.com/dmitrijs2005/lifetrack/internal/cryptox"
	"github.com/dmitrijs2005/lifetrack/internal/localstore"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/dmitrijs2005/lifetrack/internal/remote"
	"github.com/dmitrijs2005/lifetrack/internal/syncx"
	"golang.org/x/term"
)

// vaultPINItemID is the reserved vault item holding the bcrypt PIN hash.
const vaultPINItemID = "vault-pin"

func main() {
	buildinfo.Print(os.Stdout)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	if cfg.UserID == "" {
		return errors.New("user id is required (-u)")
	}

	log := logging.NewJSONLogger(os.Stderr, slog.LevelInfo)

	store := localstore.New(cfg.DataDir, log)
	defer store.EvictCache()

	rem, cleanup, err := newRemote(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := syncx.New(store, rem, log, syncx.Options{
		DebounceDelay:   cfg.DebounceDelay,
		MaxRetries:      cfg.MaxRetries,
		RetryBase:       cfg.RetryBase,
		MinSyncInterval: cfg.MinSyncInterval,
		BatchSize:       cfg.BatchSize,
	})

	switch cfg.Action {
	case "backup":
		return reportSweep("backed up", engine.PushAll(ctx, cfg.UserID))
	case "restore":
		return reportSweep("restored", engine.PullAll(ctx, cfg.UserID))
	case "erase":
		return erase(ctx, store, cfg.UserID)
	case "setpin":
		return setPIN(ctx, store, cfg.UserID)
	default:
		return fmt.Errorf("unknown action %q (want backup, restore, erase or setpin)", cfg.Action)
	}
}

// newRemote picks the backup backend: Postgres when a DSN is configured,
// otherwise S3/MinIO when a bucket is configured, otherwise an always
// unconfigured adapter (sync degrades to local-only no-ops).
func newRemote(ctx context.Context, cfg *config.Config, log logging.Logger) (remote.Store, func(), error) {
	if cfg.DatabaseDSN != "" {
		p, err := remote.NewPostgresStore(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting backup database: %w", err)
		}
		if err := p.InitSchema(ctx); err != nil {
			// The table may appear later; transient-classified reads retry.
			log.Warn(ctx, "backup schema init failed", "err", err)
		}
		return p, func() { _ = p.Close() }, nil
	}

	s, err := remote.NewS3Store(ctx, remote.S3Config{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("building s3 backend: %w", err)
	}
	return s, func() {}, nil
}

func reportSweep(verb string, res syncx.SweepResult) error {
	fmt.Printf("%s %d data types\n", verb, len(res.Synced))

	if len(res.Errors) > 0 {
		kinds := make([]string, 0, len(res.Errors))
		for kind := range res.Errors {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Printf("  %s: %v\n", kind, res.Errors[models.Kind(kind)])
		}
		return fmt.Errorf("%d data types failed", len(res.Errors))
	}
	return nil
}

// erase permanently deletes the user's local database after an explicit
// confirmation. Cloud rows are left alone.
func erase(ctx context.Context, store *localstore.Store, userID string) error {
	fmt.Printf("This permanently deletes all local data for %s. Type 'yes' to continue: ", userID)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading confirmation: %w", err)
	}
	if strings.TrimSpace(line) != "yes" {
		fmt.Println("aborted")
		return nil
	}

	if err := store.Destroy(ctx, userID); err != nil {
		return err
	}
	fmt.Println("erased")
	return nil
}

// setPIN stores the vault PIN hash in the reserved vault item, creating
// it on first use.
func setPIN(ctx context.Context, store *localstore.Store, userID string) error {
	pin, err := readPIN("New vault PIN: ")
	if err != nil {
		return err
	}
	confirm, err := readPIN("Repeat PIN: ")
	if err != nil {
		return err
	}
	if pin != confirm {
		return errors.New("pins do not match")
	}

	hash, err := cryptox.HashPIN(pin)
	if err != nil {
		return err
	}

	h, err := store.Open(ctx, userID)
	if err != nil {
		return err
	}
	vault := localstore.NewTable[models.VaultItem](h, models.KindVaultItems)

	_, err = vault.GetByKey(ctx, vaultPINItemID)
	switch {
	case err == nil:
		if err := vault.Update(ctx, vaultPINItemID, map[string]any{"content": hash}); err != nil {
			return err
		}
	case errors.Is(err, common.ErrNotFound):
		item := models.VaultItem{
			Base:     models.NewBase(userID),
			Title:    "PIN",
			Content:  hash,
			Category: "system",
		}
		item.ID = vaultPINItemID
		if err := vault.Add(ctx, item); err != nil {
			return err
		}
	default:
		return err
	}

	fmt.Println("pin set")
	return nil
}

func readPIN(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading pin: %w", err)
	}
	return string(b), nil
}
