package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rentledger/rentledger-backend/internal/adapters/mailbox"
	"github.com/rentledger/rentledger-backend/internal/adapters/notify"
	"github.com/rentledger/rentledger-backend/internal/adapters/tabular"
	"github.com/rentledger/rentledger-backend/internal/application/accrual"
	"github.com/rentledger/rentledger-backend/internal/application/reconcile"
	"github.com/rentledger/rentledger-backend/internal/directory"
	"github.com/rentledger/rentledger-backend/internal/domain/classifier"
	"github.com/rentledger/rentledger-backend/internal/domain/ledger"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/config"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

// ledgersKey is where all tenant ledger tables live in the key-value store.
const ledgersKey = "ledgers"

// App holds the wired application graph shared by all commands.
type App struct {
	Store     *storage.Storage
	Tenants   *tenant.KVProvider
	Grids     *tabular.GridStore
	Poster    *ledger.Poster
	Directory *directory.Directory
	Mailbox   mailbox.Mailbox
	Engine    *reconcile.Engine
	Accruals  *accrual.Runner
}

// BuildOptions selects which parts of the application graph to connect.
type BuildOptions struct {
	// WithMailbox connects Gmail and the reconciliation engine. Off for
	// commands that only touch the ledger, so they run without credentials.
	WithMailbox bool
	// DryRun makes the engine report what it would do without posting,
	// labeling or notifying.
	DryRun bool
}

// BuildApp wires storage, the ledger poster, the tenant directory and the
// run pipelines.
func BuildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts BuildOptions) (*App, error) {
	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	app := &App{Store: store}
	app.Tenants = tenant.NewKVProvider(store)
	app.Grids = tabular.NewGridStore(store, ledgersKey)
	app.Poster = ledger.NewPoster(app.Grids, logger)

	// Registration fails closed: a tenant with an invalid config or a
	// structurally broken ledger is rejected.
	configValidator := directory.ValidatorFunc(func(ctx context.Context, id tenant.ID) error {
		cfg, err := app.Tenants.GetConfig(ctx, id)
		if err != nil {
			return err
		}
		return app.Poster.ValidateStructure(cfg)
	})
	app.Directory = directory.New(store, app.Grids, logger,
		directory.WithValidators(configValidator),
		directory.WithSettleDelay(cfg.Reconcile.SettleDelay))

	app.Accruals = accrual.NewRunner(app.Tenants, app.Poster, logger)

	if opts.WithMailbox {
		gmailbox, err := mailbox.NewGmailMailbox(ctx, mailbox.GmailConfig{
			CredentialsPath: cfg.Mailbox.CredentialsPath,
			TokenPath:       cfg.Mailbox.TokenPath,
		})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect mailbox: %w", err)
		}
		app.Mailbox = gmailbox
		app.Engine = reconcile.NewEngine(
			app.Tenants,
			app.Mailbox,
			classifier.NewClassifier(classifier.DefaultRegistry(logger)),
			app.Poster,
			reconcile.NewDedupStore(store, cfg.Reconcile.DedupTTL),
			notify.NewLogNotifier(logger),
			reconcile.Labels{
				Pending: cfg.Mailbox.PendingLabel,
				Done:    cfg.Mailbox.DoneLabel,
				Failed:  cfg.Mailbox.FailedLabel,
			},
			logger,
			reconcile.WithRunLogger(store),
			reconcile.WithDryRun(opts.DryRun),
		)
	}

	return app, nil
}

// Close releases the application's resources.
func (a *App) Close() error {
	return a.Store.Close()
}
