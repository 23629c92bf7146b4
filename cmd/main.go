package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"plp-bookstore/configs"
	"plp-bookstore/internal/audit"
	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/db"
	"plp-bookstore/internal/runner"
)

// errReported marks a failure that has already been logged.
var errReported = errors.New("reported")

// configError marks failures caused by configuration rather than the store.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

var flags struct {
	uri             string
	dbName          string
	collection      string
	auditCollection string
	logLevel        string
	page            int
	pageSize        int
	opTimeout       time.Duration
}

var rootCmd = &cobra.Command{
	Use:   "bookstore",
	Short: "Run the book catalog query sequence against MongoDB",
	Long: `bookstore connects to MongoDB, runs a fixed sequence of queries against
the books collection and prints every result:

  filters by genre, year and author; a price update and a delete by title;
  a compound filter; a projection; price sorts; a page of books; average
  price per genre; the author with most books; books per decade; index
  creation; and the query plan for the author lookup.

Configuration comes from .env, the environment (MONGO_URI, DB_NAME,
COLLECTION, AUDIT_COLLECTION, PAGE, PAGE_SIZE, CONNECT_TIMEOUT, OP_TIMEOUT,
LOG_LEVEL) and flags, in increasing priority.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runQueries,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.uri, "uri", "", "MongoDB connection string")
	pf.StringVar(&flags.dbName, "db", "", "database name")
	pf.StringVar(&flags.collection, "collection", "", "books collection name")
	pf.StringVar(&flags.auditCollection, "audit-collection", "", "record mutations in this collection")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	f := rootCmd.Flags()
	f.IntVar(&flags.page, "page", configs.DefaultPage, "page number for the paginated scan")
	f.IntVar(&flags.pageSize, "page-size", configs.DefaultPageSize, "books per page")
	f.DurationVar(&flags.opTimeout, "op-timeout", 0, "time limit for each operation (0 for none)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cfgErr configError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	return ExitError
}

func runQueries(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	return withClient(cmd.Context(), cfg, logger, func(ctx context.Context, client *mongo.Client) error {
		books := catalog.New(db.GetCollection(client, cfg.DBName, cfg.Collection))

		opts := []runner.Option{
			runner.WithLogger(logger),
			runner.WithPage(cfg.Page, cfg.PageSize),
			runner.WithOperationTimeout(cfg.OperationTimeout),
		}
		if cfg.AuditCollection != "" {
			auditColl := db.GetCollection(client, cfg.DBName, cfg.AuditCollection)
			opts = append(opts, runner.WithAuditor(audit.NewLogger(auditColl, performedBy())))
		}

		return runner.New(books, cmd.OutOrStdout(), opts...).Run(ctx)
	})
}

// Swapped in tests.
var (
	connect    = db.Connect
	disconnect = db.Disconnect
)

// withClient connects, runs fn and always disconnects. Any failure is logged
// here and returned as errReported. A zero ConnectTimeout leaves the connect
// context without a deadline.
func withClient(ctx context.Context, cfg configs.Config, logger *slog.Logger, fn func(context.Context, *mongo.Client) error) error {
	connCtx, cancel := ctx, context.CancelFunc(func() {})
	if cfg.ConnectTimeout > 0 {
		connCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
	}
	client, err := connect(connCtx, cfg.MongoURI, cfg.ConnectTimeout)
	cancel()
	if err != nil {
		logger.Error("could not connect to MongoDB", "error", err)
		return errReported
	}
	logger.Info("Connected to MongoDB", "db", cfg.DBName)

	defer func() {
		if err := disconnect(client); err != nil {
			logger.Error("disconnect failed", "error", err)
			return
		}
		logger.Info("Connection closed")
	}()

	if err := fn(ctx, client); err != nil {
		var opErr *runner.OperationError
		if errors.As(err, &opErr) {
			logger.Error("operation failed", "step", opErr.Step, "error", opErr.Err)
		} else {
			logger.Error("operation failed", "error", err)
		}
		return errReported
	}
	return nil
}

// loadConfig layers flags that were set explicitly over .env and the
// environment.
func loadConfig(cmd *cobra.Command) (configs.Config, error) {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return cfg, configError{err}
	}

	f := cmd.Flags()
	if f.Changed("uri") {
		cfg.MongoURI = flags.uri
	}
	if f.Changed("db") {
		cfg.DBName = flags.dbName
	}
	if f.Changed("collection") {
		cfg.Collection = flags.collection
	}
	if f.Changed("audit-collection") {
		cfg.AuditCollection = flags.auditCollection
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if f.Changed("page") {
		cfg.Page = flags.page
	}
	if f.Changed("page-size") {
		cfg.PageSize = flags.pageSize
	}
	if f.Changed("op-timeout") {
		cfg.OperationTimeout = flags.opTimeout
	}

	if err := cfg.Validate(); err != nil {
		return cfg, configError{err}
	}
	return cfg, nil
}

func performedBy() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "system"
}
