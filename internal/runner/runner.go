// Package runner executes the fixed book catalog sequence: filters, one
// update, one delete, projection, sorting, paging, aggregations, indexes and a
// query plan. Steps run one at a time and the first failure ends the run.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"plp-bookstore/configs"
	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/constants"
	"plp-bookstore/internal/models"
)

// Values the sequence queries and mutates.
const (
	Genre            = "Dystopian"
	PublishedAfter   = 2000
	Author           = "George Orwell"
	RepricedTitle    = "1984"
	NewPrice         = 20.0
	RemovedTitle     = "Moby Dick"
	InStockAfterYear = 2010
)

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Auditor records mutations. It is optional.
type Auditor interface {
	Log(ctx context.Context, entity, action string, data any) error
}

type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

type Runner struct {
	catalog   *catalog.Catalog
	out       io.Writer
	logger    Logger
	auditor   Auditor
	page      int
	pageSize  int
	opTimeout time.Duration
}

type Option func(*Runner)

func WithLogger(logger Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

func WithAuditor(a Auditor) Option {
	return func(r *Runner) { r.auditor = a }
}

func WithPage(page, pageSize int) Option {
	return func(r *Runner) {
		r.page = page
		r.pageSize = pageSize
	}
}

// WithOperationTimeout bounds every step. Zero means no bound.
func WithOperationTimeout(d time.Duration) Option {
	return func(r *Runner) { r.opTimeout = d }
}

func New(c *catalog.Catalog, out io.Writer, opts ...Option) *Runner {
	r := &Runner{
		catalog:  c,
		out:      out,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		page:     configs.DefaultPage,
		pageSize: configs.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every step in order. It stops at the first failure and returns
// it as an *OperationError.
func (r *Runner) Run(ctx context.Context) error {
	for _, step := range r.Steps() {
		if err := r.runStep(ctx, step); err != nil {
			return &OperationError{Step: step.Name, Err: err}
		}
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, step Step) error {
	if r.opTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opTimeout)
		defer cancel()
	}

	start := time.Now()
	err := step.Run(ctx)
	r.logger.Debug("step finished", "step", step.Name, "duration", time.Since(start), "ok", err == nil)
	return err
}

// Steps returns the sequence in execution order.
func (r *Runner) Steps() []Step {
	return []Step{
		{"books by genre", r.booksByGenre},
		{"books published after", r.booksPublishedAfter},
		{"books by author", r.booksByAuthor},
		{"update price", r.updatePrice},
		{"delete by title", r.deleteByTitle},
		{"in stock and published after", r.inStockPublishedAfter},
		{"projected books", r.projectedBooks},
		{"sorted by price ascending", r.sortedByPrice(catalog.Ascending)},
		{"sorted by price descending", r.sortedByPrice(catalog.Descending)},
		{"paginated books", r.paginatedBooks},
		{"average price by genre", r.averagePriceByGenre},
		{"author with most books", r.topAuthor},
		{"books by decade", r.booksByDecade},
		{"create indexes", r.createIndexes},
		{"explain books by author", r.explainBooksByAuthor},
	}
}

func (r *Runner) booksByGenre(ctx context.Context) error {
	books, err := r.catalog.FindByGenre(ctx, Genre)
	if err != nil {
		return err
	}
	printList(r.out, fmt.Sprintf("Books in %s genre:", Genre), books)
	return nil
}

func (r *Runner) booksPublishedAfter(ctx context.Context) error {
	books, err := r.catalog.FindPublishedAfter(ctx, PublishedAfter)
	if err != nil {
		return err
	}
	printList(r.out, fmt.Sprintf("Books published after %d:", PublishedAfter), books)
	return nil
}

func (r *Runner) booksByAuthor(ctx context.Context) error {
	books, err := r.catalog.FindByAuthor(ctx, Author)
	if err != nil {
		return err
	}
	printList(r.out, fmt.Sprintf("Books by %s:", Author), books)
	return nil
}

// updatePrice reports success whether or not a book matched.
func (r *Runner) updatePrice(ctx context.Context) error {
	res, err := r.catalog.UpdatePrice(ctx, RepricedTitle, NewPrice)
	if err != nil {
		return err
	}
	r.logger.Debug("price updated", "title", RepricedTitle, "matched", res.MatchedCount, "modified", res.ModifiedCount)
	r.audit(ctx, models.BookEntity, constants.Update, bson.M{"title": RepricedTitle, "price": NewPrice, "matched": res.MatchedCount})

	printHeader(r.out, fmt.Sprintf("Updated price of '%s'", RepricedTitle))
	return nil
}

func (r *Runner) deleteByTitle(ctx context.Context) error {
	res, err := r.catalog.DeleteByTitle(ctx, RemovedTitle)
	if err != nil {
		return err
	}
	r.logger.Debug("book deleted", "title", RemovedTitle, "deleted", res.DeletedCount)
	r.audit(ctx, models.BookEntity, constants.Delete, bson.M{"title": RemovedTitle, "deleted": res.DeletedCount})

	printHeader(r.out, fmt.Sprintf("Deleted '%s'", RemovedTitle))
	return nil
}

func (r *Runner) inStockPublishedAfter(ctx context.Context) error {
	books, err := r.catalog.FindInStockPublishedAfter(ctx, InStockAfterYear)
	if err != nil {
		return err
	}
	printList(r.out, fmt.Sprintf("Books in stock and published after %d:", InStockAfterYear), books)
	return nil
}

func (r *Runner) projectedBooks(ctx context.Context) error {
	summaries, err := r.catalog.ListSummaries(ctx)
	if err != nil {
		return err
	}
	printList(r.out, "Projected books (title, author, price):", summaries)
	return nil
}

func (r *Runner) sortedByPrice(order catalog.SortOrder) func(context.Context) error {
	direction := "ascending"
	if order == catalog.Descending {
		direction = "descending"
	}
	return func(ctx context.Context) error {
		books, err := r.catalog.ListByPrice(ctx, order)
		if err != nil {
			return err
		}
		printList(r.out, "Books sorted by price "+direction+":", books)
		return nil
	}
}

func (r *Runner) paginatedBooks(ctx context.Context) error {
	books, err := r.catalog.ListPage(ctx, r.page, r.pageSize)
	if err != nil {
		return err
	}
	printList(r.out, fmt.Sprintf("Paginated books (page %d, %d per page):", r.page, r.pageSize), books)
	return nil
}

func (r *Runner) averagePriceByGenre(ctx context.Context) error {
	rows, err := r.catalog.AveragePriceByGenre(ctx)
	if err != nil {
		return err
	}
	printList(r.out, "Average price by genre:", rows)
	return nil
}

func (r *Runner) topAuthor(ctx context.Context) error {
	top, err := r.catalog.TopAuthor(ctx)
	if err != nil {
		return err
	}
	var rows []models.AuthorCount
	if top != nil {
		rows = append(rows, *top)
	}
	printList(r.out, "Author with most books:", rows)
	return nil
}

func (r *Runner) booksByDecade(ctx context.Context) error {
	rows, err := r.catalog.CountByDecade(ctx)
	if err != nil {
		return err
	}
	printList(r.out, "Books grouped by decade:", rows)
	return nil
}

func (r *Runner) createIndexes(ctx context.Context) error {
	names, err := r.catalog.EnsureIndexes(ctx)
	if err != nil {
		return err
	}
	r.audit(ctx, models.IndexEntity, constants.CreateIndex, names)

	printHeader(r.out, "Indexes created on title and author+published_year:")
	printNames(r.out, names)
	return nil
}

func (r *Runner) explainBooksByAuthor(ctx context.Context) error {
	plan, err := r.catalog.ExplainFindByAuthor(ctx, Author)
	if err != nil {
		return err
	}
	printHeader(r.out, fmt.Sprintf("Explain output for query on %s:", Author))
	return printPlan(r.out, plan)
}

// audit failures are logged and never end the run.
func (r *Runner) audit(ctx context.Context, entity, action string, data any) {
	if r.auditor == nil {
		return
	}
	if err := r.auditor.Log(ctx, entity, action, data); err != nil {
		r.logger.Warn("audit log failed", "entity", entity, "action", action, "error", err)
	}
}
