package runner_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"plp-bookstore/configs"
	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/constants"
	"plp-bookstore/internal/models"
	"plp-bookstore/internal/runner"
)

const ns = "plp_bookstore.books"

func orwell(price float64) bson.D {
	return bson.D{
		{Key: "title", Value: "1984"},
		{Key: "author", Value: "George Orwell"},
		{Key: "genre", Value: "Dystopian"},
		{Key: "published_year", Value: int32(1949)},
		{Key: "price", Value: price},
		{Key: "in_stock", Value: true},
	}
}

func cursor(docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, docs...)
}

// fullRun returns one mock reply per step, for a collection that holds only
// "1984" once the update and delete have run.
func fullRun() []bson.D {
	return []bson.D{
		cursor(orwell(15)),
		cursor(),
		cursor(orwell(15)),
		mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		cursor(),
		cursor(bson.D{{Key: "title", Value: "1984"}, {Key: "author", Value: "George Orwell"}, {Key: "price", Value: 20.0}}),
		cursor(orwell(20)),
		cursor(orwell(20)),
		cursor(orwell(20)),
		cursor(bson.D{{Key: "_id", Value: "Dystopian"}, {Key: "avgPrice", Value: 20.0}}),
		cursor(bson.D{{Key: "_id", Value: "George Orwell"}, {Key: "count", Value: int32(1)}}),
		cursor(bson.D{{Key: "_id", Value: 1940.0}, {Key: "count", Value: int32(1)}}),
		mtest.CreateSuccessResponse(),
		mtest.CreateSuccessResponse(
			bson.E{Key: "queryPlanner", Value: bson.D{
				{Key: "namespace", Value: ns},
				{Key: "winningPlan", Value: bson.D{
					{Key: "stage", Value: "FETCH"},
					{Key: "inputStage", Value: bson.D{
						{Key: "stage", Value: "IXSCAN"},
						{Key: "indexName", Value: "author_1_published_year_-1"},
					}},
				}},
			}},
			bson.E{Key: "executionStats", Value: bson.D{
				{Key: "nReturned", Value: int32(1)},
				{Key: "totalKeysExamined", Value: int32(1)},
				{Key: "totalDocsExamined", Value: int32(1)},
			}},
		),
	}
}

type auditCall struct {
	entity string
	action string
}

type fakeAuditor struct {
	calls []auditCall
	err   error
}

func (f *fakeAuditor) Log(_ context.Context, entity, action string, _ any) error {
	f.calls = append(f.calls, auditCall{entity, action})
	return f.err
}

func TestRunner_Steps(t *testing.T) {
	r := runner.New(nil, &bytes.Buffer{})

	var names []string
	for _, s := range r.Steps() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"books by genre",
		"books published after",
		"books by author",
		"update price",
		"delete by title",
		"in stock and published after",
		"projected books",
		"sorted by price ascending",
		"sorted by price descending",
		"paginated books",
		"average price by genre",
		"author with most books",
		"books by decade",
		"create indexes",
		"explain books by author",
	}, names)
}

func TestRunner_Run(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("full sequence", func(mt *mtest.T) {
		var out bytes.Buffer
		auditor := &fakeAuditor{}
		r := runner.New(catalog.New(mt.Coll), &out, runner.WithAuditor(auditor))
		mt.AddMockResponses(fullRun()...)

		require.NoError(mt, r.Run(context.Background()))

		text := out.String()
		headers := []string{
			"Books in Dystopian genre:",
			"Books published after 2000:",
			"Books by George Orwell:",
			"Updated price of '1984'",
			"Deleted 'Moby Dick'",
			"Books in stock and published after 2010:",
			"Projected books (title, author, price):",
			"Books sorted by price ascending:",
			"Books sorted by price descending:",
			"Paginated books (page 1, 5 per page):",
			"Average price by genre:",
			"Author with most books:",
			"Books grouped by decade:",
			"Indexes created on title and author+published_year:",
			"Explain output for query on George Orwell:",
		}
		last := -1
		for _, h := range headers {
			idx := strings.Index(text, h)
			require.Greater(mt, idx, last, "header %q missing or out of order", h)
			last = idx
		}

		assert.Contains(mt, text, `"1984" by George Orwell (Dystopian, 1949) $20.00, in stock`)
		assert.Contains(mt, text, "  - Dystopian: $20.00")
		assert.Contains(mt, text, "  - George Orwell: 1 books")
		assert.Contains(mt, text, "  - 1940s: 1 books")
		assert.Contains(mt, text, "  - author_1_published_year_-1")
		assert.Contains(mt, text, "plan=FETCH <- IXSCAN returned=1")
		assert.Contains(mt, text, `"winningPlan"`)

		assert.Equal(mt, []auditCall{
			{models.BookEntity, constants.Update},
			{models.BookEntity, constants.Delete},
			{models.IndexEntity, constants.CreateIndex},
		}, auditor.calls)
	})

	mt.Run("default page comes from configs", func(mt *mtest.T) {
		var out bytes.Buffer
		r := runner.New(catalog.New(mt.Coll), &out)
		mt.AddMockResponses(fullRun()...)

		require.NoError(mt, r.Run(context.Background()))
		assert.Contains(mt, out.String(), fmt.Sprintf("Paginated books (page %d, %d per page):",
			configs.DefaultPage, configs.DefaultPageSize))

		var limit int64 = -1
		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			if v, err := evt.Command.LookupErr("limit"); err == nil {
				limit = v.AsInt64()
			}
		}
		assert.Equal(mt, int64(configs.DefaultPageSize), limit)
	})

	mt.Run("custom page", func(mt *mtest.T) {
		var out bytes.Buffer
		r := runner.New(catalog.New(mt.Coll), &out, runner.WithPage(3, 2))
		mt.AddMockResponses(fullRun()...)

		require.NoError(mt, r.Run(context.Background()))
		assert.Contains(mt, out.String(), "Paginated books (page 3, 2 per page):")

		var skip int64 = -1
		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			if v, err := evt.Command.LookupErr("skip"); err == nil {
				skip = v.AsInt64()
			}
		}
		assert.Equal(mt, int64(4), skip)
	})

	mt.Run("stops at the first failure", func(mt *mtest.T) {
		var out bytes.Buffer
		r := runner.New(catalog.New(mt.Coll), &out)
		replies := fullRun()
		mt.AddMockResponses(append(replies[:3:3], mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    8000,
			Name:    "AtlasError",
			Message: "write blocked",
		}))...)

		err := r.Run(context.Background())
		require.Error(mt, err)

		var opErr *runner.OperationError
		require.True(mt, errors.As(err, &opErr))
		assert.Equal(mt, "update price", opErr.Step)
		assert.ErrorContains(mt, err, "write blocked")

		assert.Contains(mt, out.String(), "Books by George Orwell:")
		assert.NotContains(mt, out.String(), "Updated price")
		assert.NotContains(mt, out.String(), "Deleted")
	})

	mt.Run("invalid page fails its step", func(mt *mtest.T) {
		var out bytes.Buffer
		r := runner.New(catalog.New(mt.Coll), &out, runner.WithPage(0, 5))
		mt.AddMockResponses(fullRun()[:9]...)

		err := r.Run(context.Background())
		assert.ErrorIs(mt, err, catalog.ErrInvalidPage)

		var opErr *runner.OperationError
		require.ErrorAs(mt, err, &opErr)
		assert.Equal(mt, "paginated books", opErr.Step)
		assert.NotContains(mt, out.String(), "Average price by genre:")
	})

	mt.Run("audit failure does not stop the run", func(mt *mtest.T) {
		var out, logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
		auditor := &fakeAuditor{err: errors.New("audit collection unavailable")}
		r := runner.New(catalog.New(mt.Coll), &out, runner.WithAuditor(auditor), runner.WithLogger(logger))
		mt.AddMockResponses(fullRun()...)

		require.NoError(mt, r.Run(context.Background()))
		assert.Len(mt, auditor.calls, 3)
		assert.Contains(mt, logs.String(), "audit log failed")
		assert.Contains(mt, logs.String(), "step=\"explain books by author\"")
	})
}
