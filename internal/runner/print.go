package runner

import (
	"fmt"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"plp-bookstore/internal/models"
)

func printHeader(w io.Writer, header string) {
	fmt.Fprintf(w, "\n%s\n", header)
}

func printList[T fmt.Stringer](w io.Writer, header string, items []T) {
	printHeader(w, header)
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func printNames(w io.Writer, names []string) {
	for _, name := range names {
		fmt.Fprintf(w, "  - %s\n", name)
	}
}

// printPlan writes a one line summary followed by the whole explain reply as
// relaxed extended JSON.
func printPlan(w io.Writer, plan *models.QueryPlan) error {
	stages := "unknown"
	if s := plan.Stages(); len(s) > 0 {
		stages = strings.Join(s, " <- ")
	}
	fmt.Fprintf(w, "  namespace=%s plan=%s returned=%d keysExamined=%d docsExamined=%d timeMillis=%d\n",
		plan.Planner.Namespace, stages, plan.Stats.NReturned,
		plan.Stats.TotalKeysExamined, plan.Stats.TotalDocsExamined, plan.Stats.ExecutionTimeMillis)
	if name := plan.IndexName(); name != "" {
		fmt.Fprintf(w, "  index=%s\n", name)
	}

	if len(plan.Raw) == 0 {
		return nil
	}
	out, err := bson.MarshalExtJSONIndent(plan.Raw, false, false, "  ", "  ")
	if err != nil {
		return fmt.Errorf("format explain output: %w", err)
	}
	fmt.Fprintf(w, "  %s\n", out)
	return nil
}
