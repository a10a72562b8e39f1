package sheets

import (
	"strings"
	"time"

	"github.com/Veraticus/pulse/internal/model"
)

var (
	insightHeader = []any{"Check", "Kind", "Category", "Impact", "Title", "Description", "Recommendations", "Actionable"}
	feedHeader    = []any{"Priority", "Urgent", "Category", "Title", "Message", "Created", "Read", "Action", "ID"}
)

// insightValues renders insights as sheet rows, header first, in generation order.
func insightValues(insights []model.PerformanceInsight) [][]any {
	values := make([][]any, 0, len(insights)+1)
	values = append(values, insightHeader)
	for _, in := range insights {
		values = append(values, []any{
			in.Check,
			string(in.Kind),
			string(in.Category),
			string(in.Impact),
			in.Title,
			in.Description,
			strings.Join(in.Recommendations, "\n"),
			in.Actionable,
		})
	}
	return values
}

// feedValues renders the prioritized feed as sheet rows, header first, in feed order.
func feedValues(feed []model.ScoredNotification, loc *time.Location) [][]any {
	values := make([][]any, 0, len(feed)+1)
	values = append(values, feedHeader)
	for _, n := range feed {
		created := ""
		if n.HasTimestamp() {
			created = n.CreatedAt.In(loc).Format("2006-01-02 15:04")
		}
		action := ""
		if n.HasAction() {
			action = n.Action.URL
		}
		values = append(values, []any{
			n.Priority,
			n.Urgent,
			string(n.Category),
			n.Title,
			n.Message,
			created,
			n.Read,
			action,
			n.ID,
		})
	}
	return values
}
