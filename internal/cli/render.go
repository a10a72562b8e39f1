package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Veraticus/pulse/internal/engine"
	"github.com/Veraticus/pulse/internal/llm"
	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/prioritize"
)

// table wraps a tabwriter and keeps the first write error.
type table struct {
	tw  *tabwriter.Writer
	err error
}

func newTable(w io.Writer, headers ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = TableHeaderStyle.Render(h)
		rules[i] = strings.Repeat("─", len(h))
	}
	t.row(styled...)
	t.row(rules...)
	return t
}

func (t *table) row(cells ...string) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	if t.err != nil {
		return fmt.Errorf("failed to write table: %w", t.err)
	}
	if err := t.tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table writer: %w", err)
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Age renders a creation time relative to now.
func Age(createdAt, now time.Time) string {
	if createdAt.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(createdAt, now, "ago", "from now")
}

// RenderFeed writes a ranked notification feed.
func RenderFeed(w io.Writer, feed prioritize.Feed, now time.Time) error {
	if len(feed) == 0 {
		_, err := fmt.Fprintln(w, InfoStyle.Render("No notifications."))
		return err
	}

	t := newTable(w, "PRI", "ID", "CATEGORY", "TITLE", "AGE", "STATE")
	for _, n := range feed {
		pri := strconv.Itoa(n.Priority)
		if n.Urgent {
			pri += "!"
		}
		state := "unread"
		if n.Read {
			state = "read"
		}
		t.row(pri, n.ID, string(n.Category), n.Title, Age(n.CreatedAt, now), state)
	}
	return t.flush()
}

// RenderCounts writes feed totals and the per-category breakdown.
func RenderCounts(w io.Writer, c prioritize.Counts) error {
	t := newTable(w, "CATEGORY", "COUNT")
	for _, cat := range model.Categories() {
		if n := c.ByCategory[cat]; n > 0 {
			t.row(string(cat), strconv.Itoa(n))
		}
	}
	if err := t.flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s %d total, %d unread, %d urgent\n", BellIcon, c.Total, c.Unread, c.Urgent)
	return err
}

// RenderRecommendations writes ranked assignee candidates.
func RenderRecommendations(w io.Writer, recs []model.AssignmentRecommendation, loc *time.Location) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, InfoStyle.Render("No candidates."))
		return err
	}
	if loc == nil {
		loc = time.UTC
	}

	t := newTable(w, "RANK", "EMPLOYEE", "FIT", "CONFIDENCE", "WORKLOAD", "DONE BY", "REASONS")
	for i, r := range recs {
		t.row(
			strconv.Itoa(i+1),
			r.EmployeeName,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.Confidence)+"%",
			string(r.WorkloadImpact),
			r.ProjectedCompletion.In(loc).Format("Jan 2 15:04"),
			strings.Join(r.Reasons, "; "),
		)
	}
	return t.flush()
}

// RenderRisks writes task risk assessments, riskiest first as given.
func RenderRisks(w io.Writer, assessments []engine.TaskAssessment) error {
	if len(assessments) == 0 {
		_, err := fmt.Fprintln(w, InfoStyle.Render("No open tasks."))
		return err
	}

	t := newTable(w, "TASK", "TITLE", "ASSIGNEE", "SCORE", "RISK", "FACTORS")
	for _, a := range assessments {
		assignee := a.Task.AssigneeID
		if assignee == "" {
			assignee = "-"
		}
		t.row(
			a.Task.ID,
			a.Task.Title,
			assignee,
			strconv.Itoa(a.Risk.Score),
			StyleRisk(a.Risk.Level),
			strings.Join(a.Risk.Factors, "; "),
		)
	}
	return t.flush()
}

// RenderRiskDetail writes one assessment with its mitigations.
func RenderRiskDetail(w io.Writer, a engine.TaskAssessment) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d (probability %d%%)\n", a.Risk.Score, a.Risk.Probability)
	fmt.Fprintf(&b, "Risk:  %s\n", StyleRisk(a.Risk.Level))
	if len(a.Risk.Factors) > 0 {
		b.WriteString("\nFactors:\n")
		for _, f := range a.Risk.Factors {
			fmt.Fprintf(&b, "  • %s\n", f)
		}
	}
	if len(a.Risk.Mitigations) > 0 {
		b.WriteString("\nMitigations:\n")
		for _, m := range a.Risk.Mitigations {
			fmt.Fprintf(&b, "  • %s\n", m)
		}
	}

	title := a.Task.Title
	if title == "" {
		title = a.Task.ID
	}
	_, err := fmt.Fprintln(w, RenderBox(title, strings.TrimRight(b.String(), "\n")))
	return err
}

// RenderHealth writes churn risk per employee.
func RenderHealth(w io.Writer, risks []model.ChurnRisk) error {
	if len(risks) == 0 {
		_, err := fmt.Fprintln(w, InfoStyle.Render("No employees."))
		return err
	}

	t := newTable(w, "EMPLOYEE", "HEALTH", "RISK", "FACTORS")
	for _, r := range risks {
		t.row(r.EmployeeName, fmt.Sprintf("%.1f", r.Composite), StyleRisk(r.Level), strings.Join(r.Factors, "; "))
	}
	return t.flush()
}

// RenderInsights writes each insight as a boxed card.
func RenderInsights(w io.Writer, insights []model.PerformanceInsight) error {
	if len(insights) == 0 {
		_, err := fmt.Fprintln(w, SuccessStyle.Render(SuccessIcon+" No insights. The team looks healthy."))
		return err
	}

	for _, in := range insights {
		var b strings.Builder
		fmt.Fprintf(&b, "%s · %s impact · %s\n", StyleInsightKind(in.Kind), in.Impact, in.Category)
		b.WriteString(in.Description)
		for _, r := range in.Recommendations {
			fmt.Fprintf(&b, "\n  → %s", r)
		}
		if _, err := fmt.Fprintln(w, RenderBox(in.Title, b.String())); err != nil {
			return err
		}
	}
	return nil
}

// RenderForecast writes a metric projection.
func RenderForecast(w io.Writer, f engine.MetricForecast) error {
	fc := f.Forecast
	var b strings.Builder
	fmt.Fprintf(&b, "Points:      %d\n", len(fc.Actual))
	fmt.Fprintf(&b, "Trend:       %s (slope %.3f)\n", fc.Trend, fc.Slope)
	fmt.Fprintf(&b, "Confidence:  %d%%\n", fc.Confidence)
	fmt.Fprintf(&b, "Growth:      %.1f%%\n", f.GrowthRate)
	fmt.Fprintf(&b, "Next 30d:    %.2f\n", fc.Next30Days)
	fmt.Fprintf(&b, "Next 90d:    %.2f\n", fc.Next90Days)
	fmt.Fprintf(&b, "Next %dd:%s%.2f", fc.HorizonDays, strings.Repeat(" ", max(1, 8-len(strconv.Itoa(fc.HorizonDays)))), fc.Horizon)
	if len(f.Anomalies) > 0 {
		idx := make([]string, len(f.Anomalies))
		for i, a := range f.Anomalies {
			idx[i] = strconv.Itoa(a)
		}
		fmt.Fprintf(&b, "\nAnomalies:   %s", strings.Join(idx, ", "))
	}

	_, err := fmt.Fprintln(w, RenderBox(ChartIcon+" "+f.Metric, b.String()))
	return err
}

// RenderAnalysis writes an advisor's answer.
func RenderAnalysis(w io.Writer, resp llm.Response) error {
	footer := SubtleStyle.Render(fmt.Sprintf("%s · confidence %.0f%%", resp.Provider, resp.Confidence*100))
	_, err := fmt.Fprintln(w, RenderBox(RobotIcon+" Analysis", strings.TrimSpace(resp.Content)+"\n\n"+footer))
	return err
}
