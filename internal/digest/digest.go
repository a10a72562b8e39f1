// Package digest renders the insights and urgent notifications of one owner as an
// RFC 5322 message with plain text and HTML alternatives, ready for any mailer.
package digest

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/prioritize"
)

// Content is everything a digest reports.
type Content struct {
	GeneratedAt time.Time
	OwnerID     string
	Insights    []model.PerformanceInsight
	Urgent      []model.ScoredNotification
	Counts      prioritize.Counts
}

// Options addresses the message.
type Options struct {
	Location *time.Location
	From     string
	To       []string
}

// Subject summarizes the digest in one line.
func Subject(c Content) string {
	return fmt.Sprintf("Pulse digest: %d urgent, %d unread, %d insights",
		len(c.Urgent), c.Counts.Unread, len(c.Insights))
}

// Render writes the digest message to w.
func Render(w io.Writer, c Content, opts Options) error {
	from, err := mail.ParseAddress(opts.From)
	if err != nil {
		return fmt.Errorf("%w: digest sender %q: %w", common.ErrInvalidConfig, opts.From, err)
	}
	if len(opts.To) == 0 {
		return fmt.Errorf("%w: digest has no recipients", common.ErrInvalidConfig)
	}
	to, err := mail.ParseAddressList(strings.Join(opts.To, ", "))
	if err != nil {
		return fmt.Errorf("%w: digest recipients: %w", common.ErrInvalidConfig, err)
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	var h mail.Header
	h.SetDate(c.GeneratedAt)
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", to)
	h.SetSubject(Subject(c))
	h.SetMessageID(uuid.NewString() + "@pulse")

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return fmt.Errorf("failed to create message body: %w", err)
	}

	if err := writePart(tw, "text/plain", func(pw io.Writer) error {
		_, err := io.WriteString(pw, PlainText(c, loc))
		return err
	}); err != nil {
		return err
	}
	if err := writePart(tw, "text/html", func(pw io.Writer) error {
		return htmlTemplate.Execute(pw, newView(c, loc))
	}); err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish message body: %w", err)
	}
	return mw.Close()
}

func writePart(tw *mail.InlineWriter, contentType string, write func(io.Writer) error) error {
	var ph mail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	pw, err := tw.CreatePart(ph)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", contentType, err)
	}
	if err := write(pw); err != nil {
		return fmt.Errorf("failed to write %s part: %w", contentType, err)
	}
	return pw.Close()
}

// PlainText renders the text alternative.
func PlainText(c Content, loc *time.Location) string {
	v := newView(c, loc)
	var b strings.Builder

	fmt.Fprintf(&b, "Pulse digest for %s, %s\n\n", v.Owner, v.Generated)
	fmt.Fprintf(&b, "%d notifications, %d unread, %d urgent\n", c.Counts.Total, c.Counts.Unread, c.Counts.Urgent)

	b.WriteString("\nUrgent\n")
	if len(v.Urgent) == 0 {
		b.WriteString("  Nothing urgent.\n")
	}
	for _, n := range v.Urgent {
		fmt.Fprintf(&b, "  [%3d] %s (%s, %s)\n", n.Priority, n.Title, n.Category, n.Created)
		if n.Message != "" {
			fmt.Fprintf(&b, "        %s\n", n.Message)
		}
	}

	b.WriteString("\nInsights\n")
	if len(v.Insights) == 0 {
		b.WriteString("  No insights.\n")
	}
	for _, in := range v.Insights {
		fmt.Fprintf(&b, "  %s [%s, %s impact]\n", in.Title, in.Kind, in.Impact)
		fmt.Fprintf(&b, "    %s\n", in.Description)
		for _, r := range in.Recommendations {
			fmt.Fprintf(&b, "    - %s\n", r)
		}
	}
	return b.String()
}

type notificationView struct {
	Title    string
	Message  string
	Category string
	Created  string
	Priority int
}

type view struct {
	Owner     string
	Generated string
	Urgent    []notificationView
	Insights  []model.PerformanceInsight
	Counts    prioritize.Counts
}

func newView(c Content, loc *time.Location) view {
	owner := c.OwnerID
	if owner == "" {
		owner = "all owners"
	}
	v := view{
		Owner:     owner,
		Generated: c.GeneratedAt.In(loc).Format("Mon Jan 2 2006 15:04"),
		Insights:  c.Insights,
		Counts:    c.Counts,
	}
	for _, n := range c.Urgent {
		created := "time unknown"
		if n.HasTimestamp() {
			created = n.CreatedAt.In(loc).Format("Jan 2 15:04")
		}
		v.Urgent = append(v.Urgent, notificationView{
			Title:    n.Title,
			Message:  n.Message,
			Category: string(n.Category),
			Created:  created,
			Priority: n.Priority,
		})
	}
	return v
}

var htmlTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html><body>
<h1>Pulse digest for {{.Owner}}</h1>
<p>{{.Generated}}: {{.Counts.Total}} notifications, {{.Counts.Unread}} unread, {{.Counts.Urgent}} urgent</p>
<h2>Urgent</h2>
{{if .Urgent}}<ul>
{{range .Urgent}}<li><strong>{{.Title}}</strong> ({{.Category}}, priority {{.Priority}}, {{.Created}}){{if .Message}}<br>{{.Message}}{{end}}</li>
{{end}}</ul>{{else}}<p>Nothing urgent.</p>{{end}}
<h2>Insights</h2>
{{if .Insights}}{{range .Insights}}<h3>{{.Title}}</h3>
<p>{{.Description}} <em>({{.Kind}}, {{.Impact}} impact)</em></p>
{{if .Recommendations}}<ul>{{range .Recommendations}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{end}}{{else}}<p>No insights.</p>{{end}}
</body></html>
`))
