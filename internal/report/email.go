package report

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/smritirangarajan/spenderella/internal/mail"
)

var emailTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"money": money,
}).Parse(`<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #1f2937;">
    <h2>Your financial report for {{.Data.Period}}</h2>
    <p>Hi {{.Name}}, here is how your money moved.</p>
    <table cellpadding="6">
      <tr><td>Income</td><td><strong>{{money .Data.Summary.Income}}</strong></td></tr>
      <tr><td>Expenses</td><td><strong>{{money .Data.Summary.Expenses}}</strong></td></tr>
      <tr><td>Balance</td><td><strong>{{money .Data.Summary.Balance}}</strong></td></tr>
      <tr><td>Savings rate</td><td><strong>{{printf "%.1f" .Data.Summary.SavingsRate}}%</strong></td></tr>
    </table>
    {{if .Data.Summary.TopCategories}}<h3>Top spending categories</h3>
    <ul>{{range .Data.Summary.TopCategories}}
      <li>{{.Name}}: {{money .Amount}} ({{printf "%.0f" .Percent}}%)</li>{{end}}
    </ul>{{end}}
    {{if .Data.Insights}}<h3>Insights</h3>
    <ul>{{range .Data.Insights}}
      <li>{{.}}</li>{{end}}
    </ul>{{end}}
  </body>
</html>`))

func money(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}

	return fmt.Sprintf("$%.2f", v)
}

// TextBody renders the plain-text version of a report.
func TextBody(name string, d *Data) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Hi %s,\n\nYour financial report for %s:\n\n", name, d.Period)
	fmt.Fprintf(&sb, "* Income   | %s\n", money(d.Summary.Income))
	fmt.Fprintf(&sb, "* Expenses | %s\n", money(d.Summary.Expenses))
	fmt.Fprintf(&sb, "* Balance  | %s\n", money(d.Summary.Balance))
	fmt.Fprintf(&sb, "* Savings  | %.1f%%\n", d.Summary.SavingsRate)

	if len(d.Summary.TopCategories) > 0 {
		sb.WriteString("\nTop spending categories:\n")

		for _, c := range d.Summary.TopCategories {
			fmt.Fprintf(&sb, "* %s | %s | %.0f%%\n", c.Name, money(c.Amount), c.Percent)
		}
	}

	if len(d.Insights) > 0 {
		sb.WriteString("\nInsights:\n")

		for _, tip := range d.Insights {
			fmt.Fprintf(&sb, "* %s\n", tip)
		}
	}

	return sb.String()
}

// Email builds the message sent for a generated report.
func Email(name, to string, d *Data) mail.Message {
	msg := mail.Message{
		To:      to,
		Subject: "Your financial report for " + d.Period,
		Text:    TextBody(name, d),
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, struct {
		Name string
		Data *Data
	}{Name: name, Data: d}); err != nil {
		slog.Error("failed to render report email", "error", err)
		return msg
	}

	msg.HTML = buf.String()

	return msg
}
