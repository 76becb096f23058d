// Package report generates and formats expense reports: plain text for
// email bodies and API responses, an HTML variant for rich email, and a
// length-bounded short summary for SMS.
package report

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mananladha/expense-tracker/internal/core"
)

// ShortSummaryMaxLength is the character budget for the SMS channel.
const ShortSummaryMaxLength = 160

// Summary is the structured counterpart of the rendered report. The
// delivery layer treats a summary without its date range as invalid, so
// the generator guarantees StartDate and EndDate are always set.
type Summary struct {
	UserID    int64  `json:"userId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	core.AggregationResult

	// Modes carries the user's payment-mode labels for rendering; it is
	// context for formatters, not part of the wire summary.
	Modes []core.PaymentMode `json:"-"`
}

// Bundle pairs the rendered plain-text report with its summary. It is
// produced by one generation run and consumed once; never cached.
type Bundle struct {
	Report  string  `json:"report"`
	Summary Summary `json:"summary"`
}

// RenderText builds the canonical plain-text report. Transactions are
// rendered in the order supplied, which callers provide date-descending.
func RenderText(userName string, txs []core.Transaction, sum Summary) string {
	var b strings.Builder

	b.WriteString("📊 EXPENSE REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "User: %s\n", userName)
	fmt.Fprintf(&b, "Period: %s to %s\n\n", sum.StartDate, sum.EndDate)

	b.WriteString("💰 SUMMARY:\n")
	fmt.Fprintf(&b, "Total Income: +%s\n", sum.TotalCredit.Rupees())
	fmt.Fprintf(&b, "Total Expenses: -%s\n", sum.TotalDebit.Rupees())
	fmt.Fprintf(&b, "Net Balance: %s\n\n", sum.Net.Rupees())

	b.WriteString("💳 ACCOUNT BALANCES:\n")
	for _, acc := range summaryAccounts(sum) {
		fmt.Fprintf(&b, "%s: %s\n", acc.Name, acc.Balance)
	}
	fmt.Fprintf(&b, "Total: %s\n\n", sum.TotalBalance().Rupees())

	fmt.Fprintf(&b, "📝 TRANSACTIONS (%d):\n", sum.TransactionCount)
	b.WriteString(strings.Repeat("-", 50) + "\n")
	for _, tx := range txs {
		sign := "+"
		if tx.Type == core.Debit {
			sign = "-"
		}
		fmt.Fprintf(&b, "%s | %s%s | %s | %s\n",
			tx.Date, sign, tx.Amount.Rupees(), tx.Item, tx.ModeName)
	}

	return b.String()
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px; }
    .container { background-color: white; padding: 30px; border-radius: 10px; max-width: 600px; margin: 0 auto; }
    h1 { color: #4F46E5; }
    .summary { background-color: #EEF2FF; padding: 20px; border-radius: 8px; margin: 20px 0; }
    .positive { color: #10B981; font-weight: bold; }
    .negative { color: #EF4444; font-weight: bold; }
    .accounts { background-color: #F9FAFB; padding: 15px; border-radius: 8px; margin: 15px 0; }
    pre { background-color: #F3F4F6; padding: 15px; border-radius: 8px; overflow-x: auto; }
  </style>
</head>
<body>
  <div class="container">
    <h1>📊 Expense Report</h1>
    <p><strong>Period:</strong> {{.StartDate}} to {{.EndDate}}</p>

    <div class="summary">
      <h2>💰 Summary</h2>
      <p><span class="positive">Income:</span> {{.TotalCredit}}</p>
      <p><span class="negative">Expenses:</span> {{.TotalDebit}}</p>
      <p><strong>Net Balance:</strong> {{.Net}}</p>
    </div>

    <div class="accounts">
      <h2>💳 Account Balances</h2>
{{- range .Accounts}}
      <p><strong>{{.Name}}:</strong> {{.Balance}}</p>
{{- end}}
    </div>

    <h2>📝 Transactions ({{.TransactionCount}})</h2>
    <pre>{{.ReportText}}</pre>
  </div>
</body>
</html>
`))

type htmlAccount struct {
	Name    string
	Balance string
}

type htmlData struct {
	StartDate        string
	EndDate          string
	TotalCredit      string
	TotalDebit       string
	Net              string
	Accounts         []htmlAccount
	TransactionCount int
	ReportText       string
}

// RenderHTML builds the HTML email body. Missing summary fields are
// substituted with "N/A" rather than failing: a report must always
// render something, even from partial data.
func RenderHTML(reportText string, sum Summary) string {
	data := htmlData{
		StartDate:        orNA(sum.StartDate),
		EndDate:          orNA(sum.EndDate),
		TotalCredit:      sum.TotalCredit.Rupees(),
		TotalDebit:       sum.TotalDebit.Rupees(),
		Net:              sum.Net.Rupees(),
		TransactionCount: sum.TransactionCount,
		ReportText:       reportText,
		Accounts:         summaryAccounts(sum),
	}

	var b strings.Builder
	if err := htmlTemplate.Execute(&b, data); err != nil {
		// The template is static and the data plain values; execution
		// cannot realistically fail, but a report must still render.
		return "<html><body><p>Error: report rendering failed</p></body></html>"
	}
	return b.String()
}

// ShortSummary derives the SMS-sized form: period plus whole-rupee
// income, expenses and net. If the normal layout would not fit the
// 160-character budget it falls back to a denser encoding, and as a
// final guard the result is truncated to the budget.
func ShortSummary(sum Summary) string {
	if sum.StartDate == "" || sum.EndDate == "" {
		return "Summary data is missing or invalid."
	}

	text := fmt.Sprintf("Expense (%s to %s):\nInc: +₹%d\nExp: -₹%d\nNet: ₹%d",
		sum.StartDate, sum.EndDate,
		sum.TotalCredit.Rounded(), sum.TotalDebit.Rounded(), sum.Net.Rounded())

	if utf8.RuneCountInString(text) > ShortSummaryMaxLength {
		text = fmt.Sprintf("Sum(%s-%s):I+%d E-%d N%d",
			sum.StartDate, sum.EndDate,
			sum.TotalCredit.Rounded(), sum.TotalDebit.Rounded(), sum.Net.Rounded())
	}
	if utf8.RuneCountInString(text) > ShortSummaryMaxLength {
		runes := []rune(text)
		text = string(runes[:ShortSummaryMaxLength])
	}
	return text
}

// summaryAccounts lists per-mode balances in display order. When the
// summary carries no mode labels (partial data), the raw mode ids from
// the balance map are used instead, sorted for stable output.
func summaryAccounts(sum Summary) []htmlAccount {
	if len(sum.Modes) > 0 {
		accounts := make([]htmlAccount, 0, len(sum.Modes))
		for _, mode := range sum.Modes {
			accounts = append(accounts, htmlAccount{Name: mode.Name, Balance: sum.Accounts[mode.ID].Rupees()})
		}
		return accounts
	}
	ids := make([]string, 0, len(sum.Accounts))
	for id := range sum.Accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	accounts := make([]htmlAccount, 0, len(ids))
	for _, id := range ids {
		accounts = append(accounts, htmlAccount{Name: id, Balance: sum.Accounts[id].Rupees()})
	}
	return accounts
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
