package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/decipher-hub/BizBot-ke/internal/model"
	"github.com/decipher-hub/BizBot-ke/internal/service"
)

// FormatAmount renders money as "Ksh 1,234.50".
func FormatAmount(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "Ksh " + sign + b.String() + "." + frac
}

// RenderOutcome describes a parse outcome for humans.
func RenderOutcome(o model.ParseOutcome) string {
	var lines []string
	add := func(label, value string) {
		lines = append(lines, fmt.Sprintf("%s %s", BoldStyle.Render(fmt.Sprintf("%-17s", label+":")), value))
	}

	status := FormatSuccess("valid")
	if !o.IsValid {
		status = FormatError("invalid")
	}
	add("Status", status)
	add("Tier", string(o.Tier))
	if o.PatternUsed != "" {
		add("Pattern", o.PatternUsed)
	}
	confidence := string(o.Confidence.Level)
	if o.Confidence.Score != nil {
		confidence = fmt.Sprintf("%s (%.2f)", confidence, *o.Confidence.Score)
	}
	add("Confidence", FormatConfidence(o.Confidence.Level, confidence))

	f := o.Fields
	add("Type", string(f.Type))
	if f.Amount != nil {
		add("Amount", FormatAmount(*f.Amount))
	}
	optional := []struct {
		value *string
		label string
	}{
		{f.TransactionID, "Transaction"},
		{f.SenderName, "Sender"},
		{f.SenderPhone, "Sender phone"},
		{f.RecipientName, "Recipient"},
		{f.RecipientPhone, "Recipient phone"},
		{f.BusinessShortCode, "Short code"},
		{f.AccountNumber, "Account"},
	}
	for _, field := range optional {
		if field.value != nil {
			add(field.label, *field.value)
		}
	}
	if f.TransactionDate != nil {
		add("Date", f.TransactionDate.Format("2006-01-02 15:04 MST"))
	}
	if f.OrgAccountBalance != nil {
		add("Balance", FormatAmount(*f.OrgAccountBalance))
	}

	if o.Basic != nil && o.Tier == model.TierBasic {
		if len(o.Basic.PhoneNumbers) > 0 {
			add("Phones seen", strings.Join(o.Basic.PhoneNumbers, ", "))
		}
		if len(o.Basic.Names) > 0 {
			add("Names seen", strings.Join(o.Basic.Names, ", "))
		}
	}

	for _, e := range o.Errors {
		lines = append(lines, FormatWarning(e))
	}

	return strings.Join(lines, "\n")
}

// RenderTable lays out rows under headers in padded columns.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	renderRow := func(cells []string, style lipgloss.Style) string {
		rendered := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			rendered[i] = TableCellStyle.Width(widths[i] + 2).Render(cell)
		}
		return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}

	lines := []string{renderRow(headers, TableHeaderStyle)}
	for _, row := range rows {
		lines = append(lines, renderRow(row, lipgloss.NewStyle()))
	}
	return strings.Join(lines, "\n")
}

// RenderTransactions renders stored records as a table.
func RenderTransactions(txns []model.Transaction) string {
	rows := make([][]string, 0, len(txns))
	for _, txn := range txns {
		party := txn.CounterpartyName()
		if party == "" {
			party = txn.BusinessShortCode
		}
		rows = append(rows, []string{
			txn.TransactionDate.Local().Format("2006-01-02 15:04"),
			txn.MpesaTransactionID,
			string(txn.Type),
			FormatSigned(txn),
			party,
			txn.Category,
			txn.ID,
		})
	}
	return RenderTable([]string{"DATE", "CODE", "TYPE", "AMOUNT", "PARTY", "CATEGORY", "ID"}, rows)
}

// RenderTypeSummary renders per-type totals.
func RenderTypeSummary(totals []service.TypeTotal) string {
	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []string{string(t.Type), fmt.Sprint(t.Count), FormatAmount(t.Total)})
	}
	return RenderTable([]string{"TYPE", "COUNT", "TOTAL"}, rows)
}

// RenderCategorySummary renders per-category totals.
func RenderCategorySummary(totals []service.CategoryTotal) string {
	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []string{t.Category, fmt.Sprint(t.Count), FormatAmount(t.Total)})
	}
	return RenderTable([]string{"CATEGORY", "COUNT", "TOTAL"}, rows)
}
