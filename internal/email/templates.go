package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderNoticeItem is one line of an order notice
type OrderNoticeItem struct {
	Title    string
	Quantity int
	Price    decimal.Decimal
}

// OrderNotice is everything the operator needs to fulfil an order
type OrderNotice struct {
	OrderID      int64
	CustomerName string
	Address      string
	Total        decimal.Decimal
	DeliveryDate time.Time
	Items        []OrderNoticeItem
}

// BuildOrderNoticeBody renders the HTML body of the operator notice.
// Customer supplied text is escaped.
func BuildOrderNoticeBody(n OrderNotice) string {
	var rows strings.Builder
	for _, item := range n.Items {
		subtotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		fmt.Fprintf(&rows,
			`<tr>
				<td style="padding: 8px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			html.EscapeString(item.Title),
			item.Quantity,
			FormatMoney(item.Price),
			FormatMoney(subtotal),
		)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 20px; border-bottom: 2px solid #2e7d32; padding-bottom: 8px;">Order #%d</h1>
	<p><strong>Customer:</strong> %s</p>
	<p><strong>Address:</strong> %s</p>
	<p><strong>Deliver by:</strong> %s</p>
	<table style="width: 100%%; border-collapse: collapse; margin: 16px 0;">
		<thead>
			<tr style="background: #f5f5f5;">
				<th style="padding: 8px; text-align: left;">Product</th>
				<th style="padding: 8px; text-align: center;">Qty</th>
				<th style="padding: 8px; text-align: right;">Price</th>
				<th style="padding: 8px; text-align: right;">Subtotal</th>
			</tr>
		</thead>
		<tbody>
			%s
		</tbody>
	</table>
	<p style="text-align: right; font-size: 18px;"><strong>Total: %s</strong></p>
</body>
</html>`,
		n.OrderID,
		html.EscapeString(n.CustomerName),
		html.EscapeString(n.Address),
		n.DeliveryDate.Format("2006-01-02 15:04 MST"),
		rows.String(),
		FormatMoney(n.Total),
	)
}

// FormatMoney renders an amount with two decimals and space separated thousands
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	var result strings.Builder
	remainder := len(intPart) % 3
	if remainder > 0 {
		result.WriteString(intPart[:remainder])
	}
	for i := remainder; i < len(intPart); i += 3 {
		if result.Len() > 0 {
			result.WriteString(" ")
		}
		result.WriteString(intPart[i : i+3])
	}
	return sign + result.String() + frac
}
