// Package upi builds UPI deep links that mobile payment apps open directly.
package upi

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	Scheme          = "upi://pay"
	DefaultCurrency = "INR"
)

var ErrPayeeNotConfigured = errors.New("UPI ID is not configured")

// Intent describes one payment request.
type Intent struct {
	PayeeHandle     string
	PayeeName       string
	Amount          int64
	Currency        string
	TransactionType string
	ItemID          string
}

// Note is the transaction note shown in the payer's app: {type}_{item} or just {type}.
func (i Intent) Note() string {
	if i.ItemID == "" {
		return i.TransactionType
	}
	return i.TransactionType + "_" + i.ItemID
}

// BuildIntent renders the deep link. It performs no I/O.
func BuildIntent(i Intent) (string, error) {
	handle := strings.TrimSpace(i.PayeeHandle)
	if handle == "" {
		return "", ErrPayeeNotConfigured
	}
	if i.Amount <= 0 {
		return "", fmt.Errorf("invalid amount: %d", i.Amount)
	}
	currency := i.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	params := [][2]string{
		{"pa", handle},
		{"pn", i.PayeeName},
		{"am", strconv.FormatInt(i.Amount, 10)},
		{"cu", currency},
		{"tn", i.Note()},
	}
	var b strings.Builder
	b.WriteString(Scheme)
	sep := byte('?')
	for _, p := range params {
		if p[1] == "" {
			continue
		}
		b.WriteByte(sep)
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(escape(p[1]))
		sep = '&'
	}
	return b.String(), nil
}

// escape query-escapes v but keeps '@' literal and spaces as %20;
// several UPI apps fail to decode "%40" in the payee address.
func escape(v string) string {
	s := url.QueryEscape(v)
	s = strings.ReplaceAll(s, "%40", "@")
	return strings.ReplaceAll(s, "+", "%20")
}
