package service

import (
	"context"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

// invoiceNumberer issues "<series>-YYYYMMDD-NNN" numbers from a locked
// per-day counter. Numbers freed by deletion are never handed out again.
type invoiceNumberer struct {
	series     string
	sequences  repository.SequenceRepository
	lastIssued func(ctx context.Context, prefix string) (string, error)
}

// next must run inside the transaction that persists the invoice.
func (n invoiceNumberer) next(ctx context.Context, day time.Time) (string, error) {
	prefix := model.DailyPrefix(n.series, day)

	value, err := n.sequences.Next(ctx, prefix, func(ctx context.Context) (int, error) {
		last, err := n.lastIssued(ctx, prefix)
		if err != nil || last == "" {
			return 0, err
		}
		suffix, _ := model.ParseInvoiceSuffix(prefix, last)
		return suffix, nil
	})
	if err != nil {
		return "", err
	}
	if value > model.MaxInvoiceSuffix {
		return "", ErrSequenceExhausted
	}
	return model.FormatInvoiceNo(prefix, value), nil
}

// clock yields business-local time
type clock struct {
	now func() time.Time
	loc *time.Location
}

func newClock(now func() time.Time, loc *time.Location) clock {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return clock{now: now, loc: loc}
}

func (c clock) today() time.Time {
	return c.now().In(c.loc)
}

// date returns today's calendar date at UTC midnight, the form stored in date columns.
func (c clock) date() time.Time {
	y, m, d := c.today().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const dateLayout = "2006-01-02"

// parseDate parses an already-validated YYYY-MM-DD string; empty yields nil.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
