package email

import (
	"context"
	"errors"
)

// MultiNotifier fans a decision out to several notifiers. Every notifier is
// tried and their errors are joined.
type MultiNotifier []Notifier

// SendApplicationDecision implements Notifier
func (m MultiNotifier) SendApplicationDecision(ctx context.Context, msg DecisionMessage) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.SendApplicationDecision(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
