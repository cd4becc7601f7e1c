package notifier

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pfrederiksen/changelog-relay/internal/changelog"
)

// DryRunNotifier prints what would be posted without actually posting
type DryRunNotifier struct {
	out   io.Writer
	count int
}

// NewDryRunNotifier creates a new dry-run notifier writing to out (stdout if nil)
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out}
}

// Notify prints the message that would be posted
func (n *DryRunNotifier) Notify(_ context.Context, u *changelog.Update) error {
	n.count++
	fmt.Fprintf(n.out, "--- Message %d ---\n", n.count)
	fmt.Fprintln(n.out, changelog.FormatMessage(u))
	return nil
}
