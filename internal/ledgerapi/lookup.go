package ledgerapi

import (
	"context"

	"github.com/theirongolddev/ledgr/internal/edit"
)

// Lookup performs an edit session lookup and wraps the outcome for Resolve.
func (c *Client) Lookup(ctx context.Context, f edit.Fetch) edit.Result {
	r := edit.Result{Fetch: f}
	switch f.Kind {
	case edit.Accounts:
		r.Accounts, r.Err = c.Accounts(ctx)
	case edit.Categories:
		r.Categories, r.Err = c.Categories(ctx, f.Type)
	}
	return r
}
