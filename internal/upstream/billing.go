package upstream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/govbilling/billdash/internal/mutation"
	"github.com/govbilling/billdash/internal/records"
)

// FetchBillingItems loads the full billing dataset, through the cache when enabled.
func (c *Client) FetchBillingItems(ctx context.Context) ([]*records.Record, error) {
	key, err := c.cache.BuildKey(ctx, "billing", "items")
	if err != nil {
		c.logger.Warn("billing cache key", slog.Any("error", err))
		return c.fetchBillingItems(ctx)
	}
	var items []*records.Record
	err = c.cache.FetchJSON(ctx, key, &items, func(ctx context.Context) (any, error) {
		return c.fetchBillingItems(ctx)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) fetchBillingItems(ctx context.Context) ([]*records.Record, error) {
	const op = "fetch_billing_items"
	body, err := c.do(ctx, call{op: op, method: http.MethodGet, path: c.paths.ItemsPath})
	if err != nil {
		return nil, err
	}
	dtos, err := decodeList[billingItemDTO](body)
	if err != nil {
		return nil, c.dataError(op, err)
	}
	items := make([]*records.Record, 0, len(dtos))
	for i, dto := range dtos {
		rec, err := dto.toRecord()
		if err != nil {
			return nil, c.dataError(op, fmt.Errorf("item %d: %w", i, err))
		}
		items = append(items, rec)
	}
	return items, nil
}

// SubmitBillingUpdate posts the new consumed totals and invalidates cached lists.
func (c *Client) SubmitBillingUpdate(ctx context.Context, sub mutation.Submission) error {
	_, err := c.do(ctx, call{op: "submit_billing_update", method: http.MethodPost, path: c.paths.UpdatePath, body: sub})
	if err != nil {
		return err
	}
	if err := c.cache.Bump(ctx); err != nil {
		c.logger.Warn("billing cache bump", slog.Any("error", err))
	}
	return nil
}
