package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/govbilling/billdash/internal/nursery"
)

// ListNurseryEntries loads nursery financial entries, passing array filters through.
func (c *Client) ListNurseryEntries(ctx context.Context, q nursery.ListQuery) ([]*nursery.Entry, error) {
	query := url.Values{}
	for _, name := range q.NurseryNames {
		query.Add("nursery_name", name)
	}
	for _, item := range q.StandardItems {
		query.Add("standard_item", item)
	}
	key, err := c.cache.BuildKey(ctx, "nursery", "entries", query.Encode())
	if err != nil {
		c.logger.Warn("nursery cache key", slog.Any("error", err))
		return c.listNurseryEntries(ctx, query)
	}
	var entries []*nursery.Entry
	err = c.cache.FetchJSON(ctx, key, &entries, func(ctx context.Context) (any, error) {
		return c.listNurseryEntries(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) listNurseryEntries(ctx context.Context, query url.Values) ([]*nursery.Entry, error) {
	const op = "list_nursery_entries"
	body, err := c.do(ctx, call{op: op, method: http.MethodGet, path: c.paths.NurseryPath, query: query})
	if err != nil {
		return nil, err
	}
	dtos, err := decodeList[nurseryEntryDTO](body)
	if err != nil {
		return nil, c.dataError(op, err)
	}
	entries := make([]*nursery.Entry, 0, len(dtos))
	for i, dto := range dtos {
		entry, err := dto.toEntry()
		if err != nil {
			return nil, c.dataError(op, fmt.Errorf("entry %d: %w", i, err))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// CreateNurseryEntry posts a new entry.
func (c *Client) CreateNurseryEntry(ctx context.Context, in nursery.Input) (*nursery.Entry, error) {
	return c.writeNurseryEntry(ctx, "create_nursery_entry", http.MethodPost, c.paths.NurseryPath, in)
}

// UpdateNurseryEntry replaces an existing entry.
func (c *Client) UpdateNurseryEntry(ctx context.Context, id string, in nursery.Input) (*nursery.Entry, error) {
	entry, err := c.writeNurseryEntry(ctx, "update_nursery_entry", http.MethodPut, c.nurseryItemPath(id), in)
	if err != nil {
		return nil, err
	}
	if entry.ID == "" {
		entry.ID = id
	}
	return entry, nil
}

// DeleteNurseryEntry removes an entry.
func (c *Client) DeleteNurseryEntry(ctx context.Context, id string) error {
	if _, err := c.do(ctx, call{op: "delete_nursery_entry", method: http.MethodDelete, path: c.nurseryItemPath(id)}); err != nil {
		return err
	}
	c.bumpAfterWrite(ctx)
	return nil
}

func (c *Client) writeNurseryEntry(ctx context.Context, op, method, path string, in nursery.Input) (*nursery.Entry, error) {
	body, err := c.do(ctx, call{op: op, method: method, path: path, body: in})
	if err != nil {
		return nil, err
	}
	c.bumpAfterWrite(ctx)
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return &nursery.Entry{Input: in}, nil
	}
	var dto nurseryEntryDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, c.dataError(op, err)
	}
	if dto.ID == "" {
		return &nursery.Entry{Input: in}, nil
	}
	return dto.toEntry()
}

func (c *Client) nurseryItemPath(id string) string {
	return c.paths.NurseryPath + "/" + url.PathEscape(id)
}

func (c *Client) bumpAfterWrite(ctx context.Context) {
	if err := c.cache.Bump(ctx); err != nil {
		c.logger.Warn("nursery cache bump", slog.Any("error", err))
	}
}
