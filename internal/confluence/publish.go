package confluence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Action is what a publish did to a page.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionSkipped   Action = "skipped"
)

// updateFields are echoed from the fetched page on update. The server rejects
// updates that omit any of them or add others.
var updateFields = []string{"id", "space", "title", "version", "parentId"}

// PublishResult describes a completed publish.
type PublishResult struct {
	Action Action
	Page   *Page
}

// Publish creates the page titled title under parentID, or replaces the
// content of the existing page. An existing page whose content already equals
// content is left alone unless Force is set.
func (c *Client) Publish(ctx context.Context, content, space, title, parentID string) (*PublishResult, error) {
	existing, err := c.GetPage(ctx, space, title)
	switch {
	case errors.Is(err, ErrPageNotFound):
		update := map[string]json.RawMessage{
			"space":    jsonString(space),
			"title":    jsonString(title),
			"content":  jsonString(content),
			"parentId": jsonString(parentID),
		}
		page, err := c.StorePage(ctx, update)
		if err != nil {
			return nil, fmt.Errorf("failed to create page %q: %w", title, err)
		}
		slog.Info("Created wiki page", "space", space, "title", title, "id", page.ID)
		return &PublishResult{Action: ActionCreated, Page: page}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to get page %q: %w", title, err)
	}

	if existing.Content == content && !c.Force {
		slog.Debug("Wiki page unchanged", "space", space, "title", title, "id", existing.ID)
		return &PublishResult{Action: ActionUnchanged, Page: existing}, nil
	}

	update := make(map[string]json.RawMessage, len(updateFields)+1)
	for _, field := range updateFields {
		raw := existing.Raw(field)
		if raw == nil {
			raw = json.RawMessage("null")
		}
		update[field] = raw
	}
	update["content"] = jsonString(content)

	page, err := c.StorePage(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update page %q: %w", title, err)
	}
	slog.Info("Updated wiki page", "space", space, "title", title, "id", page.ID, "version", page.Version)
	return &PublishResult{Action: ActionUpdated, Page: page}, nil
}

func jsonString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
