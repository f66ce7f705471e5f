// Package seed loads catalog and review fixtures from a file or URL.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"bistro/internal/logger"
	"bistro/internal/model"
)

// MenuRecord is one entry of a menu fixture.
type MenuRecord struct {
	ID       string      `json:"_id"`
	Name     string      `json:"name"`
	Recipe   string      `json:"recipe"`
	Image    string      `json:"image"`
	Category string      `json:"category"`
	Price    model.Money `json:"price"`
}

// ReviewRecord is one entry of a review fixture.
type ReviewRecord struct {
	ID      string  `json:"_id"`
	Name    string  `json:"name"`
	Details string  `json:"details"`
	Rating  float64 `json:"rating"`
}

// Fetch reads source, which is either an http(s) URL or a local path.
func Fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// MenuItems decodes a menu fixture. Entries with a malformed id or a
// negative price are skipped and counted.
func MenuItems(data []byte) ([]model.MenuItem, int, error) {
	var records []MenuRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, 0, fmt.Errorf("parse menu: %w", err)
	}

	items := make([]model.MenuItem, 0, len(records))
	skipped := 0
	for _, r := range records {
		item := model.MenuItem{
			Name:     r.Name,
			Recipe:   r.Recipe,
			Image:    r.Image,
			Category: r.Category,
			Price:    r.Price,
		}
		if r.ID != "" {
			id, err := model.ParseID(r.ID)
			if err != nil {
				logger.L.Warn("skipping menu item with invalid id", "id", r.ID)
				skipped++
				continue
			}
			item.ID = id
		}
		if r.Price.IsNegative() {
			logger.L.Warn("skipping menu item with negative price", "name", r.Name)
			skipped++
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

// Reviews decodes a review fixture, skipping entries with a malformed id.
func Reviews(data []byte) ([]model.Review, int, error) {
	var records []ReviewRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, 0, fmt.Errorf("parse reviews: %w", err)
	}

	reviews := make([]model.Review, 0, len(records))
	skipped := 0
	for _, r := range records {
		review := model.Review{Name: r.Name, Details: r.Details, Rating: r.Rating}
		if r.ID != "" {
			id, err := model.ParseID(r.ID)
			if err != nil {
				logger.L.Warn("skipping review with invalid id", "id", r.ID)
				skipped++
				continue
			}
			review.ID = id
		}
		reviews = append(reviews, review)
	}
	return reviews, skipped, nil
}
