package syncclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/restolive/backend/models"
)

// Snapshotter fetches the latest N orders with their items and history. It is
// how the client heals gaps after a disconnect: the transport does not replay
// events missed while the connection was down.
type Snapshotter interface {
	FetchRecent(ctx context.Context, limit int) ([]models.Order, error)
}

// HTTPSnapshotter reads the snapshot from the backend's recent-orders
// endpoint.
type HTTPSnapshotter struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPSnapshotter(baseURL, token string) *HTTPSnapshotter {
	return &HTTPSnapshotter{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSnapshotter) FetchRecent(ctx context.Context, limit int) ([]models.Order, error) {
	url := fmt.Sprintf("%s/api/orders/recent?limit=%d", s.BaseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot fetch: unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Status  bool           `json:"status"`
		Message string         `json:"message"`
		Data    []models.Order `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}
