package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/restolive/backend/models"
)

// ErrQuoteUnavailable means the distance service could not produce a quote.
// Order placement degrades the delivery price to unknown; it never blocks on
// this error.
var ErrQuoteUnavailable = errors.New("delivery: distance quote unavailable")

type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Quote struct {
	DistanceKm float64 `json:"distance_km"`
}

// Quoter is the distance-quoting collaborator.
type Quoter interface {
	Quote(ctx context.Context, origin, dest Coord) (Quote, error)
}

// HTTPQuoter asks an external routing service for the driving distance.
type HTTPQuoter struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPQuoter(baseURL string, timeout time.Duration) *HTTPQuoter {
	return &HTTPQuoter{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (q *HTTPQuoter) Quote(ctx context.Context, origin, dest Coord) (Quote, error) {
	if q.BaseURL == "" {
		return Quote{}, ErrQuoteUnavailable
	}

	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("dest", fmt.Sprintf("%f,%f", dest.Lat, dest.Lng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.BaseURL+"/quote?"+params.Encode(), nil)
	if err != nil {
		return Quote{}, ErrQuoteUnavailable
	}

	resp, err := q.Client.Do(req)
	if err != nil {
		return Quote{}, ErrQuoteUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, ErrQuoteUnavailable
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return Quote{}, ErrQuoteUnavailable
	}
	return quote, nil
}

// PriceForDistance maps a quoted distance onto the branch's fee schedule.
func PriceForDistance(branch *models.Branch, distanceKm float64) float64 {
	return branch.DeliveryBaseFee + branch.DeliveryFeePerKm*distanceKm
}
