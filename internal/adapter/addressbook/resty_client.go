package addressbook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

// Client resolves saved shipping addresses from the member service over HTTP.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond)
	return &Client{http: c}
}

type addressResponse struct {
	Data struct {
		Label      string `json:"label"`
		Recipient  string `json:"recipient"`
		Phone      string `json:"phone"`
		Street     string `json:"street"`
		City       string `json:"city"`
		Province   string `json:"province"`
		PostalCode string `json:"postalCode"`
	} `json:"data"`
}

func (c *Client) Resolve(ctx context.Context, addressID string) (*domain.AddressSnapshot, error) {
	var body addressResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		SetPathParam("id", addressID).
		Get("/v1/addresses/{id}")
	if err != nil {
		return nil, fmt.Errorf("address lookup: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: address %s", usecase.ErrNotFound, addressID)
	default:
		return nil, fmt.Errorf("address lookup: unexpected status %d", resp.StatusCode())
	}
	return &domain.AddressSnapshot{
		Label:      body.Data.Label,
		Recipient:  body.Data.Recipient,
		Phone:      body.Data.Phone,
		Street:     body.Data.Street,
		City:       body.Data.City,
		Province:   body.Data.Province,
		PostalCode: body.Data.PostalCode,
	}, nil
}

var _ usecase.AddressBook = (*Client)(nil)
