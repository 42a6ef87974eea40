package schemaserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siegeai/schemagen/jsonschema"
)

type Client struct {
	APIKey string
	Server string
	HTTP   *http.Client
}

var (
	ErrUnexpectedResponse = errors.New("unexpected response code")
	ErrMissingServer      = errors.New("missing server url")
)

func NewClient(apikey, server string) (*Client, error) {
	if server == "" {
		return nil, ErrMissingServer
	}
	client := &Client{
		APIKey: apikey,
		Server: strings.TrimSuffix(server, "/"),
		HTTP:   &http.Client{Timeout: 30 * time.Second},
	}
	return client, nil
}

type PublishedSchema struct {
	Name      string              `json:"name"`
	ID        uuid.UUID           `json:"id"`
	Revision  int                 `json:"revision"`
	Samples   int                 `json:"samples"`
	UpdatedAt time.Time           `json:"updatedAt"`
	Schema    jsonschema.Document `json:"schema"`
}

type SchemaUpdate struct {
	PublisherID uuid.UUID         `json:"publisherID"`
	Schemas     []PublishedSchema `json:"schemas"`
}

func (c *Client) Update(ctx context.Context, args SchemaUpdate) error {
	u := c.formatURL("/api/v1/schemas/update")

	bs, err := json.Marshal(&args)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(bs))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedResponse, res.StatusCode)
	}

	return nil
}

func (c *Client) formatURL(path string) string {
	return fmt.Sprintf("%s%s", c.Server, path)
}
