package catalog

import (
	"context"
	"strconv"

	"github.com/kroma-labs/networker/example/fetch/internal/config"
	"github.com/kroma-labs/networker/httpclient"
)

// Product is the subset of the upstream product document we use.
type Product struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

// Catalog reads products from the upstream catalog API.
type Catalog struct {
	transport httpclient.Transport
}

// New creates a Catalog that dispatches through transport.
func New(transport httpclient.Transport) *Catalog {
	return &Catalog{transport: transport}
}

// Product fetches one product and blocks until it arrives or ctx ends.
func (c *Catalog) Product(ctx context.Context, id int) (Product, error) {
	req, err := httpclient.NewRequestFromPath(
		config.CatalogBaseURL+strconv.Itoa(id),
		httpclient.WithTransport(c.transport),
		httpclient.WithContext(ctx),
		httpclient.WithHeaders(httpclient.NewHeader("Accept", "application/json")),
	)
	if err != nil {
		return Product{}, err
	}

	results := make(chan httpclient.Result[*httpclient.DecodedResponse[Product]], 1)
	task := httpclient.FetchDecoded(req, httpclient.JSONDecoder{}, func(res httpclient.Result[*httpclient.DecodedResponse[Product]]) {
		results <- res
	})

	if err := task.Wait(ctx); err != nil {
		task.Cancel()
		return Product{}, err
	}

	resp, err := (<-results).Get()
	if err != nil {
		return Product{}, err
	}
	return resp.Decoded, nil
}
