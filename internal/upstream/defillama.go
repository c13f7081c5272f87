package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonesrussell/projectintel/internal/httpx"
)

const defillamaBaseURL = "https://api.llama.fi"

// DefiLlamaClient queries the public DeFiLlama API (no key required).
type DefiLlamaClient struct {
	client  *http.Client
	baseURL string
}

// NewDefiLlamaClient creates a client. An empty baseURL selects the public
// endpoint.
func NewDefiLlamaClient(baseURL string) *DefiLlamaClient {
	if baseURL == "" {
		baseURL = defillamaBaseURL
	}
	return &DefiLlamaClient{
		client:  httpx.NewClient(0),
		baseURL: baseURL,
	}
}

// Protocol is one entry of the DeFiLlama protocol index.
type Protocol struct {
	Name string  `json:"name"`
	Slug string  `json:"slug"`
	TVL  float64 `json:"tvl"`
}

// Protocols fetches the full protocol index.
func (c *DefiLlamaClient) Protocols(ctx context.Context) ([]Protocol, error) {
	var protocols []Protocol
	if err := getJSON(ctx, c.client, c.baseURL+"/protocols", nil, nil, &protocols); err != nil {
		return nil, fmt.Errorf("defillama protocols: %w", err)
	}
	return protocols, nil
}

// ProtocolDetail fetches a single protocol by slug, returned as raw JSON
// since the document shape varies per protocol.
func (c *DefiLlamaClient) ProtocolDetail(ctx context.Context, slug string) (json.RawMessage, error) {
	var detail json.RawMessage
	if err := getJSON(ctx, c.client, c.baseURL+"/protocol/"+slug, nil, nil, &detail); err != nil {
		return nil, fmt.Errorf("defillama protocol %s: %w", slug, err)
	}
	return detail, nil
}

// MatchProtocol finds the first protocol whose name or slug contains the
// project name (case-insensitive).
func MatchProtocol(protocols []Protocol, project string) (Protocol, bool) {
	key := strings.ToLower(strings.TrimSpace(project))
	if key == "" {
		return Protocol{}, false
	}
	for _, p := range protocols {
		if strings.Contains(strings.ToLower(p.Name), key) || strings.Contains(strings.ToLower(p.Slug), key) {
			return p, true
		}
	}
	return Protocol{}, false
}
