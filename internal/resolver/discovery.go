package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"poolscout/internal/model"
)

// DiscoveryClient queries the external token-research service used as the
// last resolution fallback. It expects a JSON answer of the form
// {"found": true, "symbol": "...", "address": "0x...", "native_id": "...",
// "decimals": 18}.
type DiscoveryClient struct {
	baseURL string
	client  *http.Client
}

func NewDiscoveryClient(baseURL string, timeout time.Duration) *DiscoveryClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &DiscoveryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type discoveryResponse struct {
	Found    bool   `json:"found"`
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	NativeID string `json:"native_id"`
	Decimals uint8  `json:"decimals"`
}

// Search asks the discovery service for a token on a chain. A 404 or a
// found=false body means "unknown", not an error.
func (c *DiscoveryClient) Search(ctx context.Context, symbol string, chain model.ChainID) (model.TokenRef, bool, error) {
	if c.baseURL == "" {
		return model.TokenRef{}, false, nil
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("chain", string(chain))
	fullURL := fmt.Sprintf("%s/tokens/search?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return model.TokenRef{}, false, fmt.Errorf("build discovery request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return model.TokenRef{}, false, fmt.Errorf("discovery request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.TokenRef{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return model.TokenRef{}, false, fmt.Errorf("discovery status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.TokenRef{}, false, fmt.Errorf("read discovery response: %w", err)
	}

	var payload discoveryResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return model.TokenRef{}, false, fmt.Errorf("parse discovery response: %w", err)
	}
	if !payload.Found || payload.Address == "" {
		return model.TokenRef{}, false, nil
	}

	ref := model.TokenRef{
		Symbol:   strings.ToUpper(payload.Symbol),
		Chain:    chain,
		Address:  strings.ToLower(payload.Address),
		NativeID: payload.NativeID,
		Decimals: payload.Decimals,
		Source:   model.SourceDiscovery,
	}
	if ref.Symbol == "" {
		ref.Symbol = strings.ToUpper(symbol)
	}
	return ref, true, nil
}

// DiscoveryLookup is the resolver strategy delegating to the discovery
// service, writing hits through to the cache.
type DiscoveryLookup struct {
	client *DiscoveryClient
	cache  *FileCache
	logger *zap.Logger
}

func NewDiscoveryLookup(client *DiscoveryClient, cache *FileCache, logger *zap.Logger) *DiscoveryLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscoveryLookup{client: client, cache: cache, logger: logger}
}

func (s *DiscoveryLookup) Name() string { return "discovery" }

func (s *DiscoveryLookup) Resolve(ctx context.Context, symbol string, chain model.ChainID) (model.TokenRef, bool, error) {
	if s.client == nil {
		return model.TokenRef{}, false, nil
	}
	ref, found, err := s.client.Search(ctx, symbol, chain)
	if err != nil || !found {
		return model.TokenRef{}, false, err
	}
	if s.cache != nil {
		if err := s.cache.Put(ref); err != nil {
			s.logger.Warn("cache write failed", zap.String("symbol", ref.Symbol), zap.Error(err))
		}
	}
	return ref, true, nil
}
