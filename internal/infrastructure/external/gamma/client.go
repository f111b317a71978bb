package gamma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agencyos/meeting-scribe/pkg/config"
)

// Presentation is the generated deck reference
type Presentation struct {
	ID  string `json:"generationId"`
	URL string `json:"gammaUrl"`
}

// Client generates presentations from meeting summaries via the Gamma API.
// Generation is best-effort and never blocks a successful mutation.
type Client struct {
	enabled bool
	apiKey  string
	baseURL string
	themeID string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a Gamma client from config
func NewClient(cfg *config.GammaConfig, logger *zap.Logger) *Client {
	return &Client{
		enabled: cfg.Enabled && cfg.APIKey != "",
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		themeID: cfg.ThemeID,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

// Enabled reports whether presentation generation is configured
func (c *Client) Enabled() bool {
	return c.enabled
}

// CreatePresentation generates a deck from the meeting summary text
func (c *Client) CreatePresentation(ctx context.Context, title, summaryText string) (*Presentation, error) {
	if !c.enabled {
		return nil, nil
	}

	reqBody := map[string]interface{}{
		"inputText": fmt.Sprintf("# %s\n\n%s", title, summaryText),
		"themeName": c.themeID,
		"format":    "presentation",
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v0.2/generations", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("gamma returned status %d", resp.StatusCode)
	}

	var p Presentation
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}

	if c.logger != nil {
		c.logger.Info("gamma presentation created", zap.String("url", p.URL))
	}
	return &p, nil
}
