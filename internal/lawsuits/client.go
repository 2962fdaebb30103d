package lawsuits

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// datasets is the provider-side filter applied to every lookup: basic
// identity data plus criminal proceedings where the subject is the passive
// party. The client still re-filters locally (see CriminalDefendantSuits).
const datasets = "basic_data,processes.filter(partypolarity = PASSIVE, courttype = CRIMINAL)"

type searchRequest struct {
	Query    string `json:"q"`
	Datasets string `json:"Datasets"`
}

type searchResponse struct {
	Result []struct {
		BasicData struct {
			Name string `json:"Name"`
		} `json:"BasicData"`
		Processes struct {
			Lawsuits []Lawsuit `json:"Lawsuits"`
		} `json:"Processes"`
	} `json:"Result"`
}

type client struct {
	cfg    *Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a provider client implementing the System interface.
// Each Fetch performs exactly one outbound request; retries belong to the
// caller's retry controller, not the client.
func NewClient(cfg *Config, logger *slog.Logger) System {
	return &client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
		logger: logger.With("system", "lawsuits"),
	}
}

func (c *client) Fetch(ctx context.Context, cpf string) (*Subject, error) {
	body, err := json.Marshal(searchRequest{
		Query:    fmt.Sprintf("doc{%s}", cpf),
		Datasets: datasets,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrProvider, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("AccessToken", c.cfg.TokenHash)
	req.Header.Set("TokenId", c.cfg.TokenID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrProvider, err)
	}

	if len(parsed.Result) == 0 {
		return nil, ErrNoData
	}

	subject := &Subject{
		Name:     parsed.Result[0].BasicData.Name,
		Lawsuits: parsed.Result[0].Processes.Lawsuits,
	}

	c.logger.DebugContext(
		ctx, "subject fetched",
		"lawsuit_count", len(subject.Lawsuits),
	)

	return subject, nil
}

// classifyStatus translates non-200 responses into the domain error taxonomy.
func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthRejected, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, detail)
	}
}
