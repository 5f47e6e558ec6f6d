// Package gemini is a thin client for the Google generative-language REST
// API: one generateContent call per model attempt plus the model-listing
// endpoint used for diagnostics.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"planline/internal/config"
)

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	generation generationConfig
}

// New builds a client from config. The per-attempt timeout lives on the
// HTTP client so every call, including body reads, is bounded.
func New(cfg *config.Config) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(cfg.API.BaseURL, "/"),
		APIKey:     cfg.API.Key,
		HTTPClient: &http.Client{Timeout: cfg.Timeout()},
		generation: generationConfig{
			Temperature:     cfg.Generation.Temperature,
			MaxOutputTokens: cfg.Generation.MaxOutputTokens,
			TopP:            cfg.Generation.TopP,
			TopK:            cfg.Generation.TopK,
		},
	}
	if cfg.API.RatePerSecond > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(cfg.API.RatePerSecond), 1)
	}
	return c
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends prompt to one model and returns the raw text of the first
// candidate. Transport failures, non-2xx statuses and responses without a
// text part are all returned as errors; the caller decides whether to move
// on to another model.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	body := generateRequest{
		Contents:         []generateContent{{Parts: []generatePart{{Text: prompt}}}},
		GenerationConfig: c.generation,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", c.BaseURL, model, url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(errBody)))
	}
	var parsed generateResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// ModelInfo describes one remote model as reported by the listing endpoint.
type ModelInfo struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods,omitempty"`
}

type listModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ListModels enumerates the models the credential can currently reach.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	endpoint := fmt.Sprintf("%s?key=%s", c.BaseURL, url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(errBody)))
	}
	var parsed listModelsResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return parsed.Models, nil
}
