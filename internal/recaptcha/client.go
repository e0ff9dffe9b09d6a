package recaptcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/kedorion/careers-api/internal/config"
	"go.uber.org/zap"
)

// Client verifies reCAPTCHA v3 tokens against the siteverify endpoint.
// With no secret configured the client runs in disabled mode and passes
// every submission.
type Client struct {
	httpClient *http.Client
	cfg        *config.RecaptchaConfig
	logger     *zap.Logger
}

// verifyResponse is the subset of the siteverify response we act on
type verifyResponse struct {
	Success bool    `json:"success"`
	Score   float64 `json:"score"`
}

// NewClient creates a new verification client
func NewClient(cfg *config.RecaptchaConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Verify checks a token and reports whether the submission may proceed.
// It trivially succeeds when no secret is configured or no token was
// supplied. Every transport, timeout, or decoding failure counts as a
// rejection (fail-closed), never as an error.
func (c *Client) Verify(ctx context.Context, token string) bool {
	if c.cfg.Secret == "" || token == "" {
		return true
	}

	data := url.Values{}
	data.Set("secret", c.cfg.Secret)
	data.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.VerifyURL, strings.NewReader(data.Encode()))
	if err != nil {
		c.logger.Warn("failed to build verification request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("verification call failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Warn("failed to decode verification response",
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return false
	}

	if !result.Success || result.Score < c.cfg.MinScore {
		c.logger.Debug("verification rejected submission",
			zap.Bool("success", result.Success),
			zap.Float64("score", result.Score),
			zap.Float64("min_score", c.cfg.MinScore),
		)
		return false
	}

	return true
}
