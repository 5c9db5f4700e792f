package responder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ahmadreza-Avandi/mami-land/internal/config"
	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
)

// Proxy response bodies are small; this guards against a misbehaving upstream.
const maxResponseSize = 1 << 20

// ProxyResponder calls the hosted answer-proxy endpoint. Any transport or
// parse failure degrades to the fixed apology message; the error is returned
// alongside for diagnostics only.
type ProxyResponder struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewProxyResponder(cfg config.ResponderConfig, log zerolog.Logger) *ProxyResponder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ProxyResponder{
		baseURL:    cfg.ProxyBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type proxyResponse struct {
	Answer string `json:"answer"`
}

func (r *ProxyResponder) Reply(ctx context.Context, messages []models.ChatMessage, profile models.UserProfile) (string, error) {
	prompt := BuildPrompt(messages, profile)

	answer, err := r.ask(ctx, prompt)
	if err != nil {
		r.log.Warn().Err(err).Msg("answer proxy call failed")
		return ApologyMessage, err
	}
	return answer, nil
}

func (r *ProxyResponder) ask(ctx context.Context, prompt string) (string, error) {
	reqURL := fmt.Sprintf("%s?text=%s", r.baseURL, url.QueryEscape(prompt))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call proxy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("proxy returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed proxyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	answer := strings.TrimSpace(parsed.Answer)
	if answer == "" {
		return "", fmt.Errorf("proxy returned empty answer")
	}
	return answer, nil
}
