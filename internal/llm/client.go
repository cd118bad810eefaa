package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrEmptyResponse = errors.New("llm empty response")

// Message es un mensaje de chat en formato OpenAI.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest agrupa los mensajes y los parametros de muestreo de una llamada.
type ChatRequest struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

// LLMClient define la interfaz para generar respuestas con un LLM.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// HTTPClient implementa LLMClient usando la API de OpenAI-compatible (ModelScope/Qwen por defecto).
type HTTPClient struct {
	baseURL         string
	apiKey          string
	model           string
	disableThinking bool
	client          *http.Client
	logger          *zap.Logger
}

// HTTPOption ajusta un HTTPClient al construirlo.
type HTTPOption func(*HTTPClient)

// WithTimeout cambia el timeout del cliente HTTP subyacente.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithThinkingDisabled envia enable_thinking=false; ModelScope lo exige en llamadas no-stream.
func WithThinkingDisabled(disabled bool) HTTPOption {
	return func(c *HTTPClient) {
		c.disableThinking = disabled
	}
}

// WithHTTPClient reemplaza el *http.Client (tests).
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewHTTPClient construye un cliente HTTP apuntando a la API de chat completions.
func NewHTTPClient(baseURL, apiKey, model string, logger *zap.Logger, opts ...HTTPOption) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = "https://api-inference.modelscope.cn/v1"
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.Chat(ctx, ChatRequest{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		Temperature: 0.6,
		MaxTokens:   512,
	})
}

func (c *HTTPClient) Chat(ctx context.Context, in ChatRequest) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    in.Messages,
		MaxTokens:   in.MaxTokens,
		Temperature: in.Temperature,
		Stream:      false,
	}
	if c.disableThinking {
		off := false
		reqBody.EnableThinking = &off
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("llm error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(respBody), 512)),
		)
		return "", fmt.Errorf("llm http error: status=%d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if cr.Error != nil {
		return "", fmt.Errorf("llm api error: %s", cr.Error.Message)
	}

	// Sin choices es error; un content vacio se devuelve tal cual y lo resuelve el parser.
	if len(cr.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("llm chat completed",
		zap.String("model", c.model),
		zap.Int("max_tokens", in.MaxTokens),
		zap.Duration("latency", time.Since(start)),
	)
	return cr.Choices[0].Message.Content, nil
}

type chatRequest struct {
	Model          string    `json:"model"`
	Messages       []Message `json:"messages"`
	MaxTokens      int       `json:"max_tokens,omitempty"`
	Temperature    float64   `json:"temperature"`
	Stream         bool      `json:"stream"`
	EnableThinking *bool     `json:"enable_thinking,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
