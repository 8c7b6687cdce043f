package advice

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-safeher/metrics"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName = "go-safeher/advice"

	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "mistralai/mistral-7b-instruct"

	systemPrompt = "You are a personal safety assistant. Give practical, calm and actionable safety advice " +
		"in under 100 words. Use short bullet points where helpful. If the situation sounds like an " +
		"emergency, tell the user to contact local emergency services immediately."

	unconfiguredText = "I can't provide AI safety advice right now because the advice service is not configured. " +
		"Switch to Emergency mode to find nearby police stations and hospitals, or call your local " +
		"emergency number if you are in danger."
)

type Source string

const (
	SourceRemote       Source = "remote"
	SourceFallback     Source = "fallback"
	SourceUnconfigured Source = "unconfigured"
)

// Answer is always non-empty.
type Answer struct {
	Text   string
	Source Source
}

// ChatCompleter is the part of *openai.Client the advisor needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type RemoteConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	// AppURL and AppTitle are sent as HTTP-Referer and X-Title.
	AppURL   string
	AppTitle string
}

// Remote asks a chat-completion model and falls back to the local table on
// any failure.
type Remote struct {
	client   ChatCompleter
	cfg      RemoteConfig
	fallback *Fallback
	logger   *zap.Logger
}

// NewRemote builds an OpenAI-compatible client when an API key is set.
// Without a key every call returns the unconfigured message.
func NewRemote(cfg RemoteConfig, fallback *Fallback, logger *zap.Logger) *Remote {
	cfg = withDefaults(cfg)
	var client ChatCompleter
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		clientCfg.BaseURL = cfg.BaseURL
		clientCfg.HTTPClient = &http.Client{
			Transport: &headerTransport{
				base:    http.DefaultTransport,
				headers: appHeaders(cfg),
			},
		}
		client = openai.NewClientWithConfig(clientCfg)
	}
	return NewRemoteWithClient(client, cfg, fallback, logger)
}

// NewRemoteWithClient uses the given client; a nil client means unconfigured.
func NewRemoteWithClient(client ChatCompleter, cfg RemoteConfig, fallback *Fallback, logger *zap.Logger) *Remote {
	if fallback == nil {
		fallback = DefaultFallback()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{client: client, cfg: withDefaults(cfg), fallback: fallback, logger: logger}
}

func withDefaults(cfg RemoteConfig) RemoteConfig {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 200
	}
	if cfg.AppTitle == "" {
		cfg.AppTitle = "SafeHer Assistant"
	}
	return cfg
}

// Advise never fails: it returns the model's answer, the fallback text, or
// the unconfigured message.
func (r *Remote) Advise(ctx context.Context, question string) Answer {
	if r.client == nil {
		metrics.AdviceAnswers.WithLabelValues(string(SourceUnconfigured), "").Inc()
		return Answer{Text: unconfiguredText, Source: SourceUnconfigured}
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "advice.Remote.Advise",
		trace.WithAttributes(attribute.String("model", r.cfg.Model)),
	)
	defer span.End()

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
		Temperature: r.cfg.Temperature,
		MaxTokens:   r.cfg.MaxTokens,
	})
	if err != nil {
		reason := classifyError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		r.logger.Warn("advice provider failed, using fallback",
			zap.String("reason", reason),
			zap.Error(err),
		)
		return r.fallbackAnswer(question, reason)
	}

	if len(resp.Choices) == 0 {
		r.logger.Warn("advice provider returned no choices, using fallback")
		return r.fallbackAnswer(question, "empty_response")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		r.logger.Warn("advice provider returned empty content, using fallback")
		return r.fallbackAnswer(question, "empty_response")
	}

	metrics.AdviceAnswers.WithLabelValues(string(SourceRemote), "").Inc()
	return Answer{Text: text, Source: SourceRemote}
}

func (r *Remote) fallbackAnswer(question, reason string) Answer {
	metrics.AdviceAnswers.WithLabelValues(string(SourceFallback), reason).Inc()
	return Answer{Text: r.fallback.Advise(question), Source: SourceFallback}
}

// classifyError labels a provider error for logs and metrics.
func classifyError(err error) string {
	if isQuotaError(err) {
		return "quota"
	}
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	if errors.As(err, &apiErr) || errors.As(err, &reqErr) {
		return "api_error"
	}
	return "transport"
}

// isQuotaError reports a payment or quota failure: HTTP 402, an error code
// of 402, or OpenAI's "insufficient_quota".
func isQuotaError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusPaymentRequired {
			return true
		}
		switch code := apiErr.Code.(type) {
		case string:
			return code == "insufficient_quota" || code == strconv.Itoa(http.StatusPaymentRequired)
		case float64:
			return int(code) == http.StatusPaymentRequired
		case int:
			return code == http.StatusPaymentRequired
		}
		return apiErr.Type == "insufficient_quota"
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusPaymentRequired
	}
	return false
}

func appHeaders(cfg RemoteConfig) map[string]string {
	h := map[string]string{"X-Title": cfg.AppTitle}
	if cfg.AppURL != "" {
		h["HTTP-Referer"] = cfg.AppURL
	}
	return h
}

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
