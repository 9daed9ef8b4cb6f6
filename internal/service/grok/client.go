package grok

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	xhttp "FinCast/pkg/http"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "https://api.x.ai/v1"
	DefaultModel       = "grok-3-mini-fast"
	DefaultTemperature = 0.3
	DefaultRateDelay   = 100 * time.Millisecond

	sentimentMaxTokens = 1000
	momentumMaxTokens  = 500
)

// Client asks the Grok chat-completions API for social sentiment and momentum.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	http        *xhttp.Client
	limiter     *rate.Limiter
	now         func() time.Time
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithModel(m string) Option {
	return func(c *Client) { c.model = m }
}

func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateDelay spaces calls at least d apart. Zero disables pacing.
func WithRateDelay(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		http:        xhttp.NewClient(xhttp.WithTimeout(60 * time.Second)),
		limiter:     rate.NewLimiter(rate.Every(DefaultRateDelay), 1),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.apiKey != "" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	if !c.Configured() {
		return "", models.ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("grok rate wait: %w", err)
	}
	var resp chatResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + "/chat/completions",
		Headers: xhttp.BearerAuth(c.apiKey),
		Body: chatRequest{
			Model: c.model,
			Messages: []message{
				{Role: "system", Content: system},
				{Role: "user", Content: prompt},
			},
			Temperature: c.temperature,
			MaxTokens:   maxTokens,
		},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("grok chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("grok chat: %w", models.ErrNoData)
	}
	return resp.Choices[0].Message.Content, nil
}

func sentimentPrompt(symbol string) string {
	return fmt.Sprintf(`Analyze the current Twitter/X sentiment for stock ticker %[1]s.
Based on recent tweets (last 24 hours), provide:
1. Overall sentiment score (-1 to 1, where -1 is very bearish, 0 is neutral, 1 is very bullish)
2. Number of bullish tweets
3. Number of bearish tweets
4. Number of neutral tweets
5. Key topics being discussed
6. Influence score (based on reach of tweets)
7. Any notable influencer opinions

Return as JSON format:
{
    "symbol": "%[1]s",
    "sentiment_score": float,
    "bullish_count": int,
    "bearish_count": int,
    "neutral_count": int,
    "key_topics": [list of strings],
    "influence_score": int,
    "notable_opinions": [list of dicts with "author" and "opinion"],
    "timestamp": "ISO timestamp"
}`, symbol)
}

func momentumPrompt(symbol string) string {
	return fmt.Sprintf(`Analyze the social media momentum for %s stock.
Identify:
1. Is there unusual volume of discussion? (high/normal/low)
2. Is sentiment rapidly changing? (accelerating/stable/decelerating)
3. Are there any viral posts or breaking news?
4. What's the momentum direction? (bullish/bearish/neutral)
5. Confidence level in the momentum (0-100)

Return as JSON with these fields: volume_level, sentiment_change, viral_posts, momentum_direction, confidence.`, symbol)
}

// Sentiment asks for the last-24h sentiment. An unparsable answer yields the neutral default.
func (c *Client) Sentiment(ctx context.Context, symbol string) (*models.Sentiment, error) {
	answer, err := c.complete(ctx,
		"You are a financial sentiment analyzer with access to real-time Twitter data.",
		sentimentPrompt(symbol), sentimentMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("sentiment %s: %w", symbol, err)
	}
	s := parseSentiment(symbol, answer)
	s.FetchedAt = c.now()
	return &s, nil
}

// Momentum asks for the social momentum signal. An unparsable answer yields DefaultMomentum.
func (c *Client) Momentum(ctx context.Context, symbol string) (*models.Momentum, error) {
	answer, err := c.complete(ctx,
		"You are a social media momentum analyzer.",
		momentumPrompt(symbol), momentumMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("momentum %s: %w", symbol, err)
	}
	m := parseMomentum(symbol, answer)
	m.Timestamp = c.now()
	return &m, nil
}

func parseSentiment(symbol, answer string) models.Sentiment {
	s := models.Sentiment{Symbol: symbol, Topics: []string{}}
	obj, ok := decodeObject(answer)
	if !ok {
		return s
	}
	s.Timestamp = toString(obj["timestamp"])
	s.Score = toFloat(obj["sentiment_score"])
	s.BullishCount = toInt(obj["bullish_count"])
	s.BearishCount = toInt(obj["bearish_count"])
	s.NeutralCount = toInt(obj["neutral_count"])
	s.InfluenceScore = toInt(obj["influence_score"])
	s.Topics = toStrings(obj["key_topics"])
	return s
}

func parseMomentum(symbol, answer string) models.Momentum {
	m := models.DefaultMomentum(symbol)
	obj, ok := decodeObject(answer)
	if !ok {
		return m
	}
	m.VolumeLevel = lowerOr(obj["volume_level"], m.VolumeLevel)
	m.SentimentChange = lowerOr(obj["sentiment_change"], m.SentimentChange)
	m.Direction = lowerOr(obj["momentum_direction"], m.Direction)
	if v, ok := obj["confidence"]; ok {
		m.Confidence = toInt(v)
	}
	m.ViralPosts = toBool(obj["viral_posts"])
	return m
}

var _ drepo.SocialSignals = (*Client)(nil)
