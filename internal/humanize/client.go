// Package humanize turns scraped news content into natural speech-ready
// text through a chat-completion style remote service.
package humanize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// CostPerMillionTokens is the approximate price of the humanization
	// model in USD.
	CostPerMillionTokens = 0.50

	// minShortTextChars is the length below which text is returned
	// as-is, only trimmed. Nothing that short benefits from rewriting.
	minShortTextChars = 50

	// DefaultTargetWords is the requested length of a humanized item.
	DefaultTargetWords = 100

	defaultRequestTimeout = 60 * time.Second
)

// Request describes one humanization call.
type Request struct {
	RawText     string
	Region      string
	RequesterID string
	TargetWords int
	Context     TransitionContext
}

// Result is the humanized text plus its billing footprint.
type Result struct {
	Content    string
	TokensUsed int64
	Cost       float64
}

// Client rewrites raw news text into radio-ready speech.
type Client interface {
	Humanize(ctx context.Context, req Request) (*Result, error)
}

// HTTPClient talks to an OpenAI-compatible chat completions endpoint.
type HTTPClient struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Make sure we conform to Client interface
var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(endpoint, apiKey, model string) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Humanize rewrites req.RawText for spoken delivery. Texts below the
// short-text threshold are returned trimmed without a remote call and
// at zero cost.
func (c *HTTPClient) Humanize(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.RawText) == "" {
		return &Result{}, nil
	}

	if len(req.RawText) < minShortTextChars {
		return &Result{Content: strings.TrimSpace(req.RawText)}, nil
	}

	targetWords := req.TargetWords
	if targetWords <= 0 {
		targetWords = DefaultTargetWords
	}

	cleaned := PrepareContent(req.RawText, DefaultMaxContentChars)
	transition := TransitionPhrase(req.Context)

	systemPrompt := buildSystemPrompt(targetWords)
	userPrompt := buildUserPrompt(cleaned, transition, req.Region, targetWords)

	inputTokens := estimateTokens(systemPrompt) + estimateTokens(userPrompt)

	maxTokens := targetWords * 2
	if maxTokens < 400 {
		maxTokens = 400
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal humanize request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create humanize request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "humanize request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("humanizer returned status %d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, errors.Wrap(err, "failed to decode humanizer response")
	}

	if len(completion.Choices) == 0 {
		return nil, errors.New("humanizer returned no choices")
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return nil, errors.New("humanizer returned empty content")
	}

	// Responses far below target usually mean the model bailed out on
	// the content. Treat it like a failed call so the item is skipped.
	if generated := len(strings.Fields(content)); generated*2 < targetWords {
		zap.S().Named("humanize").Warnf("humanizer generated %d words, target %d", generated, targetWords)
		return nil, errors.Errorf("humanizer generated only %d words", generated)
	}

	totalTokens := inputTokens + estimateTokens(content)

	return &Result{
		Content:    content,
		TokensUsed: totalTokens,
		Cost:       TokenCost(totalTokens),
	}, nil
}

// TokenCost converts a token count into USD.
func TokenCost(tokens int64) float64 {
	return float64(tokens) / 1_000_000 * CostPerMillionTokens
}

// estimateTokens approximates the tokenizer at four characters per
// token.
func estimateTokens(text string) int64 {
	return int64(math.Ceil(float64(len(text)) / 4))
}

func buildSystemPrompt(targetWords int) string {
	return fmt.Sprintf(`Eres un locutor de noticias profesional de radio. Tu trabajo es reformular noticias para que suenen naturales al ser leídas en voz alta.

REGLA CRÍTICA - FIDELIDAD:
- NUNCA inventes datos específicos, cifras, nombres o detalles que no estén en el contenido original
- Mantén la precisión de los hechos reportados

LONGITUD OBJETIVO: Aproximadamente %d palabras.
- Si el contenido original es más largo: resume los puntos más importantes
- Si el contenido original es más corto: amplía con contexto general del tema, sin inventar datos específicos

FORMATO:
1. Usa un tono profesional pero cercano
2. Evita jerga técnica innecesaria
3. NO uses emojis, hashtags, ni caracteres especiales
4. NO menciones fuentes ni autores
5. Elimina timestamps, pipes y metadata
6. Asegúrate que el texto fluya naturalmente para TTS

IMPORTANTE: Solo devuelve el texto reformulado, sin explicaciones adicionales.`, targetWords)
}

func buildUserPrompt(cleaned, transition, region string, targetWords int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reformula esta noticia para radio (objetivo: ~%d palabras):\n\n%q\n\n", targetWords, cleaned)
	if transition != "" {
		fmt.Fprintf(&b, "Comienza con: %q\n", transition)
	}
	fmt.Fprintf(&b, "Región: %s\n\nRecuerda: SOLO usa información del texto original. NO inventes datos.", region)
	return b.String()
}
