package summary

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const DefaultPrompt = "\n\nSummarize the text above in two or three plain sentences for a software developer."

// Summarizer через OpenAI chat completion.
// Без ключа выключен и всегда отдает пустую строку
type OpenAISummarizer struct {
	client  *openai.Client
	prompt  string
	enabled bool
	mu      sync.Mutex
}

func NewOpenAISummarizer(apiKey string, prompt string, log logrus.FieldLogger) *OpenAISummarizer {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}

	s := &OpenAISummarizer{
		client:  openai.NewClient(apiKey),
		prompt:  prompt,
		enabled: apiKey != "",
	}

	log.WithField("enabled", s.enabled).Info("openai summarizer configured")

	return s
}

func (s *OpenAISummarizer) Enabled() bool {
	return s.enabled
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	// Запросы к openai идут по одному
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return "", nil
	}

	request := openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("%s%s", text, s.prompt),
			},
		},
		MaxTokens:   256,
		Temperature: 0.7,
		TopP:        1,
	}

	resp, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return trimToSentence(resp.Choices[0].Message.Content), nil
}

// Ответ обрезан по MaxTokens, поэтому последнее незаконченное предложение выкидываем
func trimToSentence(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasSuffix(raw, ".") {
		return raw
	}

	cut := strings.LastIndex(raw, ".")
	if cut < 0 {
		return raw
	}

	return raw[:cut+1]
}
