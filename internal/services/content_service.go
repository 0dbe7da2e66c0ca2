package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrAssistantNotConfigured is returned when no OpenAI API key is set
var ErrAssistantNotConfigured = errors.New("assistant client not configured")

// ContentService wraps the OpenAI SDK for the parenting assistant and
// blog-draft generation.
type ContentService struct {
	client *openai.Client
	model  openai.ChatModel
}

// NewContentService returns an assistant client; inert when the key is missing
func NewContentService() *ContentService {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return &ContentService{}
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &ContentService{
		client: &client,
		model:  openai.ChatModelGPT4oMini,
	}
}

// Chat answers a parenting/child-care question
func (s *ContentService) Chat(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question cannot be empty")
	}
	if s.client == nil {
		return "", ErrAssistantNotConfigured
	}

	req := openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String("You are a helpful family and child-care assistant. Answer briefly and practically. Recommend seeing a professional for medical concerns."),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(question),
					},
				},
			},
		},
		Temperature:         openai.Float(0.4),
		MaxCompletionTokens: openai.Int(400),
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	resp, err := s.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion received")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BlogDraft generates a blog-post draft on a parenting topic
func (s *ContentService) BlogDraft(ctx context.Context, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("topic cannot be empty")
	}
	if s.client == nil {
		return "", ErrAssistantNotConfigured
	}

	req := openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String("You write warm, well-structured blog posts for a family and child-care community. Use markdown headings."),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(fmt.Sprintf("Write a blog post draft about: %s", topic)),
					},
				},
			},
		},
		Temperature:         openai.Float(0.7),
		MaxCompletionTokens: openai.Int(1200),
	}

	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	resp, err := s.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion received")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
