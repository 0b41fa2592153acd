package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls the OpenAI Chat Completions API.
type OpenAIClient struct {
	model  openai.ChatModel
	client *openai.Client
}

const (
	defaultChatTimeout     = 30 * time.Second
	defaultChatTemperature = 0.2
	// Synthetic feedback needs variety; classification and labeling do not.
	generationTemperature = 0.9
)

// NewOpenAIClient builds a client with defaults against api.openai.com.
func NewOpenAIClient(apiKey string, model openai.ChatModel) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		model:  model,
		client: &cli,
	}, nil
}

func (c *OpenAIClient) GenerateFeedback(ctx context.Context, count int) ([]string, error) {
	content, err := c.complete(ctx,
		"You write realistic user feedback for a software product: bug reports, feature requests, praise, and complaints. Output one feedback item per line, no numbering, no commentary.",
		fmt.Sprintf("Write %d distinct pieces of user feedback.", count),
		generationTemperature,
	)
	if err != nil {
		return nil, err
	}
	texts := extractLines(content)
	if len(texts) == 0 {
		return nil, fmt.Errorf("openai: no feedback lines in response")
	}
	if len(texts) > count {
		texts = texts[:count]
	}
	return texts, nil
}

func (c *OpenAIClient) ClassifySentiment(ctx context.Context, text string) (Sentiment, error) {
	content, err := c.complete(ctx,
		"Classify the sentiment of user feedback. Answer with exactly one word: positive, negative, or neutral.",
		text,
		defaultChatTemperature,
	)
	if err != nil {
		return SentimentNeutral, err
	}
	return ParseSentiment(content), nil
}

func (c *OpenAIClient) LabelCluster(ctx context.Context, texts []string) (string, error) {
	content, err := c.complete(ctx,
		"You name groups of related user feedback. Reply with a short descriptive label of at most five words, nothing else.",
		strings.Join(texts, "\n"),
		defaultChatTemperature,
	)
	if err != nil {
		return "", err
	}
	label := firstLine(content)
	if label == "" {
		return "", fmt.Errorf("openai: empty label in response")
	}
	return label, nil
}

func (c *OpenAIClient) SuggestFeatures(ctx context.Context, texts []string) ([]string, error) {
	content, err := c.complete(ctx,
		"You derive product-feature suggestions from related user feedback. List each suggestion as a bullet point (using - or *), one per line.",
		strings.Join(texts, "\n"),
		defaultChatTemperature,
	)
	if err != nil {
		return nil, err
	}
	return extractLines(content), nil
}

func (c *OpenAIClient) DraftReply(ctx context.Context, text string, sentiment Sentiment) (string, error) {
	content, err := c.complete(ctx,
		fmt.Sprintf("You write short, courteous replies to user feedback on behalf of the product team. The feedback sentiment is %s; acknowledge it appropriately in two or three sentences.", sentiment),
		text,
		defaultChatTemperature,
	)
	if err != nil {
		return "", err
	}
	reply := strings.TrimSpace(content)
	if reply == "" {
		return "", fmt.Errorf("openai: empty reply in response")
	}
	return reply, nil
}

// complete runs one system+user exchange and returns the raw content.
func (c *OpenAIClient) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()
	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(system, user),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
