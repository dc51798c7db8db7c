package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"commprop_intel/models"
)

const (
	defaultModel     = "gpt-4o-mini"
	extractionTokens = 4000
)

// ProviderItem is one element of the provider's JSON-array response.
// ListingIndex ties it back to its input block; fields the model tends to
// return loosely typed stay interface{} until normalization.
type ProviderItem struct {
	ListingIndex      int         `json:"listing_index"`
	PropertyName      *string     `json:"property_name"`
	Address           *string     `json:"address"`
	PropertyType      *string     `json:"property_type"`
	PropertySubtype   *string     `json:"property_subtype"`
	TransactionType   *string     `json:"transaction_type"`
	Price             interface{} `json:"price"`
	PriceType         *string     `json:"price_type"`
	GfaSqft           interface{} `json:"gfa_sqft"`
	LeaseType         *string     `json:"lease_type"`
	LeaseBalanceYears interface{} `json:"lease_balance_years"`
	FloorLevel        *string     `json:"floor_level"`
	Features          []string    `json:"features"`
	ContactName       *string     `json:"contact_name"`
	ContactPhone      interface{} `json:"contact_phone"`
	IsOwner           interface{} `json:"is_owner"`
	IsAgent           interface{} `json:"is_agent"`
	AgencyName        *string     `json:"agency_name"`
	CobrokeAllowed    *bool       `json:"cobroke_allowed"`
}

// Client is the generative-provider surface the extractor consumes.
type Client interface {
	ExtractBatch(ctx context.Context, blocks []models.RawListingBlock) ([]ProviderItem, error)
}

// OpenAIClient implements Client against the OpenAI chat completions API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAIClient(apiKey, model string, httpClient *http.Client) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("extraction provider API key not set")
	}
	if model == "" {
		model = defaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: 0.1,
		maxTokens:   extractionTokens,
	}, nil
}

type promptListing struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// ExtractBatch sends every block in one request and parses the strict
// JSON-array response. Any transport or parse problem comes back as an
// error for the extractor to branch on.
func (c *OpenAIClient) ExtractBatch(ctx context.Context, blocks []models.RawListingBlock) ([]ProviderItem, error) {
	prompt, err := buildPrompt(blocks)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()[:8]
	log.Printf("Sending %d listings to %s (request %s)", len(blocks), c.model, requestID)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion (request %s): %w", requestID, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices (request %s)", requestID)
	}

	body := cleanResponseText(resp.Choices[0].Message.Content)
	var items []ProviderItem
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, fmt.Errorf("parse provider response (request %s): %w", requestID, err)
	}
	return items, nil
}

func buildPrompt(blocks []models.RawListingBlock) (string, error) {
	payload := make([]promptListing, len(blocks))
	for i, b := range blocks {
		payload[i] = promptListing{Index: i, Text: b.RawText, Category: b.Category}
	}
	listingsJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode listings payload: %w", err)
	}
	return strings.Replace(batchPromptTemplate, "{listings_json}", string(listingsJSON), 1), nil
}

// cleanResponseText strips the markdown fences models wrap JSON in.
func cleanResponseText(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(strings.TrimSpace(response), "```")
	return strings.TrimSpace(response)
}
