package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"instalabel/internal"
	"instalabel/internal/config"
)

// Instruction is the fixed prompt sent with every extraction call. All
// documents of an entry go into one call so the model can combine partial
// information across screenshots of the same order.
const Instruction = `Combine info from the attached images. Extract JSON with these exact keys: ` +
	`customer_name, phone, address, city, pincode, amount (number), items (string), is_prepaid (boolean). ` +
	`If the name is not found, look for "Receiver" or the top text. Return an empty string for missing fields.`

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, cfg config.Config) (*Client, error) {
	if err := cfg.Require("GEMINI_API_KEY", cfg.GeminiAPIKey); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.GeminiAPIKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{client: client, model: cfg.GeminiModel}, nil
}

func (c *Client) Extract(ctx context.Context, instruction string, docs []internal.Document) (Payload, error) {
	if len(docs) == 0 {
		return Payload{}, errors.New("no documents to extract")
	}

	prompt := instruction
	for _, doc := range docs {
		if strings.TrimSpace(doc.TextHint) != "" {
			prompt += "\n\nText layer of " + doc.Name + ":\n" + doc.TextHint
		}
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, doc := range docs {
		parts = append(parts, genai.NewPartFromBytes(doc.Data, doc.MIME))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("gemini extraction call: %w", err)
	}

	return ParsePayload(resp.Text())
}
