package brain

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// geminiProvider implements Provider using the Google Gemini API.
type geminiProvider struct {
	client    *genai.Client
	model     string
	maxTokens int32
	tools     []*genai.Tool
}

func newGeminiProvider(ctx context.Context, apiKey, model string, maxTokens int64, tools []Tool) (*geminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	p := &geminiProvider{
		client:    client,
		model:     model,
		maxTokens: int32(maxTokens),
	}
	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(tools))
		for i, t := range tools {
			decls[i] = geminiDecl(t)
		}
		p.tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return p, nil
}

func geminiDecl(t Tool) *genai.FunctionDeclaration {
	props := make(map[string]*genai.Schema, len(t.Params))
	for _, p := range t.Params {
		props[p.Name] = &genai.Schema{
			Type:        genai.TypeString,
			Description: p.Description,
			Enum:        p.Enum,
		}
	}
	return &genai.FunctionDeclaration{
		Name:        t.Name,
		Description: t.Description,
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: props,
			Required:   t.required(),
		},
	}
}

func (g *geminiProvider) Send(ctx context.Context, systemPrompt string, history []Message) (*Response, error) {
	contents, err := geminiContents(history)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
		MaxOutputTokens:   g.maxTokens,
		Tools:             g.tools,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	out := &Response{Text: resp.Text()}
	for _, fc := range resp.FunctionCalls() {
		raw, err := json.Marshal(fc.Args)
		if err != nil {
			return nil, fmt.Errorf("gemini: function args: %w", err)
		}
		id := fc.ID
		if id == "" {
			id = fc.Name
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{ID: id, Name: fc.Name, Input: raw})
	}
	out.Done = len(out.ToolCalls) == 0
	return out, nil
}

func geminiContents(history []Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}

		var parts []*genai.Part
		if m.Text != "" {
			parts = append(parts, genai.NewPartFromText(m.Text))
		}
		for _, tc := range m.ToolCalls {
			var args map[string]any
			if err := json.Unmarshal(tc.Input, &args); err != nil {
				return nil, fmt.Errorf("gemini: replaying %s call: %w", tc.Name, err)
			}
			parts = append(parts, genai.NewPartFromFunctionCall(tc.Name, args))
		}
		for _, tr := range m.ToolResults {
			result := map[string]any{"output": tr.Content}
			if tr.IsError {
				result["error"] = true
			}
			parts = append(parts, genai.NewPartFromFunctionResponse(tr.Name, result))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.Role(role)))
	}
	return contents, nil
}
