package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/radassist/radassist/internal/platform/apperr"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// generator is the low-level text generation contract the orchestration
// service runs on. Tests substitute a stub; production uses GeminiClient.
type generator interface {
	Generate(ctx context.Context, req genRequest) (string, error)
}

// genRequest is a single provider invocation: a prompt, an optional system
// instruction, and optional inline image bytes for vision-grounded calls.
type genRequest struct {
	System    string
	Prompt    string
	Image     []byte
	ImageMIME string
}

// Gemini REST wire types.

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GeminiClient calls the Gemini generateContent REST endpoint. One blocking
// HTTP call per invocation; no internal retries.
type GeminiClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetBaseURL overrides the API endpoint. Tests point it at a local server.
func (g *GeminiClient) SetBaseURL(url string) {
	g.baseURL = url
}

func (g *GeminiClient) Generate(ctx context.Context, req genRequest) (string, error) {
	parts := []geminiPart{{Text: req.Prompt}}
	if len(req.Image) > 0 {
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MIMEType: mime,
			Data:     base64.StdEncoding.EncodeToString(req.Image),
		}})
	}

	body := geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", apperr.ErrAnalysisFailed, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", apperr.ErrAnalysisFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: provider unreachable: %v", apperr.ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", apperr.ErrAnalysisFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: provider returned status %d", apperr.ErrAnalysisFailed, resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", apperr.ErrAnalysisFailed, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: provider error %d: %s", apperr.ErrAnalysisFailed, parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: provider returned no candidates", apperr.ErrAnalysisFailed)
	}

	text := ""
	for _, p := range parsed.Candidates[0].Content.Parts {
		text += p.Text
	}
	if text == "" {
		return "", fmt.Errorf("%w: provider returned empty text", apperr.ErrAnalysisFailed)
	}
	return text, nil
}
