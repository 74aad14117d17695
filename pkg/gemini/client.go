package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1/models"

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type Content struct {
	Parts []*Part `json:"parts"`
	Role  string  `json:"role,omitempty"`
}

type GenerateRequest struct {
	Contents []*Content `json:"contents"`
}

type Candidate struct {
	Content *Content `json:"content"`
}

type GenerateResponse struct {
	Candidates []*Candidate `json:"candidates"`
}

// Client talks to the Gemini generateContent endpoint over plain HTTP. An
// empty api key leaves the client disabled; callers are expected to fall
// back locally rather than error out.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// GenerateText runs a text-only prompt and returns the first candidate's
// text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []*Part{{Text: prompt}})
}

// GenerateVision runs a prompt against a base64-encoded JPEG frame.
func (c *Client) GenerateVision(ctx context.Context, prompt, imageBase64 string) (string, error) {
	return c.generate(ctx, []*Part{
		{Text: prompt},
		{InlineData: &InlineData{MimeType: "image/jpeg", Data: imageBase64}},
	})
}

func (c *Client) generate(ctx context.Context, parts []*Part) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("gemini client disabled: no api key")
	}

	payload := GenerateRequest{
		Contents: []*Content{{Parts: parts, Role: "user"}},
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}

	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var generateRes GenerateResponse
	if err := json.Unmarshal(resBody, &generateRes); err != nil {
		return "", err
	}

	if len(generateRes.Candidates) == 0 || generateRes.Candidates[0].Content == nil || len(generateRes.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty candidates in response")
	}

	return generateRes.Candidates[0].Content.Parts[0].Text, nil
}
