package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", "gemini-1.5-flash", 5*time.Second)
	c.baseURL = srv.URL
	return c
}

func candidateResponse(text string) GenerateResponse {
	return GenerateResponse{
		Candidates: []*Candidate{
			{Content: &Content{Parts: []*Part{{Text: text}}}},
		},
	}
}

func TestGenerateTextReturnsFirstCandidate(t *testing.T) {
	var gotPath string
	var gotKey string
	var gotReq GenerateRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(candidateResponse("hello there"))
	})

	text, err := c.GenerateText(context.Background(), "say hello")
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)

	assert.Equal(t, "/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1)
	assert.Equal(t, "say hello", gotReq.Contents[0].Parts[0].Text)
}

func TestGenerateVisionAttachesInlineData(t *testing.T) {
	var gotReq GenerateRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(candidateResponse("ok"))
	})

	_, err := c.GenerateVision(context.Background(), "what is on screen?", "QkFTRTY0")
	require.NoError(t, err)

	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 2)
	inline := gotReq.Contents[0].Parts[1].InlineData
	require.NotNil(t, inline)
	assert.Equal(t, "image/jpeg", inline.MimeType)
	assert.Equal(t, "QkFTRTY0", inline.Data)
}

func TestGenerateSurfacesHTTPErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	})

	_, err := c.GenerateText(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGenerateRejectsEmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GenerateResponse{})
	})

	_, err := c.GenerateText(context.Background(), "anything")
	assert.Error(t, err)
}

func TestDisabledClientFailsFast(t *testing.T) {
	c := NewClient("", "gemini-1.5-flash", time.Second)

	assert.False(t, c.Enabled())
	_, err := c.GenerateText(context.Background(), "anything")
	assert.Error(t, err)
}
