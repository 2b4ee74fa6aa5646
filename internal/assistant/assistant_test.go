package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/automart/internal/models"
)

type staticInventory struct {
	cars []models.Car
	err  error
}

func (s staticInventory) ListAvailableCars() ([]models.Car, error) {
	return s.cars, s.err
}

var inventory = staticInventory{cars: []models.Car{
	{Brand: "Hyundai", Model: "Creta", Year: 2021, Price: 1250000, Mileage: 18000, Fuel: "Petrol", Location: "Pune", Features: models.Features{"sunroof"}},
	{Brand: "Tata", Model: "Nexon EV", Year: 2023, Price: 1450000, Mileage: 6000, Fuel: "Electric", Location: "Mumbai"},
}}

func geminiServer(t *testing.T, status int, body string, seen *generateRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAsk(t *testing.T) {
	var seen generateRequest
	srv := geminiServer(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"Creta "},{"text":"is available."}]}}]}`, &seen)

	a := New(NewClient("test-key", "gemini-1.5-flash", srv.URL), inventory)
	answer, err := a.Ask(context.Background(), "Any SUV under 13 lakh?")
	require.NoError(t, err)
	assert.Equal(t, "Creta is available.", answer)

	require.Len(t, seen.Contents, 1)
	prompt := seen.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, `"model": "Creta"`)
	assert.Contains(t, prompt, `"model": "Nexon EV"`)
	assert.Contains(t, prompt, "User Question: Any SUV under 13 lakh?")
	assert.True(t, strings.HasSuffix(prompt, "Answer:"))
}

func TestAsk_NotConfigured(t *testing.T) {
	a := New(NewClient("", "gemini-1.5-flash", "http://unused"), inventory)
	_, err := a.Ask(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, Classify(err).Message, "GEMINI_API_KEY")
}

func TestAsk_InventoryError(t *testing.T) {
	a := New(NewClient("test-key", "gemini-1.5-flash", "http://unused"), staticInventory{err: errors.New("db down")})
	_, err := a.Ask(context.Background(), "hi")
	assert.EqualError(t, err, "db down")
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, `{"candidates":[]}`, nil)
	_, err := NewClient("test-key", "gemini-1.5-flash", srv.URL).Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestGenerate_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewClient("SECRET-KEY-123", "gemini-1.5-flash", addr).Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini request")
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"invalid key", 400, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`, "Invalid API key"},
		{"model not found", 404, `{"error":{"code":404,"message":"models/foo is not found","status":"NOT_FOUND"}}`, "Model not found"},
		{"permission denied", 403, `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`, "Permission denied"},
		{"rate limited", 429, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, "Rate limit exceeded"},
		{"other", 500, `upstream exploded`, "Chatbot me kuch problem hai"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := geminiServer(t, tc.status, tc.body, nil)
			_, err := NewClient("test-key", "gemini-1.5-flash", srv.URL).Generate(context.Background(), "hi")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Contains(t, Classify(err).Message, tc.want)
		})
	}
}
