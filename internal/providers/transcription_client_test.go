package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAudioDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("fake-audio-bytes"))

	tests := []struct {
		name    string
		dataURL string
		wantExt string
	}{
		{"webm", "data:audio/webm;base64," + payload, "webm"},
		{"mp4", "data:audio/mp4;base64," + payload, "mp4"},
		{"wav", "data:audio/wav;base64," + payload, "wav"},
		{"unknown mime defaults to webm", "data:audio/ogg;base64," + payload, "webm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audio, ext, err := DecodeAudioDataURL(tt.dataURL)
			require.NoError(t, err)
			assert.Equal(t, []byte("fake-audio-bytes"), audio)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestDecodeAudioDataURLRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		dataURL string
	}{
		{"no comma", "data:audio/webm;base64"},
		{"empty payload", "data:audio/webm;base64,"},
		{"invalid base64", "data:audio/webm;base64,not*valid*base64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeAudioDataURL(tt.dataURL)

			var invalidErr *InvalidAudioError
			require.Error(t, err)
			assert.True(t, errors.As(err, &invalidErr))
		})
	}
}

func newTestGroqClient(systemKey, baseURL string) *GroqClient {
	return &GroqClient{
		systemKey:  systemKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestTranscribeSendsMultipartRequest(t *testing.T) {
	var gotAuth, gotModel, gotFormat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		gotAuth = r.Header.Get("Authorization")
		gotModel = r.FormValue("model")
		gotFormat = r.FormValue("response_format")
		w.Write([]byte(`{"text": "my startup idea", "duration": 4.2, "language": "en"}`))
	}))
	defer server.Close()

	client := newTestGroqClient("system-key", server.URL)
	result, err := client.Transcribe(context.Background(), []byte("audio"), "audio.webm", "")

	require.NoError(t, err)
	assert.Equal(t, "my startup idea", result.Text)
	assert.Equal(t, 4.2, result.Duration)
	assert.Equal(t, "Bearer system-key", gotAuth)
	assert.Equal(t, "whisper-large-v3", gotModel)
	assert.Equal(t, "verbose_json", gotFormat)
}

func TestTranscribeUserKeyOverridesSystemKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"text": "hello"}`))
	}))
	defer server.Close()

	client := newTestGroqClient("system-key", server.URL)
	_, err := client.Transcribe(context.Background(), []byte("audio"), "audio.webm", "user-key")

	require.NoError(t, err)
	assert.Equal(t, "Bearer user-key", gotAuth)
}

func TestTranscribeWithoutAnyCredential(t *testing.T) {
	client := newTestGroqClient("", "http://unused")

	_, err := client.Transcribe(context.Background(), []byte("audio"), "audio.webm", "")

	var missingErr *MissingCredentialError
	require.Error(t, err)
	assert.True(t, errors.As(err, &missingErr))
}

func TestTranscribeProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	defer server.Close()

	client := newTestGroqClient("bad-key", server.URL)
	_, err := client.Transcribe(context.Background(), []byte("audio"), "audio.webm", "")

	var providerErr *ProviderError
	require.Error(t, err)
	require.True(t, errors.As(err, &providerErr))
	assert.Contains(t, providerErr.Error(), "invalid api key")
}

func TestTranscribeEmptyTextIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text": ""}`))
	}))
	defer server.Close()

	client := newTestGroqClient("system-key", server.URL)
	result, err := client.Transcribe(context.Background(), []byte("audio"), "audio.webm", "")

	require.NoError(t, err)
	assert.Empty(t, result.Text)
}
