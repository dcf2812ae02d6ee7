package judge0

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		APIHost: "judge.test",
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return client
}

func TestSubmitForwardsPayloadAndCredentials(t *testing.T) {
	var captured SubmissionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/submissions", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("base64_encoded"))
		require.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		require.Equal(t, "judge.test", r.Header.Get("X-RapidAPI-Host"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"d85cd024-1548-4165-96c7-7bc88673f194"}`))
	})

	token, err := client.Submit(context.Background(), SubmissionRequest{
		SourceCode: "cHJpbnQoMSsxKQ==",
		LanguageID: 92,
	})
	require.NoError(t, err)
	require.Equal(t, "d85cd024-1548-4165-96c7-7bc88673f194", token)
	require.Equal(t, "cHJpbnQoMSsxKQ==", captured.SourceCode)
	require.Equal(t, 92, captured.LanguageID)
}

func TestSubmitRejectsMissingToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.Submit(context.Background(), SubmissionRequest{SourceCode: "cHJpbnQoMSsxKQ==", LanguageID: 92})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUpstream))
}

func TestResultReturnsDecodedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/submissions/abc123", r.URL.Path)
		_, _ = w.Write([]byte(`{"token":"abc123","stdout":"Mg==","time":"0.012","memory":3456,"status":{"id":3,"description":"Accepted"}}`))
	})

	result, err := client.Result(context.Background(), "abc123")
	require.NoError(t, err)
	require.Equal(t, "Mg==", result.Stdout)
	require.Equal(t, "0.012", result.Time)
	require.Equal(t, 3456.0, result.Memory)
	require.True(t, result.Status.Accepted())
	require.True(t, result.Status.Terminal())
}

func TestLanguagesRelaysMetadata(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/languages", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		_, _ = w.Write([]byte(`[{"id":63,"name":"JavaScript (Node.js 18.15.0)"},{"id":92,"name":"Python (3.11.2)"}]`))
	})

	languages, err := client.Languages(context.Background())
	require.NoError(t, err)
	require.Len(t, languages, 2)
	require.Equal(t, 63, languages[0].ID)
	require.Equal(t, "Python (3.11.2)", languages[1].Name)
}

func TestResultMapsUpstreamFailures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream exploded`))
	})

	_, err := client.Result(context.Background(), "abc123")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUpstream))
}

func TestClientUnreachableHost(t *testing.T) {
	client, err := New(Config{BaseURL: "http://127.0.0.1:1", Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), SubmissionRequest{SourceCode: "cHJpbnQoMSsxKQ==", LanguageID: 92})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnavailable))
}

func TestStatusMapping(t *testing.T) {
	require.False(t, Status{ID: StatusInQueue}.Terminal())
	require.False(t, Status{ID: StatusProcessing}.Terminal())
	require.True(t, Status{ID: StatusAccepted}.Terminal())
	require.True(t, Status{ID: StatusWrongAnswer}.Terminal())
	require.False(t, Status{ID: StatusWrongAnswer}.Accepted())
	require.True(t, Status{ID: StatusAccepted}.Accepted())
}
