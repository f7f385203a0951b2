package alerts_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresignal/accredwatch/pkg/alerts"
	"github.com/caresignal/accredwatch/pkg/model"
)

func TestWebhookSink_Publish(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := alerts.NewWebhookSink(server.URL, "")
	err := sink.Publish(context.Background(), model.PriorityHigh,
		"High Priority: Healthcare Accreditations Expiring", "body text")
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "accreditation_alert", payload["event"])
	assert.Equal(t, "High", payload["tier"])
	assert.Equal(t, "High Priority: Healthcare Accreditations Expiring", payload["subject"])
	assert.Equal(t, "body text", payload["body"])
	assert.NotEmpty(t, payload["timestamp"])
}

func TestWebhookSink_SignsWithSecret(t *testing.T) {
	var gotSignature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Signature-256")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := alerts.NewWebhookSink(server.URL, "shhh")
	err := sink.Publish(context.Background(), model.PriorityCritical, "subject", "body")
	require.NoError(t, err)

	assert.True(t, len(gotSignature) > len("sha256="))
	assert.Contains(t, gotSignature, "sha256=")
}

func TestWebhookSink_NoSignatureWithoutSecret(t *testing.T) {
	var gotSignature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Signature-256")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := alerts.NewWebhookSink(server.URL, "")
	err := sink.Publish(context.Background(), model.PriorityMedium, "subject", "body")
	require.NoError(t, err)

	assert.Empty(t, gotSignature)
}

func TestWebhookSink_Non2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sink := alerts.NewWebhookSink(server.URL, "")
	err := sink.Publish(context.Background(), model.PriorityCritical, "subject", "body")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhookSink_UnreachableIsError(t *testing.T) {
	sink := alerts.NewWebhookSink("http://127.0.0.1:1", "")
	err := sink.Publish(context.Background(), model.PriorityCritical, "subject", "body")
	assert.Error(t, err)
}
