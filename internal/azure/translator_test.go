package azure

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"safechild/internal/errs"

	"github.com/pterm/pterm"
)

func testLogger() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(pterm.LogLevelError)
}

func TestTranslate_MissingConfigIsConfigurationError(t *testing.T) {
	client := NewTranslatorClient("", "", "", testLogger())

	_, err := client.Translate("hello", AutoDetect, "en")
	var configErr *errs.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
}

func TestTranslate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "test-key" {
			t.Errorf("Expected subscription key header, got %q", got)
		}
		if got := r.URL.Query().Get("to"); got != "en" {
			t.Errorf("Expected to=en, got %q", got)
		}
		if got := r.URL.Query().Get("from"); got != "" {
			t.Errorf("Expected auto-detect to omit the from parameter, got %q", got)
		}
		w.Write([]byte(`[{"translations":[{"text":"help needed","to":"en"}]}]`))
	}))
	defer server.Close()

	client := NewTranslatorClient("test-key", server.URL, "centralindia", testLogger())

	translated, err := client.Translate("sahayata chahiye", AutoDetect, "en")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if translated != "help needed" {
		t.Errorf("Expected translated text, got %q", translated)
	}
}

func TestTranslate_RetriesThenFails(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewTranslatorClient("test-key", server.URL, "", testLogger())
	client.retryBackoff = time.Millisecond

	_, err := client.Translate("hello", AutoDetect, "en")
	var transportErr *errs.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError after exhausted retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestTranslate_MalformedResponseIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewTranslatorClient("test-key", server.URL, "", testLogger())
	client.retryBackoff = time.Millisecond

	_, err := client.Translate("hello", AutoDetect, "en")
	var transportErr *errs.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError for malformed response, got %v", err)
	}
}

func TestAnalyze_MissingConfigIsConfigurationError(t *testing.T) {
	client := NewTextAnalyticsClient("", "", testLogger())

	_, err := client.Analyze("hello")
	var configErr *errs.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
}

func TestAnalyze_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/text/analytics/v3.1/keyPhrases":
			w.Write([]byte(`{"documents":[{"id":"1","keyPhrases":["bus stand","child"]}]}`))
		case "/text/analytics/v3.1/sentiment":
			w.Write([]byte(`{"documents":[{"id":"1","sentiment":"negative"}]}`))
		default:
			t.Errorf("Unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewTextAnalyticsClient("test-key", server.URL, testLogger())

	analysis, err := client.Analyze("child seen alone near the bus stand")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if analysis.Sentiment != SentimentNegative {
		t.Errorf("Expected negative sentiment, got %q", analysis.Sentiment)
	}
	if len(analysis.KeyPhrases) != 2 {
		t.Errorf("Expected 2 key phrases, got %v", analysis.KeyPhrases)
	}
}
