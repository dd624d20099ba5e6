package azure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"safechild/internal/errs"

	"github.com/pterm/pterm"
)

// Sentiment values returned by the text analytics service.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
	SentimentMixed    = "mixed"
)

// Analysis is the operator-facing result of analyzing a report message.
type Analysis struct {
	KeyPhrases []string `json:"key_phrases"`
	Sentiment  string   `json:"sentiment"`
}

// Analyzer extracts key phrases and sentiment from report text.
type Analyzer interface {
	Analyze(text string) (Analysis, error)
}

// TextAnalyticsClient calls the Azure Language REST API for key phrase
// extraction and sentiment analysis. Same retry policy as the translator.
type TextAnalyticsClient struct {
	key      string
	endpoint string
	client   *http.Client
	logger   *pterm.Logger

	tries        int
	retryBackoff time.Duration
}

// NewTextAnalyticsClient creates a text analytics adapter.
func NewTextAnalyticsClient(key, endpoint string, logger *pterm.Logger) *TextAnalyticsClient {
	return &TextAnalyticsClient{
		key:          key,
		endpoint:     endpoint,
		client:       &http.Client{Timeout: 15 * time.Second},
		logger:       logger,
		tries:        3,
		retryBackoff: time.Second,
	}
}

type analyticsRequest struct {
	Documents []analyticsDocument `json:"documents"`
}

type analyticsDocument struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

type keyPhraseResponse struct {
	Documents []struct {
		ID         string   `json:"id"`
		KeyPhrases []string `json:"keyPhrases"`
	} `json:"documents"`
}

type sentimentResponse struct {
	Documents []struct {
		ID        string `json:"id"`
		Sentiment string `json:"sentiment"`
	} `json:"documents"`
}

// Analyze extracts key phrases and overall sentiment from text. Both calls
// must succeed for a result; any failure surfaces as a single adapter error
// that callers treat as non-fatal.
func (a *TextAnalyticsClient) Analyze(text string) (Analysis, error) {
	if a.key == "" || a.endpoint == "" {
		return Analysis{}, &errs.ConfigurationError{Missing: "AZURE_TEXT_ANALYTICS_KEY / AZURE_TEXT_ANALYTICS_ENDPOINT"}
	}

	body, err := json.Marshal(analyticsRequest{
		Documents: []analyticsDocument{{ID: "1", Language: "en", Text: text}},
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("encode analytics request: %w", err)
	}

	var lastErr error
	delay := a.retryBackoff
	for attempt := 1; attempt <= a.tries; attempt++ {
		analysis, err := a.analyzeOnce(body)
		if err == nil {
			return analysis, nil
		}
		lastErr = err
		if attempt < a.tries {
			a.logger.Warn("Text analysis attempt failed, retrying",
				a.logger.Args("attempt", attempt, "delay", delay, "error", err))
			time.Sleep(delay)
			delay *= 2
		}
	}

	return Analysis{}, &errs.TransportError{Service: "text analytics", Err: lastErr}
}

func (a *TextAnalyticsClient) analyzeOnce(body []byte) (Analysis, error) {
	var phrases keyPhraseResponse
	if err := a.post("/text/analytics/v3.1/keyPhrases", body, &phrases); err != nil {
		return Analysis{}, err
	}

	var sentiment sentimentResponse
	if err := a.post("/text/analytics/v3.1/sentiment", body, &sentiment); err != nil {
		return Analysis{}, err
	}

	analysis := Analysis{Sentiment: SentimentNeutral}
	if len(phrases.Documents) > 0 {
		analysis.KeyPhrases = phrases.Documents[0].KeyPhrases
	}
	if len(sentiment.Documents) > 0 && sentiment.Documents[0].Sentiment != "" {
		analysis.Sentiment = sentiment.Documents[0].Sentiment
	}
	return analysis, nil
}

func (a *TextAnalyticsClient) post(path string, body []byte, out interface{}) error {
	req, err := http.NewRequest(http.MethodPost, a.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("text analytics API error: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode text analytics response: %w", err)
	}
	return nil
}
