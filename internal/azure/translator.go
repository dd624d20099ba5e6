// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package azure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"safechild/internal/errs"

	"github.com/pterm/pterm"
)

// AutoDetect asks the translator to detect the source language itself.
const AutoDetect = "auto"

// Translator converts report text to a target language for review.
type Translator interface {
	Translate(text, fromLang, toLang string) (string, error)
}

// TranslatorClient calls the Azure Translator REST API (api-version 3.0).
// Retries live here, inside the adapter; callers see one result or one error.
type TranslatorClient struct {
	key      string
	endpoint string
	region   string
	client   *http.Client
	logger   *pterm.Logger

	tries        int
	retryBackoff time.Duration
}

// NewTranslatorClient creates a translator adapter. Credentials are validated
// per call, not at construction, so the service can start without them.
func NewTranslatorClient(key, endpoint, region string, logger *pterm.Logger) *TranslatorClient {
	return &TranslatorClient{
		key:          key,
		endpoint:     endpoint,
		region:       region,
		client:       &http.Client{Timeout: 15 * time.Second},
		logger:       logger,
		tries:        3,
		retryBackoff: time.Second,
	}
}

type translateResponse []struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// Translate converts text from fromLang to toLang. fromLang of "auto" (or
// empty) lets the service detect the source language.
func (t *TranslatorClient) Translate(text, fromLang, toLang string) (string, error) {
	if t.key == "" || t.endpoint == "" {
		return "", &errs.ConfigurationError{Missing: "AZURE_TRANSLATOR_KEY / AZURE_TRANSLATOR_ENDPOINT"}
	}
	if toLang == "" {
		toLang = "en"
	}

	params := url.Values{}
	params.Set("api-version", "3.0")
	params.Set("to", toLang)
	if fromLang != "" && fromLang != AutoDetect {
		params.Set("from", fromLang)
	}
	endpoint := t.endpoint + "/translate?" + params.Encode()

	body, err := json.Marshal([]map[string]string{{"text": text}})
	if err != nil {
		return "", fmt.Errorf("encode translate request: %w", err)
	}

	var lastErr error
	delay := t.retryBackoff
	for attempt := 1; attempt <= t.tries; attempt++ {
		translated, err := t.translateOnce(endpoint, body)
		if err == nil {
			return translated, nil
		}
		lastErr = err
		if attempt < t.tries {
			t.logger.Warn("Translation attempt failed, retrying",
				t.logger.Args("attempt", attempt, "delay", delay, "error", err))
			time.Sleep(delay)
			delay *= 2
		}
	}

	return "", &errs.TransportError{Service: "translator", Err: lastErr}
}

func (t *TranslatorClient) translateOnce(endpoint string, body []byte) (string, error) {
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", t.key)
	if t.region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", t.region)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translator API error: status %d", resp.StatusCode)
	}

	var parsed translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode translator response: %w", err)
	}
	if len(parsed) == 0 || len(parsed[0].Translations) == 0 {
		return "", fmt.Errorf("unexpected translation response format")
	}

	return parsed[0].Translations[0].Text, nil
}
