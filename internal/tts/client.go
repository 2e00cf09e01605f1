package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Prefixul maxim sintetizat; audio lung inseamna latenta mare la redare.
const maxSpeechRunes = 500

// Client sintetizeaza vorbire prin endpoint-ul de traducere, acelasi pe care
// il foloseste si biblioteca gTTS. Intoarce bytes MP3.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://translate.google.com"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Synthesize converteste un prefix al textului in audio pentru limba data.
// Asteriscurile markdown (bold, buleti) se scot inainte de trunchiere, ca sa
// nu fie citite cu voce tare.
func (c *Client) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	text = Prefix(strings.ReplaceAll(text, "*", ""), maxSpeechRunes)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("tts empty text")
	}
	if lang == "" {
		lang = "ro"
	}

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", lang)
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/translate_tts?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("tts http error: status=%d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts empty response")
	}
	return audio, nil
}

// Prefix taie textul la n rune, fara sa rupa o runa in doua.
func Prefix(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
