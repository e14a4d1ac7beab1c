package audio

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ValidURL reports whether a segment address can be fetched outside the
// machine that produced it: inline data URIs, remote http(s) URLs, and
// internal proxy paths qualify. Bare filesystem paths do not.
func ValidURL(url string) bool {
	if strings.HasPrefix(url, "data:") {
		return true
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return true
	}
	if strings.HasPrefix(url, "/api/") {
		return true
	}
	return false
}

// Fetcher retrieves the bytes behind a segment address.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher resolves remote URLs over HTTP, decodes inline data URIs
// locally, and rewrites internal proxy paths against a base URL.
type HTTPFetcher struct {
	httpClient *http.Client
	proxyBase  string
}

// Make sure we conform to Fetcher interface
var _ Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(proxyBase string) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		proxyBase:  strings.TrimSuffix(proxyBase, "/"),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "data:") {
		return decodeDataURI(url)
	}

	if strings.HasPrefix(url, "/api/") {
		if f.proxyBase == "" {
			return nil, errors.New("proxy path given but no proxy base configured")
		}
		url = f.proxyBase + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create audio request")
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "audio download failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("audio download returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, errors.New("malformed data URI")
	}

	meta, payload := uri[:comma], uri[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode data URI")
		}
		return decoded, nil
	}

	return []byte(payload), nil
}
