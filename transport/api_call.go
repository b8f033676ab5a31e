package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-accounts/core"
)

const defaultAPICallScheme = "https"

// APICall performs one provider API request over a transport adapter and
// decodes JSON bodies into the host result shape.
type APICall struct {
	Adapter              core.TransportAdapter
	BaseURL              string
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

// NewAPICall targets baseURL, which may be a bare host ("graph.facebook.com")
// or carry its own scheme. A nil adapter falls back to a default REST adapter.
func NewAPICall(baseURL string, adapter core.TransportAdapter) *APICall {
	if adapter == nil {
		adapter = NewRESTAdapter(nil)
	}
	return &APICall{
		Adapter: adapter,
		BaseURL: strings.TrimSpace(baseURL),
	}
}

func (c *APICall) APICall(ctx context.Context, req core.APICallRequest) (core.APICallResult, error) {
	if c == nil || c.Adapter == nil {
		return core.APICallResult{}, transportError(
			"transport: api call requires a transport adapter",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			nil,
		)
	}
	baseURL := strings.TrimSpace(req.BaseURL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(c.BaseURL)
	}
	if baseURL == "" {
		return core.APICallResult{}, transportError(
			"transport: api call base url is required",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			nil,
		)
	}

	method := strings.TrimSpace(strings.ToUpper(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	res, err := c.Adapter.Do(ctx, core.TransportRequest{
		Method:               method,
		URL:                  buildAPICallURL(baseURL, req.Path, req.URLParameters),
		Headers:              cloneStringMap(req.Headers),
		Timeout:              c.Timeout,
		MaxResponseBodyBytes: c.MaxResponseBodyBytes,
	})
	if err != nil {
		return core.APICallResult{
			StatusCode: res.StatusCode,
			Headers:    cloneStringMap(res.Headers),
		}, err
	}

	return core.APICallResult{
		Body:       decodeAPICallBody(res.Body),
		StatusCode: res.StatusCode,
		Headers:    cloneStringMap(res.Headers),
		RawBody:    append([]byte(nil), res.Body...),
	}, nil
}

func buildAPICallURL(baseURL string, path string, parameters string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !strings.Contains(base, "://") {
		base = defaultAPICallScheme + "://" + base
	}
	path = strings.TrimSpace(path)
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	out := base + path
	parameters = strings.TrimPrefix(strings.TrimSpace(parameters), "?")
	if parameters != "" {
		out += "?" + parameters
	}
	return out
}

// decodeAPICallBody leaves both fields nil for empty or non-JSON payloads and
// for JSON scalars.
func decodeAPICallBody(payload []byte) core.APICallBody {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return core.APICallBody{}
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return core.APICallBody{}
	}
	switch typed := decoded.(type) {
	case map[string]any:
		return core.APICallBody{Dictionary: typed}
	case []any:
		return core.APICallBody{Array: typed}
	default:
		return core.APICallBody{}
	}
}

func cloneStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var _ core.APICaller = (*APICall)(nil)
