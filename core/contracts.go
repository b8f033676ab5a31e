package core

import (
	"context"
	"net/http"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// HTTPOAuth2AccessTokenKey is the request header (and account property) that
// carries an OAuth2 access token issued by the account provider.
const HTTPOAuth2AccessTokenKey = "access_token"

type AccountScheme string

const (
	SchemeFacebook AccountScheme = "facebook"
)

func (s AccountScheme) String() string {
	return string(s)
}

func NormalizeScheme(scheme AccountScheme) AccountScheme {
	return AccountScheme(strings.TrimSpace(strings.ToLower(string(scheme))))
}

// AccountCreationUser is host state describing the user an account is being
// created for. Adapters carry it without interpreting it.
type AccountCreationUser interface{}

// AccountDelegate receives errors an account cannot report through its
// return values. Accounts reference a delegate but never own it.
type AccountDelegate interface {
	AccountError(account Account, err error)
}

// Account is the capability contract every provider credential implements.
type Account interface {
	Scheme() AccountScheme
	OwningAccountsNeedCloudFolderName() bool
	AccessToken() string
	CreationUser() AccountCreationUser

	// Serialize returns the JSON form persisted with the host account record.
	Serialize() (string, error)

	NeedsTokenRegeneration(existing Account) bool

	// ExchangeToken runs the provider token generation step. The completion
	// is called exactly once.
	ExchangeToken(ctx context.Context, completion func(error))

	Merge(newer Account)
}

// AccountFactory builds accounts of a single scheme.
type AccountFactory interface {
	Scheme() AccountScheme
	PropertiesFromHeaders(headers AccountHeaders) map[string]any
	FromProperties(
		properties AccountProperties,
		user AccountCreationUser,
		configuration any,
		delegate AccountDelegate,
	) (Account, error)
	FromJSON(
		json string,
		user AccountCreationUser,
		configuration any,
		delegate AccountDelegate,
	) (Account, error)
}

type AccountProperties struct {
	Scheme     AccountScheme
	Properties map[string]any
}

type AccountHeaders map[string]string

// Lookup matches the exact key first and falls back to a case-insensitive
// match, since HTTP header names are not case sensitive.
func (h AccountHeaders) Lookup(key string) (string, bool) {
	if len(h) == 0 {
		return "", false
	}
	if value, ok := h[key]; ok {
		return value, true
	}
	for candidate, value := range h {
		if strings.EqualFold(candidate, key) {
			return value, true
		}
	}
	return "", false
}

func HeadersFromHTTP(headers http.Header) AccountHeaders {
	out := AccountHeaders{}
	for key, values := range headers {
		if len(values) == 0 {
			out[key] = ""
			continue
		}
		out[key] = values[0]
	}
	return out
}

// APICallRequest targets BaseURL when set, else the caller's default host.
type APICallRequest struct {
	Method        string
	BaseURL       string
	Path          string
	URLParameters string
	Headers       map[string]string
}

// APICallBody holds a decoded JSON response. At most one of the fields is
// set; both are nil when the body was empty or not JSON.
type APICallBody struct {
	Dictionary map[string]any
	Array      []any
}

func (b APICallBody) IsDictionary() bool {
	return b.Dictionary != nil
}

type APICallResult struct {
	Body APICallBody
	// StatusCode is zero when no HTTP status was received.
	StatusCode int
	Headers    map[string]string
	RawBody    []byte
}

// APICaller performs a single request against a provider API host.
type APICaller interface {
	APICall(ctx context.Context, req APICallRequest) (APICallResult, error)
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type Registry interface {
	Register(factory AccountFactory) error
	Get(scheme AccountScheme) (AccountFactory, bool)
	List() []AccountFactory
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
