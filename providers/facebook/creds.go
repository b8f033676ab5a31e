package facebook

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-accounts/core"
	"github.com/goliatone/go-accounts/transport"
	glog "github.com/goliatone/go-logger/glog"
)

const providerScheme = core.SchemeFacebook

const (
	tokenExchangePath      = "/oauth/access_token"
	grantTypeTokenExchange = "fb_exchange_token"
	serializedForm         = "{}"
)

// Configuration exposes the Facebook app credentials used for token exchange.
type Configuration interface {
	FacebookClientID() string
	FacebookClientSecret() string
}

// ModeConfiguration is implemented by configurations that also carry the
// runtime mode.
type ModeConfiguration interface {
	RuntimeMode() core.RuntimeMode
}

// BaseURLConfiguration lets a configuration point the adapter at another
// Graph API host.
type BaseURLConfiguration interface {
	FacebookBaseURL() string
}

type Option func(*Creds)

func WithAPICaller(caller core.APICaller) Option {
	return func(c *Creds) {
		if caller != nil {
			c.caller = caller
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Creds) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithRuntimeMode takes precedence over a mode carried by the configuration.
func WithRuntimeMode(mode core.RuntimeMode) Option {
	return func(c *Creds) {
		c.mode = core.NormalizeMode(mode)
	}
}

func WithLogger(logger core.Logger) Option {
	return func(c *Creds) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Creds is a Facebook account credential. It holds the current access token
// and can swap a short-lived token for a long-lived one.
//
// Creds is not safe for concurrent use; callers serialize calls on a value.
type Creds struct {
	accessToken   string
	creationUser  core.AccountCreationUser
	configuration Configuration
	delegate      core.AccountDelegate
	baseURL       string
	mode          core.RuntimeMode
	caller        core.APICaller
	logger        core.Logger
}

// New builds empty credentials. A configuration that does not implement
// Configuration is ignored.
func New(configuration any, delegate core.AccountDelegate, opts ...Option) (*Creds, error) {
	creds := &Creds{
		delegate: delegate,
		baseURL:  core.DefaultFacebookBaseURL,
		mode:     core.ModeProduction,
		logger:   glog.Nop(),
	}
	if cfg, ok := configuration.(Configuration); ok {
		creds.configuration = cfg
	}
	if cfg, ok := configuration.(BaseURLConfiguration); ok {
		if baseURL := strings.TrimSpace(cfg.FacebookBaseURL()); baseURL != "" {
			creds.baseURL = baseURL
		}
	}
	if cfg, ok := configuration.(ModeConfiguration); ok {
		if mode := core.NormalizeMode(cfg.RuntimeMode()); mode != "" {
			creds.mode = mode
		}
	}

	for _, opt := range opts {
		if opt != nil {
			opt(creds)
		}
	}
	if creds.mode == "" {
		creds.mode = core.ModeProduction
	}
	return creds, nil
}

// FromJSON restores credentials from their serialized form. The serialized
// form never holds a token, so the result has none.
func FromJSON(
	_ string,
	user core.AccountCreationUser,
	configuration any,
	delegate core.AccountDelegate,
	opts ...Option,
) (*Creds, error) {
	creds, err := New(configuration, delegate, opts...)
	if err != nil {
		return nil, err
	}
	creds.creationUser = user
	return creds, nil
}

// PropertiesFromHeaders extracts the access token header, if present, without
// altering its value.
func PropertiesFromHeaders(headers core.AccountHeaders) map[string]any {
	properties := map[string]any{}
	if token, ok := headers.Lookup(core.HTTPOAuth2AccessTokenKey); ok {
		properties[core.HTTPOAuth2AccessTokenKey] = token
	}
	return properties
}

// FromProperties builds credentials whose token is taken from the
// access_token property when it is a string.
func FromProperties(
	properties core.AccountProperties,
	user core.AccountCreationUser,
	configuration any,
	delegate core.AccountDelegate,
	opts ...Option,
) (*Creds, error) {
	creds, err := New(configuration, delegate, opts...)
	if err != nil {
		return nil, err
	}
	creds.creationUser = user
	if token, ok := properties.Properties[core.HTTPOAuth2AccessTokenKey].(string); ok {
		creds.accessToken = token
	}
	return creds, nil
}

func (c *Creds) Scheme() core.AccountScheme {
	return providerScheme
}

func (c *Creds) OwningAccountsNeedCloudFolderName() bool {
	return false
}

func (c *Creds) AccessToken() string {
	if c == nil {
		return ""
	}
	return c.accessToken
}

func (c *Creds) CreationUser() core.AccountCreationUser {
	if c == nil {
		return nil
	}
	return c.creationUser
}

func (c *Creds) Delegate() core.AccountDelegate {
	if c == nil {
		return nil
	}
	return c.delegate
}

func (c *Creds) Mode() core.RuntimeMode {
	if c == nil {
		return ""
	}
	return c.mode
}

// Serialize always returns an empty JSON object; the token is not persisted.
func (c *Creds) Serialize() (string, error) {
	return serializedForm, nil
}

// NeedsTokenRegeneration is false in testing mode and true otherwise. The
// existing account is not consulted.
func (c *Creds) NeedsTokenRegeneration(_ core.Account) bool {
	if c == nil {
		return false
	}
	return c.mode != core.ModeTesting
}

// ExchangeToken trades the current token for a long-lived one with a single
// request to the Graph API. completion runs exactly once, after the request
// resolves or immediately when credentials are missing.
func (c *Creds) ExchangeToken(ctx context.Context, completion func(error)) {
	if completion == nil {
		completion = func(error) {}
	}
	if c == nil {
		completion(missingCredentialsConfigurationError())
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	clientID, clientSecret, ok := c.credentials()
	if !ok {
		c.logger.Debug("facebook token exchange skipped: missing app credentials")
		completion(missingCredentialsConfigurationError())
		return
	}

	result, err := c.apiCaller().APICall(ctx, core.APICallRequest{
		Method:        http.MethodGet,
		BaseURL:       c.baseURL,
		Path:          tokenExchangePath,
		URLParameters: exchangeParameters(clientID, clientSecret, c.accessToken),
	})
	c.logger.Debug("facebook token exchange response",
		"client_id", clientID,
		"status_code", result.StatusCode,
	)
	if result.StatusCode != http.StatusOK {
		completion(nonSuccessStatusError(result.StatusCode, err))
		return
	}
	// A 200 whose body could not be read in full is as unusable as one that
	// is not a json object.
	if err != nil || !result.Body.IsDictionary() {
		completion(notJSONError())
		return
	}
	token, ok := result.Body.Dictionary[core.HTTPOAuth2AccessTokenKey].(string)
	if !ok {
		completion(missingTokenFieldError())
		return
	}

	c.accessToken = token
	completion(nil)
}

// Merge does nothing; Facebook credentials carry no state worth merging.
func (c *Creds) Merge(_ core.Account) {}

func (c *Creds) credentials() (string, string, bool) {
	if c.configuration == nil {
		return "", "", false
	}
	clientID := c.configuration.FacebookClientID()
	clientSecret := c.configuration.FacebookClientSecret()
	if clientID == "" || clientSecret == "" {
		return "", "", false
	}
	return clientID, clientSecret, true
}

func (c *Creds) apiCaller() core.APICaller {
	if c.caller == nil {
		c.caller = transport.NewAPICall(c.baseURL, nil)
	}
	return c.caller
}

// exchangeParameters keeps the parameter order fixed so requests are
// reproducible.
func exchangeParameters(clientID string, clientSecret string, token string) string {
	return "grant_type=" + grantTypeTokenExchange +
		"&client_id=" + url.QueryEscape(clientID) +
		"&client_secret=" + url.QueryEscape(clientSecret) +
		"&fb_exchange_token=" + url.QueryEscape(token)
}

var _ core.Account = (*Creds)(nil)
