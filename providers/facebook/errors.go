package facebook

import (
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes reported by a failed token exchange.
const (
	ErrorMissingCredentialsConfiguration = "FACEBOOK_MISSING_CREDENTIALS_CONFIGURATION"
	ErrorNotJSON                         = "FACEBOOK_NOT_JSON"
	ErrorMissingTokenField               = "FACEBOOK_MISSING_TOKEN_FIELD"
	ErrorNonSuccessStatus                = "FACEBOOK_NON_SUCCESS_STATUS"
)

const statusCodeMetadataKey = "status_code"

func missingCredentialsConfigurationError() error {
	return goerrors.New("facebook: client id and client secret are required for token exchange", goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorMissingCredentialsConfiguration).
		WithMetadata(map[string]any{"provider": string(providerScheme)})
}

func notJSONError() error {
	return goerrors.New("facebook: token exchange response is not a json object", goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorNotJSON).
		WithMetadata(map[string]any{"provider": string(providerScheme)})
}

func missingTokenFieldError() error {
	return goerrors.New("facebook: token exchange response has no access_token", goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorMissingTokenField).
		WithMetadata(map[string]any{"provider": string(providerScheme)})
}

// nonSuccessStatusError carries the upstream status when one was received.
// A zero status means the request failed before any response arrived.
func nonSuccessStatusError(status int, source error) error {
	metadata := map[string]any{"provider": string(providerScheme)}
	message := "facebook: token exchange failed without a response status"
	if status != 0 {
		metadata[statusCodeMetadataKey] = status
		message = fmt.Sprintf("facebook: token exchange returned status %d", status)
	}

	var err *goerrors.Error
	if source != nil {
		err = goerrors.Wrap(source, goerrors.CategoryExternal, message)
	} else {
		err = goerrors.New(message, goerrors.CategoryExternal)
	}
	return err.
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorNonSuccessStatus).
		WithMetadata(metadata)
}

// ExchangeFailure returns the Facebook text code carried by err, if any.
func ExchangeFailure(err error) (string, bool) {
	rich := richError(err)
	if rich == nil {
		return "", false
	}
	switch rich.TextCode {
	case ErrorMissingCredentialsConfiguration, ErrorNotJSON, ErrorMissingTokenField, ErrorNonSuccessStatus:
		return rich.TextCode, true
	default:
		return "", false
	}
}

// StatusCode returns the upstream HTTP status of a non-success exchange.
// It reports false when the failure had no status.
func StatusCode(err error) (int, bool) {
	rich := richError(err)
	if rich == nil || rich.TextCode != ErrorNonSuccessStatus {
		return 0, false
	}
	status, ok := rich.Metadata[statusCodeMetadataKey].(int)
	if !ok || status == 0 {
		return 0, false
	}
	return status, true
}

func richError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return nil
	}
	return rich
}
