// Package edl implements the TokenIssuer port against the Earthdata Login
// user token API.
package edl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/podaac/generate-token-creator/internal/domain/model"
	"github.com/podaac/generate-token-creator/internal/domain/port/driven"
)

// errCodeMaxTokenLimit is the error code Earthdata Login returns when the
// account already holds its maximum number of tokens.
const errCodeMaxTokenLimit = "max_token_limit"

// Compile-time interface satisfaction check.
var _ driven.TokenIssuer = (*Client)(nil)

// APIError is a structured error payload returned by Earthdata Login.
type APIError struct {
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("earthdata login error %q", e.Code)
	}
	return fmt.Sprintf("earthdata login error %q: %s", e.Code, e.Description)
}

// tokenResponse is the body of the token endpoint. On rejection the error
// fields are set instead of the token fields.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpirationDate   string `json:"expiration_date"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// listedToken is one element of the token collection listing. Entries may
// omit the access token.
type listedToken struct {
	AccessToken    string `json:"access_token"`
	TokenType      string `json:"token_type"`
	ExpirationDate string `json:"expiration_date"`
}

// issueState tracks a single issuance attempt through the retry flow.
type issueState int

const (
	stateRequesting issueState = iota
	stateLimitExceeded
	stateRetrying
	stateSucceeded
	stateFailed
)

var issueStateNames = [...]string{
	stateRequesting:    "requesting",
	stateLimitExceeded: "limit_exceeded",
	stateRetrying:      "retrying",
	stateSucceeded:     "succeeded",
	stateFailed:        "failed",
}

func (s issueState) String() string { return issueStateNames[s] }

// Client issues and revokes Earthdata Login bearer tokens over the user
// token REST API.
type Client struct {
	http      *resty.Client
	endpoints Endpoints
	logger    *slog.Logger
}

// NewClient creates a Client for the given environments. timeout bounds each
// individual request.
func NewClient(endpoints Endpoints, timeout time.Duration, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:      httpClient,
		endpoints: endpoints,
		logger:    logger,
	}
}

// HTTPClient exposes the underlying http.Client so tests can install a mock
// transport.
func (c *Client) HTTPClient() *http.Client {
	return c.http.GetClient()
}

// Issue exchanges credentials for a new bearer token. Issuance runs as a
// small state machine: requesting moves to limit_exceeded when Earthdata
// Login reports max_token_limit, limit_exceeded revokes every outstanding
// token and moves to retrying, and the retry is made exactly once. Any other
// error response fails immediately.
func (c *Client) Issue(ctx context.Context, creds model.Credentials, env model.Environment) (model.Token, error) {
	base := c.endpoints.BaseURL(env)
	c.logger.Info("requesting bearer token", "environment", string(env), "url", base+tokenPath)

	var (
		state    = stateRequesting
		access   string
		issueErr error
	)
	for {
		switch state {
		case stateRequesting:
			body, err := c.postToken(ctx, creds, base)
			switch {
			case err != nil:
				state, issueErr = stateFailed, err
			case body.Error == errCodeMaxTokenLimit:
				c.logger.Warn("token limit reached, revoking outstanding tokens", "environment", string(env))
				state = stateLimitExceeded
			case body.Error != "":
				state, issueErr = stateFailed, &APIError{Code: body.Error, Description: body.ErrorDescription}
			default:
				state, access = stateSucceeded, body.AccessToken
			}

		case stateLimitExceeded:
			if err := c.revokeOutstanding(ctx, creds, base); err != nil {
				state, issueErr = stateFailed, err
			} else {
				state = stateRetrying
			}

		case stateRetrying:
			body, err := c.postToken(ctx, creds, base)
			switch {
			case err != nil:
				state, issueErr = stateFailed, errors.WithMessage(err, "retry after revoking")
			case body.Error != "":
				state, issueErr = stateFailed, errors.WithMessage(&APIError{Code: body.Error, Description: body.ErrorDescription}, "retry after revoking")
			default:
				state, access = stateSucceeded, body.AccessToken
			}

		case stateSucceeded:
			c.logger.Info("generated bearer token", "environment", string(env))
			return model.Token{AccessToken: access, Environment: env}, nil

		case stateFailed:
			return model.Token{}, issueErr
		}
		c.logger.Debug("token issuance state", "state", state.String())
	}
}

// OutstandingTokens reports how many tokens Earthdata Login currently holds
// for the credentials in env.
func (c *Client) OutstandingTokens(ctx context.Context, creds model.Credentials, env model.Environment) (int, error) {
	listed, err := c.listTokens(ctx, creds, c.endpoints.BaseURL(env))
	if err != nil {
		return 0, err
	}
	return len(listed), nil
}

func (c *Client) postToken(ctx context.Context, creds model.Credentials, base string) (tokenResponse, error) {
	var body tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(creds.Username, creds.Password).
		SetResult(&body).
		SetError(&body).
		Post(base + tokenPath)
	if err != nil {
		return tokenResponse{}, errors.Wrap(err, "posting token request")
	}
	if body.Error == "" && body.AccessToken == "" {
		return tokenResponse{}, errors.Errorf("token endpoint returned neither a token nor an error (%s)", resp.Status())
	}
	return body, nil
}

// revokeOutstanding lists every token issued to the credentials and revokes
// each one. Individual revocation failures are logged and the sweep
// continues; a token that survives revocation surfaces again on the retried
// token request.
func (c *Client) revokeOutstanding(ctx context.Context, creds model.Credentials, base string) error {
	listed, err := c.listTokens(ctx, creds, base)
	if err != nil {
		return err
	}

	revoked := 0
	for _, tok := range listed {
		if tok.AccessToken == "" {
			continue
		}
		if err := c.revoke(ctx, creds, base, tok.AccessToken); err != nil {
			c.logger.Warn("revoke failed, continuing sweep", "error", err)
			continue
		}
		revoked++
	}
	c.logger.Info("revoked outstanding tokens", "count", revoked, "listed", len(listed))
	return nil
}

func (c *Client) listTokens(ctx context.Context, creds model.Credentials, base string) ([]listedToken, error) {
	var listed []listedToken
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(creds.Username, creds.Password).
		SetResult(&listed).
		Get(base + tokensPath)
	if err != nil {
		return nil, errors.Wrap(err, "listing outstanding tokens")
	}
	if resp.IsError() {
		return nil, errors.Errorf("token listing returned %s", resp.Status())
	}
	return listed, nil
}

func (c *Client) revoke(ctx context.Context, creds model.Credentials, base, accessToken string) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(creds.Username, creds.Password).
		SetQueryParam("token", accessToken).
		Post(base + revokePath)
	return errors.Wrap(err, "revoking token")
}
