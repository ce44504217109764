package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tfkr-ae/launchbook/domain"
)

// DefaultTimeout bounds a whole request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// TokenSource provides the authentication token sent with each request.
// domain.SecretStore satisfies it.
type TokenSource interface {
	GetToken() (string, error)
}

// Client talks to the launches GraphQL endpoint.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	tokens      TokenSource
	logger      *slog.Logger
	timeout     time.Duration
	fingerprint string
}

// New creates a Client for endpoint and applies the options in order.
func New(endpoint string, options ...func(*Client) error) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("endpoint is required")
	}

	client := &Client{
		endpoint: endpoint,
		logger:   slog.Default(),
		timeout:  DefaultTimeout,
	}
	for _, option := range options {
		if err := option(client); err != nil {
			return nil, fmt.Errorf("applying option on client : %w", err)
		}
	}

	if client.httpClient == nil {
		base, err := newTransport(client.fingerprint)
		if err != nil {
			return nil, err
		}
		client.httpClient = &http.Client{
			Transport: &loggingRoundTripper{base: base, logger: client.logger},
			Timeout:   client.timeout,
		}
	}
	return client, nil
}

// WithHTTPClient replaces the HTTP client. Timeout and fingerprint options are ignored with it.
func WithHTTPClient(httpClient *http.Client) func(*Client) error {
	return func(c *Client) error {
		if httpClient == nil {
			return errors.New("http client is nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithLogger sets the logger for request traffic. A nil logger keeps the default.
func WithLogger(logger *slog.Logger) func(*Client) error {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithTimeout sets the timeout of a whole request.
func WithTimeout(timeout time.Duration) func(*Client) error {
	return func(c *Client) error {
		if timeout <= 0 {
			return fmt.Errorf("invalid timeout %s", timeout)
		}
		c.timeout = timeout
		return nil
	}
}

// WithTLSFingerprint selects the TLS client hello, "" for Go's own or FingerprintChrome.
func WithTLSFingerprint(fingerprint string) func(*Client) error {
	return func(c *Client) error {
		if fingerprint != "" && fingerprint != FingerprintChrome {
			return fmt.Errorf("unsupported tls fingerprint %q", fingerprint)
		}
		c.fingerprint = fingerprint
		return nil
	}
}

// WithTokenSource sets where the Authorization token comes from.
func WithTokenSource(tokens TokenSource) func(*Client) error {
	return func(c *Client) error {
		c.tokens = tokens
		return nil
	}
}

// GetLaunches fetches the launch list.
func (c *Client) GetLaunches(ctx context.Context) (*LaunchesData, error) {
	return execute[LaunchesData](ctx, c, getLaunches, nil)
}

// GetLaunchDetail fetches a single launch by id.
func (c *Client) GetLaunchDetail(ctx context.Context, id string) (*LaunchDetailData, error) {
	return execute[LaunchDetailData](ctx, c, getLaunchDetail, map[string]any{"id": id})
}

// Login exchanges an email for a token.
func (c *Client) Login(ctx context.Context, email string) (*LoginData, error) {
	return execute[LoginData](ctx, c, login, map[string]any{"email": email})
}

// BookTrips books every launch in ids for the authenticated user.
func (c *Client) BookTrips(ctx context.Context, ids []string) (*BookTripsData, error) {
	if ids == nil {
		ids = []string{}
	}
	return execute[BookTripsData](ctx, c, bookTrips, map[string]any{"launchIds": ids})
}

// CancelTrip cancels the booking of a launch for the authenticated user.
func (c *Client) CancelTrip(ctx context.Context, id string) (*CancelTripData, error) {
	return execute[CancelTripData](ctx, c, cancelTrip, map[string]any{"launchId": id})
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// token returns the Authorization value, or "" to send the request unauthenticated.
func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	token, err := c.tokens.GetToken()
	if err != nil {
		if !errors.Is(err, domain.ErrSecretNotFound) {
			c.logger.Warn("reading token, sending unauthenticated", "error", err)
		}
		return ""
	}
	return token
}

func execute[T any](ctx context.Context, c *Client, op Operation, variables map[string]any) (*T, error) {
	requestID, ok := RequestIDFromContext(ctx)
	if !ok {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generating request id : %w", err)
		}
		requestID = id
		ctx = ContextWithRequestID(ctx, requestID)
	}
	ctx = ContextWithOperation(ctx, op.Name)

	payload, err := json.Marshal(graphQLRequest{
		Query:         op.Document,
		OperationName: op.Name,
		Variables:     variables,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling %s : %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.NewError(domain.KindTransport, "", fmt.Errorf("creating %s request : %w", op.Name, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", acceptEncoding)
	req.Header.Set("X-Request-ID", requestID.String())
	req.Header.Set("X-Apollo-Operation-Name", op.Name)
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewError(domain.KindTransport, "", fmt.Errorf("sending %s : %w", op.Name, err))
	}
	defer resp.Body.Close()

	body, err := readBody(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, domain.NewError(domain.KindTransport, "", fmt.Errorf("reading %s response : %w", op.Name, err))
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, domain.NewError(domain.KindTransport, "",
			fmt.Errorf("decoding %s response (status %d, %s) : %w", op.Name, resp.StatusCode, sniff(body), err))
	}

	if len(envelope.Errors) > 0 {
		message := envelope.Errors[0].Message
		if message == "" {
			message = op.Fallback
		}
		c.logger.Debug("graphql errors", "operation", op.Name, "request_id", requestID, "count", len(envelope.Errors))
		return nil, domain.NewError(domain.KindGraphQL, message, nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewError(domain.KindTransport, "",
			fmt.Errorf("%s returned unexpected status %d", op.Name, resp.StatusCode))
	}

	if len(envelope.Data) == 0 || bytes.Equal(envelope.Data, []byte("null")) {
		return nil, domain.NewError(domain.KindEmptyPayload, "No data received", nil)
	}

	var data T
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, domain.NewError(domain.KindTransport, "", fmt.Errorf("decoding %s data : %w", op.Name, err))
	}
	return &data, nil
}
