package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/Import-AF/pipedream-libs/pkg/logger"
	"github.com/google/uuid"
)

const (
	// DefaultEndpoint is the Monday.com GraphQL API endpoint.
	DefaultEndpoint = "https://api.monday.com/v2"
	// DefaultAPIVersion is sent in the API-Version header.
	DefaultAPIVersion = "2024-10"
)

// Client is a Monday.com GraphQL API client. It performs no retries itself;
// callers wrap calls with a retry manager when they want one.
type Client struct {
	token      string
	endpoint   string
	apiVersion string
	httpClient *http.Client
	log        *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the API endpoint, mainly for tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithAPIVersion overrides the API-Version header value.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new Monday.com API client. The token is sent verbatim
// in the Authorization header.
func NewClient(token string, opts ...Option) *Client {
	client := &Client{
		token:      token,
		endpoint:   DefaultEndpoint,
		apiVersion: DefaultAPIVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.New(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// graphQLRequest is the wire shape of a GraphQL POST body.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// graphQLResponse is the wire shape of a GraphQL response body.
type graphQLResponse struct {
	Data   json.RawMessage    `json:"data"`
	Errors []GraphQLErrorItem `json:"errors"`
}

// Execute sends a GraphQL query or mutation and returns the raw data payload.
// Failures are reported as *TransportError, *HTTPError, *ResponseParseError
// or *GraphQLError depending on which layer rejected the call.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-Version", c.apiVersion)

	c.log.Debugf("Sending GraphQL request %s to %s", requestID, c.endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 512)}
	}

	var parsed graphQLResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &ResponseParseError{Err: err}
	}

	if len(parsed.Errors) > 0 {
		gqlErr := &GraphQLError{Errors: parsed.Errors, Data: parsed.Data}
		c.log.Debugf("GraphQL request %s failed: %v", requestID, gqlErr)
		return nil, gqlErr
	}

	c.log.Debugf("GraphQL request %s completed", requestID)
	return parsed.Data, nil
}

// GetBoardColumns returns the columns of a board in board order. A missing
// board or a board without columns yields an empty slice, not an error.
func (c *Client) GetBoardColumns(ctx context.Context, boardID string) ([]Column, error) {
	query := `query ($boardId: [ID!]) {
		boards(ids: $boardId) {
			columns {
				id
				title
				type
				description
				settings_str
			}
		}
	}`

	data, err := c.Execute(ctx, query, map[string]interface{}{"boardId": []string{boardID}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch columns for board %s: %w", boardID, err)
	}

	var result struct {
		Boards []struct {
			Columns []Column `json:"columns"`
		} `json:"boards"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &ResponseParseError{Err: err}
	}

	if len(result.Boards) == 0 {
		return []Column{}, nil
	}
	if result.Boards[0].Columns == nil {
		return []Column{}, nil
	}
	return result.Boards[0].Columns, nil
}

// CreateItem creates a new item on a board with the given column values.
// The payload is serialized to the JSON string encoding the API expects.
func (c *Client) CreateItem(ctx context.Context, boardID, itemName string, columnValues map[string]interface{}, createLabelsIfMissing bool) (*ItemResult, error) {
	valuesJSON, err := json.Marshal(columnValues)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal column values: %w", err)
	}

	query := `mutation ($boardId: ID!, $itemName: String!, $columnValues: JSON, $createLabels: Boolean) {
		create_item(board_id: $boardId, item_name: $itemName, column_values: $columnValues, create_labels_if_missing: $createLabels) {
			id
			name
		}
	}`

	variables := map[string]interface{}{
		"boardId":      boardID,
		"itemName":     itemName,
		"columnValues": string(valuesJSON),
		"createLabels": createLabelsIfMissing,
	}

	data, err := c.Execute(ctx, query, variables)
	if err != nil {
		return nil, fmt.Errorf("failed to create item on board %s: %w", boardID, err)
	}

	var result struct {
		CreateItem ItemResult `json:"create_item"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &ResponseParseError{Err: err}
	}

	return &result.CreateItem, nil
}

// UpdateItem overwrites column values of an existing item.
func (c *Client) UpdateItem(ctx context.Context, itemID, boardID string, columnValues map[string]interface{}) (*ItemResult, error) {
	valuesJSON, err := json.Marshal(columnValues)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal column values: %w", err)
	}

	query := `mutation ($itemId: ID!, $boardId: ID!, $columnValues: JSON!) {
		change_multiple_column_values(item_id: $itemId, board_id: $boardId, column_values: $columnValues) {
			id
			name
		}
	}`

	variables := map[string]interface{}{
		"itemId":       itemID,
		"boardId":      boardID,
		"columnValues": string(valuesJSON),
	}

	data, err := c.Execute(ctx, query, variables)
	if err != nil {
		return nil, fmt.Errorf("failed to update item %s on board %s: %w", itemID, boardID, err)
	}

	var result struct {
		ChangeColumnValues ItemResult `json:"change_multiple_column_values"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &ResponseParseError{Err: err}
	}

	return &result.ChangeColumnValues, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back off to a rune boundary so the snippet stays valid UTF-8.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
