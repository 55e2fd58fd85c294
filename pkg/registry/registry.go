// Package registry provides a client for the state concession registry, the upstream
// source of the scored-characteristic catalog and of holder and vehicle records.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/xeipuuv/gojsonschema"

	"github.com/abrezinsky/revista/internal/logger"
)

// FlexString is a string type that can be unmarshaled from either a string or a number.
// The registry sends option ids as numbers on some endpoints and strings on others.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler for FlexString
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	return fmt.Errorf("FlexString: cannot unmarshal %s", string(data))
}

// String returns the string value
func (f FlexString) String() string {
	return string(f)
}

// CharacteristicOption is one selectable option of a scored characteristic
type CharacteristicOption struct {
	ID     FlexString `json:"id"`
	Label  string     `json:"label"`
	Points int        `json:"points"`
}

// Characteristic is a scored characteristic with its option catalog
type Characteristic struct {
	Key     string                 `json:"key"`
	Label   string                 `json:"label"`
	Order   int                    `json:"order"`
	Options []CharacteristicOption `json:"options"`
}

// CatalogResponse is the response from the characteristics catalog endpoint
type CatalogResponse struct {
	Characteristics []Characteristic `json:"characteristics"`
}

// ConcessionRecord is a concession as the registry reports it
type ConcessionRecord struct {
	Number    string `json:"number"`
	Modality  string `json:"modality"`
	Route     string `json:"route"`
	Status    string `json:"status"`
	ExpiresOn string `json:"expires_on"`
}

// HolderRecord is a titular as the registry reports it
type HolderRecord struct {
	ID          int                `json:"id"`
	Name        string             `json:"name"`
	RFC         string             `json:"rfc"`
	CURP        string             `json:"curp"`
	Phone       string             `json:"phone"`
	Address     string             `json:"address"`
	Concessions []ConcessionRecord `json:"concessions"`
}

// HolderSearchResponse is the response from the holder search endpoint
type HolderSearchResponse struct {
	Holders []HolderRecord `json:"holders"`
}

// VehicleRecord is a registered vehicle as the registry reports it
type VehicleRecord struct {
	Plate            string     `json:"plate"`
	Serial           string     `json:"serial"`
	EngineNumber     string     `json:"engine_number"`
	Brand            string     `json:"brand"`
	Model            string     `json:"model"`
	Year             int        `json:"year"`
	Color            string     `json:"color"`
	Capacity         int        `json:"capacity"`
	FuelType         string     `json:"fuel_type"`
	PhotoURL         string     `json:"photo_url"`
	ConcessionNumber FlexString `json:"concession_number"`
}

// VehicleListResponse is the response from the vehicle list endpoint
type VehicleListResponse struct {
	Vehicles []VehicleRecord `json:"vehicles"`
}

// Submission is the payload sent when an inspection is submitted
type Submission struct {
	Folio            string            `json:"folio"`
	Plate            string            `json:"plate"`
	Serial           string            `json:"serial"`
	ConcessionNumber string            `json:"concession_number"`
	Inspector        string            `json:"inspector"`
	ClassificationID int               `json:"classification_id"`
	Classification   string            `json:"classification"`
	Score            int               `json:"score"`
	MaxScore         int               `json:"max_score"`
	Answers          map[string]any    `json:"answers"`
	Observations     string            `json:"observations,omitempty"`
	SubmittedAt      string            `json:"submitted_at"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// Receipt is the registry's acknowledgement of a submission
type Receipt struct {
	ID     FlexString `json:"id"`
	Status string     `json:"status"`
}

// Client defines the interface for concession registry operations
type Client interface {
	// FetchCharacteristics retrieves the scored-characteristic catalog
	FetchCharacteristics(ctx context.Context) ([]Characteristic, error)
	// SearchHolders looks up titulares by name, RFC, CURP or concession number
	SearchHolders(ctx context.Context, query string) ([]HolderRecord, error)
	// FetchVehicles retrieves the registered vehicles
	FetchVehicles(ctx context.Context) ([]VehicleRecord, error)
	// SubmitInspection forwards a scored inspection
	SubmitInspection(ctx context.Context, s Submission) (*Receipt, error)
	// BaseURL returns the configured registry base URL
	BaseURL() string
	// SetBaseURL updates the registry base URL
	SetBaseURL(url string)
	// SetToken configures the bearer token sent with every request
	SetToken(token string)
}

// catalogSchema is checked before the catalog payload is decoded
const catalogSchema = `{
	"type": "object",
	"required": ["characteristics"],
	"properties": {
		"characteristics": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["key", "label", "options"],
				"properties": {
					"key": {"type": "string", "minLength": 1},
					"label": {"type": "string"},
					"order": {"type": "integer"},
					"options": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["id", "label", "points"],
							"properties": {
								"id": {"type": ["string", "integer"]},
								"label": {"type": "string"},
								"points": {"type": "integer", "minimum": 0}
							}
						}
					}
				}
			}
		}
	}
}`

var catalogSchemaLoader = gojsonschema.NewStringLoader(catalogSchema)

// StatusError is returned when the registry answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("registry returned status %d: %s", e.StatusCode, e.Body)
}

// HTTPClient is a real HTTP client for the registry
type HTTPClient struct {
	mu         sync.RWMutex
	baseURL    string
	token      string
	httpClient *http.Client
	log        logger.Logger
	retryCfg   retry.Config
}

// NewHTTPClient creates a new registry HTTP client
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return NewHTTPClientWithHTTPClient(baseURL, &http.Client{Timeout: 30 * time.Second}, log)
}

// NewHTTPClientWithHTTPClient creates a new registry client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
		retryCfg: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  200 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
			IsRetryable:   isTransient,
		},
	}
}

// isTransient reports whether a failed request may succeed if sent again:
// connection failures, 429 and 5xx. Other statuses and cancellation are final.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// SetRetry overrides the retry attempts and initial backoff
func (c *HTTPClient) SetRetry(maxAttempts int, initialDelay time.Duration) {
	c.retryCfg.MaxAttempts = maxAttempts
	c.retryCfg.InitialDelay = initialDelay
}

// BaseURL returns the configured registry base URL
func (c *HTTPClient) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL updates the registry base URL
func (c *HTTPClient) SetBaseURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(url, "/")
}

// SetToken configures the bearer token sent with every request
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// do executes one request and returns the response body. Only GET requests are
// retried; the registry does not dedupe submissions, so a POST is sent once.
// Any non-2xx status is an error.
func (c *HTTPClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	c.mu.RLock()
	base, token := c.baseURL, c.token
	c.mu.RUnlock()

	cfg := c.retryCfg
	if method != http.MethodGet {
		cfg.MaxAttempts = 1
	}

	if base == "" {
		return nil, fmt.Errorf("registry URL is not configured")
	}
	reqURL := base + path

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	r := retry.New[[]byte](cfg)
	return r.Do(ctx, func(ctx context.Context) ([]byte, error) {
		c.log.Debug("Registry request", "method", method, "url", reqURL, "body", string(body))

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to registry: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		c.log.Debug("Registry response", "status", resp.StatusCode, "body", string(respBody))

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
		}
		return respBody, nil
	})
}

// FetchCharacteristics retrieves the scored-characteristic catalog
func (c *HTTPClient) FetchCharacteristics(ctx context.Context) ([]Characteristic, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/catalog/characteristics", nil)
	if err != nil {
		return nil, err
	}

	result, err := gojsonschema.Validate(catalogSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if !result.Valid() {
		var issues []string
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, fmt.Errorf("catalog does not match schema: %s", strings.Join(issues, "; "))
	}

	var response CatalogResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return response.Characteristics, nil
}

// SearchHolders looks up titulares
func (c *HTTPClient) SearchHolders(ctx context.Context, query string) ([]HolderRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/holders?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}

	var response HolderSearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return response.Holders, nil
}

// FetchVehicles retrieves the registered vehicles
func (c *HTTPClient) FetchVehicles(ctx context.Context) ([]VehicleRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/vehicles", nil)
	if err != nil {
		return nil, err
	}

	var response VehicleListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return response.Vehicles, nil
}

// SubmitInspection forwards a scored inspection
func (c *HTTPClient) SubmitInspection(ctx context.Context, s Submission) (*Receipt, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/inspections", s)
	if err != nil {
		return nil, err
	}

	var receipt Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	c.log.Info("Inspection forwarded to registry", "folio", s.Folio, "receipt", receipt.ID)
	return &receipt, nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
