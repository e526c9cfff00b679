package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/eaglebank/mcp-banking/shared/utils"
)

const statusTimeout = 5 * time.Second

// Customer is the registration payload for the bank.
type Customer struct {
	Name        string `json:"name"`
	CustomerOID string `json:"customer_oid"`
}

// API is what the rest of the backend needs from the bank.
type API interface {
	RegisterCustomer(ctx context.Context, name string) (string, error)
	GetPortfolio(ctx context.Context, customerOID string) (*Portfolio, error)
	CustomerExists(ctx context.Context, customerOID string) (bool, error)
	DeleteCustomer(ctx context.Context, customerOID string) error
	ListCustomers(ctx context.Context) ([]map[string]any, error)
	Status(ctx context.Context) models.ServiceStatus
}

// Client talks to the bank over HTTP. Every call makes a single attempt bounded by timeout.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: &http.Client{},
		now:        time.Now,
	}
}

func (c *Client) URL() string { return c.baseURL }

// do sends the request and decodes a JSON body into out when the status is 2xx.
// Transport failures, including timeouts, are ErrBankUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %v", apperrors.ErrBankUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: invalid response from %s: %v", apperrors.ErrBank, path, err)
		}
	}
	return resp.StatusCode, nil
}

func statusError(path string, code int) error {
	return fmt.Errorf("%w: %s returned HTTP %d", apperrors.ErrBank, path, code)
}

// RegisterCustomer proposes a fresh customer id and returns the one the bank kept.
func (c *Client) RegisterCustomer(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result struct {
		CustomerOID string `json:"customer_oid"`
	}
	proposed := utils.NewCustomerOID()
	code, err := c.do(ctx, http.MethodPost, "/register-customer", Customer{Name: name, CustomerOID: proposed}, &result)
	if err != nil {
		return "", err
	}
	if code != http.StatusOK && code != http.StatusCreated {
		return "", statusError("/register-customer", code)
	}
	if result.CustomerOID == "" {
		return proposed, nil
	}
	return result.CustomerOID, nil
}

func (c *Client) GetPortfolio(ctx context.Context, customerOID string) (*Portfolio, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	path := "/user-portfolio/" + url.PathEscape(customerOID)
	var raw map[string]any
	code, err := c.do(ctx, http.MethodGet, path, nil, &raw)
	if err != nil {
		return nil, err
	}
	switch {
	case code == http.StatusNotFound:
		return nil, apperrors.New(apperrors.ErrNotFound, "Portfolio not found in bank")
	case code != http.StatusOK:
		return nil, statusError("/user-portfolio", code)
	}
	return decodePortfolio(raw)
}

func (c *Client) CustomerExists(ctx context.Context, customerOID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result struct {
		Exists bool `json:"exists"`
	}
	code, err := c.do(ctx, http.MethodGet, "/customer/"+url.PathEscape(customerOID)+"/exists", nil, &result)
	if err != nil {
		return false, err
	}
	switch code {
	case http.StatusOK:
		return result.Exists, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, statusError("/customer/exists", code)
	}
}

// DeleteCustomer removes a customer from the bank. An unknown id is ErrNotFound.
func (c *Client) DeleteCustomer(ctx context.Context, customerOID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	code, err := c.do(ctx, http.MethodDelete, "/customer/"+url.PathEscape(customerOID), nil, nil)
	if err != nil {
		return err
	}
	switch code {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return apperrors.New(apperrors.ErrNotFound, "Customer not found in bank")
	default:
		return statusError("/customer", code)
	}
}

func (c *Client) ListCustomers(ctx context.Context) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var raw any
	code, err := c.do(ctx, http.MethodGet, "/customers", nil, &raw)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, statusError("/customers", code)
	}
	customers, err := decodeCustomers(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrBank, err)
	}
	return customers, nil
}

// Status calls /health. It never fails; problems are reported as disconnected.
func (c *Client) Status(ctx context.Context) models.ServiceStatus {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	status := models.ServiceStatus{URL: c.baseURL, Timestamp: c.now().UTC()}
	var data map[string]any
	code, err := c.do(ctx, http.MethodGet, "/health", nil, &data)
	switch {
	case err != nil:
		status.Status = models.StatusDisconnected
		status.Error = err.Error()
	case code != http.StatusOK:
		status.Status = models.StatusDisconnected
		status.Error = fmt.Sprintf("HTTP %d", code)
	default:
		status.Status = models.StatusConnected
		status.Data = data
	}
	return status
}
