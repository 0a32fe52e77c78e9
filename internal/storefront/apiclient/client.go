// Package apiclient is the storefront's HTTP client for the pharmacy API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WithHTTPClient swaps the underlying client, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
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
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	logging.FromContext(ctx).Debug("api_call", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode >= 300 {
		var msg transport.MessageResponse
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return apperr.FromStatus(resp.StatusCode, msg.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, req transport.RegisterRequest) (*transport.RegisterResponse, error) {
	var out transport.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*transport.LoginResponse, error) {
	var out transport.LoginResponse
	req := transport.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", token, nil, nil)
}

func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Product(ctx context.Context, id int) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+strconv.Itoa(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, req transport.CreateProductRequest) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodPost, "/api/products", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token string, id int, req transport.PatchProductRequest) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodPut, "/api/products/"+strconv.Itoa(id), token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+strconv.Itoa(id), token, nil, nil)
}

// IsAuthError reports whether err means the stored token is no longer usable.
func IsAuthError(err error) bool {
	return errors.Is(err, apperr.ErrUnauthenticated)
}
