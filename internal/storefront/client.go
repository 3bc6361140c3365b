// Package storefront is the client side of the marketplace: a typed API
// client plus the state container a UI renders from.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/domain/order"
	"marketplace/internal/domain/product"
	"marketplace/internal/domain/shop"
	"marketplace/internal/domain/user"
)

// APIError is a non-2xx reply decoded from the error envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return fmt.Sprintf("api %d: %s", e.Status, e.Message) }

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Client struct {
	base        string
	http        *http.Client
	userToken   string
	sellerToken string
}

// NewClient targets baseURL, e.g. http://localhost:8000/api/v2.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) SetUserToken(tok string)   { c.userToken = tok }
func (c *Client) SetSellerToken(tok string) { c.sellerToken = tok }

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var env struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&env)
		if env.Message == "" {
			env.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Login authenticates a buyer and keeps the session token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (user.User, error) {
	var out struct {
		User  user.User `json:"user"`
		Token string    `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/user/login-user", "", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return user.User{}, err
	}
	c.userToken = out.Token
	return out.User, nil
}

func (c *Client) LoginShop(ctx context.Context, email, password string) (shop.Shop, error) {
	var out struct {
		Seller shop.Shop `json:"seller"`
		Token  string    `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/shop/login-shop", "", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return shop.Shop{}, err
	}
	c.sellerToken = out.Token
	return out.Seller, nil
}

func (c *Client) LoadUser(ctx context.Context) (user.User, error) {
	var out struct {
		User user.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/user/getuser", c.userToken, nil, &out)
	return out.User, err
}

func (c *Client) LoadSeller(ctx context.Context) (shop.Shop, error) {
	var out struct {
		Seller shop.Shop `json:"seller"`
	}
	err := c.do(ctx, http.MethodGet, "/shop/getSeller", c.sellerToken, nil, &out)
	return out.Seller, err
}

func (c *Client) AllProducts(ctx context.Context) ([]product.Product, error) {
	var out struct {
		Products []product.Product `json:"products"`
	}
	err := c.do(ctx, http.MethodGet, "/product/get-all-products", "", nil, &out)
	return out.Products, err
}

func (c *Client) CreateOrder(ctx context.Context, co order.Checkout) ([]order.Order, error) {
	var out struct {
		Orders []order.Order `json:"orders"`
	}
	err := c.do(ctx, http.MethodPost, "/order/create-order", c.userToken, co, &out)
	return out.Orders, err
}
