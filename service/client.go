package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"redbus-cli/model"
)

const (
	defaultBaseURL = "http://localhost:8080/api"
	defaultTimeout = 12 * time.Second
)

// Client wraps HTTP access to the booking backend. All calls are single
// attempt: a failed request is surfaced to the caller as-is, never retried.
// Safe for concurrent use; commands run on their own goroutines.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logrus.Logger

	mu    sync.RWMutex
	token string
}

// APIError is returned when the backend responds with a non-2xx status.
// Body carries the error detail the backend wrote in the response.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "api error"
	}
	return fmt.Sprintf("api error: %s: %s", e.Status, e.Body)
}

// Message extracts the user-facing detail from an error: the response body
// for an APIError, the plain error text otherwise.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		return apiErr.Body
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsUnauthorized reports whether the error is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// NewClient creates a backend client. If httpClient is nil, a default client
// is used. A nil logger disables request logging.
func NewClient(httpClient *http.Client, baseURL string, logger *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// SetToken attaches a bearer credential to every subsequent request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken drops the bearer credential.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// HasToken reports whether a bearer credential is currently set.
func (c *Client) HasToken() bool {
	return c.bearer() != ""
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Me validates the current token and returns the authenticated user.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	return c.me(ctx, c.bearer())
}

// MeWithToken validates the given token without touching the client's
// stored credential.
func (c *Client) MeWithToken(ctx context.Context, token string) (model.User, error) {
	return c.me(ctx, token)
}

func (c *Client) me(ctx context.Context, token string) (model.User, error) {
	var user model.User
	if err := c.send(ctx, http.MethodGet, "/auth/me", nil, &user, token); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Login authenticates with the backend and returns the user plus token.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return model.AuthResponse{}, errors.New("username and password are required")
	}
	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return model.AuthResponse{}, err
	}
	return resp, nil
}

// Register creates an account and returns the user plus token.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return model.AuthResponse{}, errors.New("username and password are required")
	}
	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return model.AuthResponse{}, err
	}
	return resp, nil
}

// SearchBuses runs a public bus search. An empty result is not an error.
func (c *Client) SearchBuses(ctx context.Context, req model.SearchRequest) ([]model.BusOffer, error) {
	if strings.TrimSpace(req.Origin) == "" || strings.TrimSpace(req.Destination) == "" {
		return nil, errors.New("origin and destination are required")
	}
	if strings.TrimSpace(req.TravelDate) == "" {
		return nil, errors.New("travel date is required")
	}
	var offers []model.BusOffer
	if err := c.do(ctx, http.MethodPost, "/public/search", req, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// CreateBooking submits a booking for the given schedule and passengers.
func (c *Client) CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error) {
	if req.ScheduleId == 0 {
		return model.Booking{}, errors.New("schedule id is required")
	}
	if len(req.Passengers) == 0 {
		return model.Booking{}, errors.New("at least one passenger is required")
	}
	var booking model.Booking
	if err := c.do(ctx, http.MethodPost, "/bookings", req, &booking); err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

// ListBookings returns the authenticated user's bookings.
func (c *Client) ListBookings(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := c.do(ctx, http.MethodGet, "/bookings", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CancelBooking cancels a pending booking.
func (c *Client) CancelBooking(ctx context.Context, bookingID int64) (model.Booking, error) {
	if bookingID == 0 {
		return model.Booking{}, errors.New("booking id is required")
	}
	var booking model.Booking
	path := fmt.Sprintf("/bookings/%d/cancel", bookingID)
	if err := c.do(ctx, http.MethodPut, path, nil, &booking); err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

// CreatePayment submits payment for a booking.
func (c *Client) CreatePayment(ctx context.Context, req model.PaymentRequest) (model.Payment, error) {
	if req.BookingId == 0 {
		return model.Payment{}, errors.New("booking id is required")
	}
	var payment model.Payment
	if err := c.do(ctx, http.MethodPost, "/payments", req, &payment); err != nil {
		return model.Payment{}, err
	}
	return payment, nil
}

// ActiveBuses lists the buses currently reporting GPS samples.
func (c *Client) ActiveBuses(ctx context.Context) ([]model.TrackingSample, error) {
	var buses []model.TrackingSample
	if err := c.do(ctx, http.MethodGet, "/tracking/all-active", nil, &buses); err != nil {
		return nil, err
	}
	return buses, nil
}

// BusTracking returns the most recent GPS sample for a bus.
func (c *Client) BusTracking(ctx context.Context, busID int64) (model.TrackingSample, error) {
	if busID == 0 {
		return model.TrackingSample{}, errors.New("bus id is required")
	}
	var sample model.TrackingSample
	path := fmt.Sprintf("/tracking/bus/%d/current", busID)
	if err := c.do(ctx, http.MethodGet, path, nil, &sample); err != nil {
		return model.TrackingSample{}, err
	}
	return sample, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	return c.send(ctx, method, path, body, out, c.bearer())
}

func (c *Client) send(ctx context.Context, method string, path string, body any, out any, token string) error {
	endpoint := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
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

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logRequest(method, path, 0, start, err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()
	c.logRequest(method, path, res.StatusCode, start, nil)

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
		return &APIError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Endpoint:   endpoint,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) logRequest(method string, path string, status int, start time.Time, err error) {
	if c.logger == nil {
		return
	}
	fields := logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   status,
		"duration": time.Since(start).String(),
	}
	if err != nil {
		c.logger.WithFields(fields).WithError(err).Warn("request failed")
		return
	}
	c.logger.WithFields(fields).Debug("request")
}
