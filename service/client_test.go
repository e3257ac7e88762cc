package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"redbus-cli/model"
)

func newTestClient(server *httptest.Server) *Client {
	return NewClient(server.Client(), server.URL, nil)
}

func TestDo_Non2xxReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Seat already booked"))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.CreateBooking(context.Background(), model.BookingRequest{
		ScheduleId: 1,
		TravelDate: "2026-09-01",
		Passengers: []model.PassengerDetail{{SeatNumber: 3, PassengerName: "A", PassengerAge: 30, PassengerGender: "MALE"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", apiErr.StatusCode)
	}
	if got := Message(err); got != "Seat already booked" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestDo_SingleAttemptOnServerError(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))
	defer server.Close()

	client := newTestClient(server)
	if _, err := client.ListBookings(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestDo_BearerHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server)
	if _, err := client.ListBookings(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no Authorization header, got %q", gotAuth)
	}

	client.SetToken("tkn-123")
	if _, err := client.ListBookings(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tkn-123" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}

	client.ClearToken()
	if _, err := client.ListBookings(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected Authorization header cleared, got %q", gotAuth)
	}
}

func TestDo_ContentTypeOnlyWithBody(t *testing.T) {
	type seen struct {
		method      string
		path        string
		contentType string
	}
	var last seen
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = seen{method: r.Method, path: r.URL.Path, contentType: r.Header.Get("Content-Type")}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server)
	if _, err := client.SearchBuses(context.Background(), model.SearchRequest{
		Origin: "Bengaluru", Destination: "Chennai", TravelDate: "2026-09-01",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last.method != http.MethodPost || last.path != "/public/search" {
		t.Fatalf("unexpected request: %s %s", last.method, last.path)
	}
	if last.contentType != "application/json" {
		t.Fatalf("expected json content type, got %q", last.contentType)
	}

	if _, err := client.ListBookings(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last.method != http.MethodGet || last.path != "/bookings" {
		t.Fatalf("unexpected request: %s %s", last.method, last.path)
	}
	if last.contentType != "" {
		t.Fatalf("expected no content type on GET, got %q", last.contentType)
	}
}

func TestCancelBooking_UsesPutCancelEndpoint(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42, "status": "CANCELLED"}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	booking, err := client.CancelBooking(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != http.MethodPut || path != "/bookings/42/cancel" {
		t.Fatalf("unexpected request: %s %s", method, path)
	}
	if booking.Status != model.BookingCancelled {
		t.Fatalf("unexpected status: %q", booking.Status)
	}
}

func TestBusTracking_Endpoint(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"busId": 7, "busNumber": "KA-01-1234", "latitude": 12.97, "longitude": 77.59}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	sample, err := client.BusTracking(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/tracking/bus/7/current" {
		t.Fatalf("unexpected path: %s", path)
	}
	if sample.BusNumber != "KA-01-1234" {
		t.Fatalf("unexpected bus number: %q", sample.BusNumber)
	}
	if sample.SpeedKmh != nil {
		t.Fatalf("expected nil speed when absent, got %v", *sample.SpeedKmh)
	}
}

func TestSearchBuses_EmptyResultIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server)
	offers, err := client.SearchBuses(context.Background(), model.SearchRequest{
		Origin: "Pune", Destination: "Mumbai", TravelDate: "2026-09-01",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 0 {
		t.Fatalf("expected no offers, got %d", len(offers))
	}
}

func TestSearchBuses_RequiresRouteAndDate(t *testing.T) {
	client := NewClient(nil, "http://127.0.0.1:1", nil)
	if _, err := client.SearchBuses(context.Background(), model.SearchRequest{Destination: "B", TravelDate: "2026-09-01"}); err == nil {
		t.Fatal("expected error for missing origin")
	}
	if _, err := client.SearchBuses(context.Background(), model.SearchRequest{Origin: "A", Destination: "B"}); err == nil {
		t.Fatal("expected error for missing travel date")
	}
}

func TestMessage_PlainError(t *testing.T) {
	if got := Message(errors.New("dial tcp: connection refused")); got != "dial tcp: connection refused" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := Message(nil); got != "" {
		t.Fatalf("expected empty message for nil, got %q", got)
	}
}

func TestIsUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("token expired"))
	}))
	defer server.Close()

	client := newTestClient(server)
	client.SetToken("stale")
	_, err := client.Me(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if IsUnauthorized(errors.New("other")) {
		t.Fatal("plain error should not be unauthorized")
	}
}

func TestMeWithToken_LeavesStoredTokenUntouched(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 5, "username": "ravi"}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	user, err := client.MeWithToken(context.Background(), "tkn-x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tkn-x" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}
	if user.Username != "ravi" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if client.HasToken() {
		t.Fatal("expected stored token untouched")
	}
}

func TestClient_TokenSafeForConcurrentUse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 1}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			client.SetToken("a")
			client.ClearToken()
		}
	}()
	for i := 0; i < 25; i++ {
		if _, err := client.Me(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
			break
		}
	}
	<-done
}

func TestLogin_ParsesAuthResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 5, "username": "ravi", "firstName": "Ravi", "token": "tkn"}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	resp, err := client.Login(context.Background(), model.LoginRequest{Username: "ravi", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token != "tkn" {
		t.Fatalf("unexpected token: %q", resp.Token)
	}
	user := resp.User()
	if user.Id != 5 || user.Username != "ravi" || user.FirstName != "Ravi" {
		t.Fatalf("unexpected user: %+v", user)
	}
}
