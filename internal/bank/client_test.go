package bank

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/models"
)

func newTestBank(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second)
}

func TestRegisterCustomer(t *testing.T) {
	var got Customer
	client := newTestBank(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/register-customer" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"customer_oid": "bank-oid-1"})
	})

	oid, err := client.RegisterCustomer(context.Background(), "John Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oid != "bank-oid-1" {
		t.Errorf("expected oid from bank, got %q", oid)
	}
	if got.Name != "John Doe" || got.CustomerOID == "" {
		t.Errorf("unexpected registration payload: %+v", got)
	}
}

func TestRegisterCustomerFailures(t *testing.T) {
	client := newTestBank(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if _, err := client.RegisterCustomer(context.Background(), "x"); !errors.Is(err, apperrors.ErrBank) {
		t.Errorf("expected ErrBank, got %v", err)
	}

	unreachable := NewClient("http://127.0.0.1:1", time.Second)
	if _, err := unreachable.RegisterCustomer(context.Background(), "x"); !errors.Is(err, apperrors.ErrBankUnavailable) {
		t.Errorf("expected ErrBankUnavailable, got %v", err)
	}
}

func TestGetPortfolio(t *testing.T) {
	client := newTestBank(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user-portfolio/known":
			w.Write([]byte(`{"user":{"name":"John Doe"},"assets":[{"type":"stock"}],"risk_score":7}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	p, err := client.GetPortfolio(context.Background(), "known")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Assets == nil || p.Extra["risk_score"] == nil {
		t.Errorf("expected known and extra sections, got %+v", p)
	}

	out, _ := json.Marshal(p)
	var roundTrip map[string]any
	json.Unmarshal(out, &roundTrip)
	if _, ok := roundTrip["risk_score"]; !ok {
		t.Errorf("extra keys lost on output: %s", out)
	}
	if _, ok := roundTrip["derivatives"]; ok {
		t.Errorf("absent sections should be omitted: %s", out)
	}

	if _, err := client.GetPortfolio(context.Background(), "unknown"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCustomerExists(t *testing.T) {
	client := newTestBank(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/customer/yes/exists":
			w.Write([]byte(`{"exists": true}`))
		case "/customer/no/exists":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	})

	tests := []struct {
		oid     string
		want    bool
		wantErr bool
	}{
		{"yes", true, false},
		{"no", false, false},
		{"broken", false, true},
	}
	for _, tt := range tests {
		got, err := client.CustomerExists(context.Background(), tt.oid)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("CustomerExists(%q) = %t, %v", tt.oid, got, err)
		}
	}
}

func TestDeleteCustomer(t *testing.T) {
	client := newTestBank(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method %s", r.Method)
		}
		switch r.URL.Path {
		case "/customer/gone":
			w.Write([]byte(`{"message": "Customer deleted"}`))
		case "/customer/empty":
			w.WriteHeader(http.StatusNoContent)
		case "/customer/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	tests := []struct {
		oid     string
		wantErr error
	}{
		{"gone", nil},
		{"empty", nil},
		{"missing", apperrors.ErrNotFound},
		{"broken", apperrors.ErrBank},
	}
	for _, tt := range tests {
		err := client.DeleteCustomer(context.Background(), tt.oid)
		if tt.wantErr == nil && err != nil {
			t.Errorf("DeleteCustomer(%q): unexpected error: %v", tt.oid, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("DeleteCustomer(%q): expected %v, got %v", tt.oid, tt.wantErr, err)
		}
	}
}

func TestListCustomers(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"customer_oid":"a"},{"customer_oid":"b"}]`},
		{"wrapped", `{"customers":[{"customer_oid":"a"},{"customer_oid":"b"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestBank(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			customers, err := client.ListCustomers(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(customers) != 2 || customers[1]["customer_oid"] != "b" {
				t.Errorf("unexpected customers: %+v", customers)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	up := newTestBank(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	if s := up.Status(context.Background()); s.Status != models.StatusConnected || s.Data["status"] != "ok" {
		t.Errorf("expected connected, got %+v", s)
	}

	failing := newTestBank(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if s := failing.Status(context.Background()); s.Status != models.StatusDisconnected || s.Error == "" {
		t.Errorf("expected disconnected with error, got %+v", s)
	}

	down := NewClient("http://127.0.0.1:1", time.Second)
	if s := down.Status(context.Background()); s.Connected() || s.URL != "http://127.0.0.1:1" {
		t.Errorf("expected disconnected, got %+v", s)
	}
}
