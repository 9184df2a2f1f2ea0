package platform_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/YaganovValera/admin-console/internal/platform"
)

func TestUserCRUD(t *testing.T) {
	var deleted string
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/users/":
			var req platform.CreateUserRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(platform.User{ID: "u2", Email: req.Email, Role: "ADMIN", IsActive: true})
		case r.Method == http.MethodPut && r.URL.Path == "/users/u2":
			var req platform.UpdateUserRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Email != nil {
				t.Errorf("unset field email was sent: %v", *req.Email)
			}
			_ = json.NewEncoder(w).Encode(platform.User{ID: "u2", IsActive: *req.IsActive})
		case r.Method == http.MethodDelete && r.URL.Path == "/users/u2":
			deleted = "u2"
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))

	ctx := context.Background()

	created, err := client.CreateUser(ctx, platform.CreateUserRequest{Email: "ops@example.com", Password: "pw"})
	if err != nil || created.ID != "u2" {
		t.Fatalf("CreateUser = %+v, %v", created, err)
	}

	inactive := false
	updated, err := client.UpdateUser(ctx, "u2", platform.UpdateUserRequest{IsActive: &inactive})
	if err != nil || updated.IsActive {
		t.Fatalf("UpdateUser = %+v, %v", updated, err)
	}

	if err := client.DeleteUser(ctx, "u2"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if deleted != "u2" {
		t.Fatal("delete did not reach the backend")
	}
}

func TestAlertCRUD(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/alerts/":
			var req platform.CreateAlertRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.ConditionType != platform.ConditionPriceAbove {
				t.Errorf("condition_type = %q", req.ConditionType)
			}
			_ = json.NewEncoder(w).Encode(platform.Alert{
				ID: "a1", Symbol: req.Symbol,
				ConditionType: req.ConditionType, ConditionValue: req.ConditionValue,
				Timeframe: req.Timeframe, WebhookURL: req.WebhookURL,
				TriggerType: platform.TriggerOnce, IsActive: true,
			})
		case r.Method == http.MethodDelete && r.URL.Path == "/alerts/a1":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))

	ctx := context.Background()
	value := 1.1

	alert, err := client.CreateAlert(ctx, platform.CreateAlertRequest{
		Symbol:         "EURUSD",
		ConditionType:  platform.ConditionPriceAbove,
		ConditionValue: &value,
		Timeframe:      "M15",
		WebhookURL:     "https://hooks.example.com/x",
	})
	if err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}
	if alert.ID != "a1" || alert.ConditionValue == nil || *alert.ConditionValue != 1.1 {
		t.Fatalf("alert = %+v", alert)
	}

	if err := client.DeleteAlert(ctx, "a1"); err != nil {
		t.Fatalf("DeleteAlert: %v", err)
	}
}
