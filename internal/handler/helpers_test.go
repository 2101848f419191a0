package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ecopantry/ecopantry/internal/chat"
)

func TestCheckReportsJSONFieldNames(t *testing.T) {
	tests := []struct {
		name string
		req  any
		want string
	}{
		{"required", &foodItemRequest{Quantity: 1}, "name is required"},
		{"gt", &foodItemRequest{Name: "Milk"}, "quantity must be greater than 0"},
		{"oneof", &foodItemRequest{Name: "Milk", Quantity: 1, Unit: "cups"}, "unit must be one of: pieces kg g l ml lbs oz"},
		{"dive", &chatRequest{History: []chat.Message{{Role: "robot"}}}, "role must be one of: system user assistant"},
		{"max", &chatRequest{History: make([]chat.Message, 51)}, "history is too long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if check(rec, tt.req) {
				t.Fatal("expected validation failure")
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var body map[string]string
			json.NewDecoder(rec.Body).Decode(&body)
			if body["error"] != tt.want {
				t.Errorf("error = %q, want %q", body["error"], tt.want)
			}
		})
	}
}

func TestChatRequestAllowsEmptyHistory(t *testing.T) {
	for _, req := range []*chatRequest{{}, {History: []chat.Message{}}} {
		rec := httptest.NewRecorder()
		if !check(rec, req) {
			t.Errorf("history %v rejected: %s", req.History, rec.Body.String())
		}
	}
}

func TestFoodItemRequestDefaults(t *testing.T) {
	in := foodItemRequest{Name: "Cheddar cheese", Quantity: 1}.input()
	if in.Category != "dairy" {
		t.Errorf("category = %q, want dairy", in.Category)
	}
	if in.Unit != "pieces" || in.Location != "pantry" {
		t.Errorf("defaults = %q/%q", in.Unit, in.Location)
	}

	in = foodItemRequest{Name: "Cheddar", Category: "snacks", Quantity: 1}.input()
	if in.Category != "snacks" {
		t.Errorf("explicit category overwritten: %q", in.Category)
	}
}

func TestDecodeRejectsBadJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", strings.NewReader("{nope"))
	var dst foodItemRequest
	if decode(rec, req, &dst) {
		t.Fatal("expected decode failure")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestIntQuery(t *testing.T) {
	tests := []struct {
		url     string
		want    int
		wantErr bool
	}{
		{"/", 7, false},
		{"/?horizon=3", 3, false},
		{"/?horizon=0", 0, false},
		{"/?horizon=-1", 0, true},
		{"/?horizon=abc", 0, true},
	}
	for _, tt := range tests {
		got, err := intQuery(httptest.NewRequest("GET", tt.url, nil), "horizon", 7)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.url, got, tt.want)
		}
	}
}

func TestTrimPtr(t *testing.T) {
	blank := "   "
	if trimPtr(&blank) != nil {
		t.Error("blank string should become nil")
	}
	s := " note "
	if got := trimPtr(&s); got == nil || *got != "note" {
		t.Errorf("trimPtr = %v", got)
	}
	if trimPtr(nil) != nil {
		t.Error("nil should stay nil")
	}
}
