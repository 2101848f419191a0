package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-03-09", "2024-03-09", false},
		{" 2024-03-09 ", "2024-03-09", false},
		{"2024-03-09T23:30:00.000Z", "2024-03-09", false},
		{"03/09/2024", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got.String() != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDateOfKeepsLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	late := time.Date(2024, 3, 9, 23, 0, 0, 0, loc)
	if got := DateOf(late).String(); got != "2024-03-09" {
		t.Errorf("DateOf = %s, want 2024-03-09", got)
	}
	if got := DateOf(late).AddDays(-10).String(); got != "2024-02-28" {
		t.Errorf("AddDays = %s, want 2024-02-28", got)
	}
}

func TestDateJSON(t *testing.T) {
	var item struct {
		Expiry *Date `json:"expiry_date"`
	}
	if err := json.Unmarshal([]byte(`{"expiry_date":"2024-12-31"}`), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"expiry_date":"2024-12-31"}` {
		t.Errorf("marshal = %s", out)
	}

	if err := json.Unmarshal([]byte(`{"expiry_date":null}`), &item); err != nil || item.Expiry != nil {
		t.Errorf("null date = %v, %v", item.Expiry, err)
	}
}
