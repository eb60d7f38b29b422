package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestFloatUnmarshalAcceptsNumbersAndStrings(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{`{"amount": 12.5}`, 12.5},
		{`{"amount": "12.5"}`, 12.5},
		{`{"amount": 0}`, 0},
		{`{"amount": "  7 "}`, 7},
	}
	for _, tc := range cases {
		var body struct {
			Amount Float `json:"amount"`
		}
		if err := json.Unmarshal([]byte(tc.in), &body); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if !body.Amount.Valid || body.Amount.Value != tc.want {
			t.Fatalf("unmarshal %s = %+v, want value %v", tc.in, body.Amount, tc.want)
		}
	}
}

func TestFloatUnmarshalRejectsNonNumeric(t *testing.T) {
	for _, in := range []string{`{"amount": "abc"}`, `{"amount": true}`, `{"amount": []}`, `{"amount": ""}`} {
		var body struct {
			Amount Float `json:"amount"`
		}
		if err := json.Unmarshal([]byte(in), &body); err == nil {
			t.Fatalf("unmarshal %s succeeded, want error", in)
		}
	}
}

func TestFloatAbsentAndNull(t *testing.T) {
	for _, in := range []string{`{}`, `{"amount": null}`} {
		var body struct {
			Amount Float `json:"amount"`
		}
		if err := json.Unmarshal([]byte(in), &body); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if body.Amount.Valid {
			t.Fatalf("unmarshal %s marked the field present", in)
		}
		if body.Amount.ptr() != nil {
			t.Fatalf("ptr() for absent field should be nil")
		}
	}
}

func TestParseDateFormats(t *testing.T) {
	d, err := parseDate("2025-06-01")
	if err != nil {
		t.Fatalf("parseDate plain date: %v", err)
	}
	if d.Year() != 2025 || d.Month() != 6 || d.Day() != 1 {
		t.Fatalf("parseDate plain date = %v", d)
	}
	d, err = parseDate("2025-06-01T14:30:00Z")
	if err != nil {
		t.Fatalf("parseDate RFC3339: %v", err)
	}
	if d.Hour() != 14 || d.Minute() != 30 {
		t.Fatalf("parseDate RFC3339 = %v", d)
	}
	if _, err := parseDate("June 1st"); err == nil {
		t.Fatal("parseDate accepted garbage")
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{"Active", "Récoltée", "Abandonnée"} {
		if !validStatus(s) {
			t.Fatalf("validStatus(%q) = false", s)
		}
	}
	for _, s := range []string{"", "active", "Done", "récoltée"} {
		if validStatus(s) {
			t.Fatalf("validStatus(%q) = true", s)
		}
	}
}

func TestGetUserIDShapes(t *testing.T) {
	e := echo.New()
	for _, v := range []interface{}{uint64(9), int(9), int64(9), float64(9), "9"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.Set("user_id", v)
		got, err := getUserID(c)
		if err != nil || got != 9 {
			t.Fatalf("getUserID(%T) = %d, %v", v, got, err)
		}
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("user_id", "not-a-number")
	if _, err := getUserID(c); err == nil {
		t.Fatal("getUserID accepted a non-numeric string")
	}
}

func TestStatsWindowParsing(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/stats/overview?start=2025-05-01&end=2025-05-31", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	w, err := window(c)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if w.Start == nil || w.End == nil {
		t.Fatal("window bounds not set")
	}
	// End of 2025-05-31 must still be inside the window.
	endOfDay := w.End
	if endOfDay.Day() != 31 || endOfDay.Hour() != 23 {
		t.Fatalf("end bound = %v, want end of May 31", endOfDay)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/stats/overview?start=bogus", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	if _, err = window(c); err == nil {
		t.Fatal("window accepted a bogus start date")
	}
}
