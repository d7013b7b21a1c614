package course

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestCredits_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Credits
	}{
		{"number", `3`, 3},
		{"fraction", `1.5`, 1.5},
		{"string", `"2"`, 2},
		{"padded string", `" 4 "`, 4},
		{"non numeric", `"N/A"`, 0},
		{"empty string", `""`, 0},
		{"null", `null`, 0},
		{"nan string", `"NaN"`, 0},
		{"infinity string", `"Infinity"`, 0},
		{"negative inf string", `"-Inf"`, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var c Credits
			if err := json.Unmarshal([]byte(tc.raw), &c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c != tc.want {
				t.Errorf("got %v, want %v", c, tc.want)
			}
		})
	}
}

func TestCredits_MarshalNonFinite(t *testing.T) {
	data, err := json.Marshal(struct {
		Credits Credits `json:"credits"`
	}{Credits(math.NaN())})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"credits":0}` {
		t.Errorf("got %s", data)
	}
}

func TestCourse_DecodeCatalogEntry(t *testing.T) {
	raw := `{
		"id": "CS101-王",
		"name": "程式設計",
		"teacher": "王",
		"department": "CS",
		"code": "101",
		"credits": "3",
		"time": {"Mon": ["1", " 2 ", ""], "Sun": ["3"]}
	}`

	var c Course
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if c.Credits != 3 {
		t.Errorf("credits = %v, want 3", c.Credits)
	}
	if got := len(c.Time[Mon]); got != 2 {
		t.Errorf("expected 2 Monday periods after trimming, got %d", got)
	}
	if got := c.Time.Slots(); len(got) != 2 {
		t.Errorf("Sunday must not produce slots, got %v", got)
	}
	if c.RegistrationCode() != "CS101" {
		t.Errorf("RegistrationCode() = %q", c.RegistrationCode())
	}
	if c.DepartmentName() != "資訊工程學系" {
		t.Errorf("DepartmentName() = %q", c.DepartmentName())
	}
}

func TestCourse_DetailURL(t *testing.T) {
	c := &Course{Department: "EE", Code: "205"}
	p := QueryParams{OpenYear: "114", Helf: "2"}

	got := c.DetailURL("", p)
	want := "https://course.nuk.edu.tw/QueryCourse/tcontent.asp?OpenYear=114&Helf=2&Sclass=EE&Cono=205"
	if got != want {
		t.Errorf("DetailURL() = %q, want %q", got, want)
	}

	if got := c.DetailURL("x/{dept}/{code}?y={year}", p); got != "x/EE/205?y=114" {
		t.Errorf("custom template gave %q", got)
	}
}

func TestNewCatalog_FirstIDWins(t *testing.T) {
	first := &Course{ID: "A", Name: "first"}
	second := &Course{ID: "A", Name: "second"}
	other := &Course{ID: "B"}

	cat, dups := NewCatalog(QueryParams{}, []*Course{first, nil, second, other})
	if cat.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cat.Len())
	}
	if cat.Get("A") != first {
		t.Error("expected the first course with id A to win")
	}
	if len(dups) != 1 || dups[0] != "A" {
		t.Errorf("dups = %v, want [A]", dups)
	}
	if _, err := cat.Lookup("missing"); !errors.Is(err, ErrUnknownCourse) {
		t.Errorf("expected ErrUnknownCourse, got %v", err)
	}
}
