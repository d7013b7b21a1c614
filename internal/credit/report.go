// Package credit fetches and renders the graduation credit analysis.
package credit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Report is the payload of a successful analysis.
type Report struct {
	Deficit     *DeficitAnalysis `json:"deficit_analysis"`
	Categorized Categories       `json:"categorized_credits"`
}

// DeficitAnalysis compares earned credits with the department's requirement.
type DeficitAnalysis struct {
	Status          string         `json:"status"`
	Message         string         `json:"message"`
	Department      string         `json:"department"`
	Details         DeficitDetails `json:"deficit_details"`
	Summary         TotalSummary   `json:"total_summary"`
	Recommendations []string       `json:"recommendations"`
}

// OK reports whether the deficit analysis ran.
func (d *DeficitAnalysis) OK() bool {
	return d != nil && d.Status == "success"
}

// Deficit is one requirement category.
type Deficit struct {
	Required float64 `json:"需要"`
	Earned   float64 `json:"已修"`
	Missing  float64 `json:"缺額"`
	State    string  `json:"狀態"`
}

// DeficitDetails keeps categories in the order the backend sent them.
type DeficitDetails struct {
	Names  []string
	ByName map[string]Deficit
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DeficitDetails) UnmarshalJSON(data []byte) error {
	names, err := objectKeys(data)
	if err != nil {
		return err
	}
	byName := make(map[string]Deficit, len(names))
	if err := json.Unmarshal(data, &byName); err != nil {
		return err
	}
	d.Names, d.ByName = names, byName
	return nil
}

// TotalSummary is the overall graduation status.
type TotalSummary struct {
	Required      float64 `json:"總需求學分"`
	Earned        float64 `json:"目前總學分"`
	Missing       float64 `json:"總缺額"`
	CategorySum   float64 `json:"各類別缺額合計"`
	GraduateState string  `json:"畢業狀態"`
}

// Eligible reports whether the summary says the student can graduate.
func (s TotalSummary) Eligible() bool {
	return strings.Contains(s.GraduateState, "符合") && !strings.Contains(s.GraduateState, "不符合")
}

// Category groups transcript rows. Hierarchical categories carry
// subcategories instead of a flat course list.
type Category struct {
	Earned        float64                `json:"earned_credits"`
	Courses       []Row                  `json:"courses"`
	Subcategories map[string]Subcategory `json:"subcategories"`
	subNames      []string
}

// SubcategoryNames returns subcategory names in source order.
func (c *Category) SubcategoryNames() []string {
	return c.subNames
}

// Hierarchical reports whether the category is split into subcategories.
func (c *Category) Hierarchical() bool {
	return len(c.Subcategories) > 0
}

// Subcategory splits rows into required (必修) and elective (選修).
type Subcategory struct {
	Required Group `json:"必修"`
	Elective Group `json:"選修"`
}

// Earned returns the credits earned across both groups.
func (s Subcategory) Earned() float64 {
	return s.Required.Earned + s.Elective.Earned
}

// Empty reports whether the subcategory has nothing to show.
func (s Subcategory) Empty() bool {
	return s.Earned() == 0 && len(s.Required.Courses) == 0 && len(s.Elective.Courses) == 0
}

// Group is a list of rows with their earned credit total.
type Group struct {
	Earned  float64 `json:"earned_credits"`
	Courses []Row   `json:"courses"`
}

// Categories keeps categories in source order.
type Categories struct {
	Names  []string
	ByName map[string]*Category
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Categories) UnmarshalJSON(data []byte) error {
	names, err := objectKeys(data)
	if err != nil {
		return err
	}
	raw := make(map[string]json.RawMessage, len(names))
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	byName := make(map[string]*Category, len(names))
	for name, msg := range raw {
		var cat Category
		if err := json.Unmarshal(msg, &cat); err != nil {
			return fmt.Errorf("category %s: %w", name, err)
		}
		var sub struct {
			Subcategories json.RawMessage `json:"subcategories"`
		}
		if err := json.Unmarshal(msg, &sub); err == nil && len(sub.Subcategories) > 0 && string(sub.Subcategories) != "null" {
			if cat.subNames, err = objectKeys(sub.Subcategories); err != nil {
				return fmt.Errorf("category %s: %w", name, err)
			}
		}
		byName[name] = &cat
	}
	c.Names, c.ByName = names, byName
	return nil
}

// Row is one transcript line.
type Row struct {
	ID      Text `json:"id"`
	Name    Text `json:"name"`
	Credits Text `json:"credits"`
	Type    Text `json:"type"`
	Midterm Text `json:"midterm_score"`
	Final   Text `json:"final_score"`
	Remark  Text `json:"remark"`
}

// Failed reports whether the row was dropped or failed.
func (r Row) Failed() bool {
	if strings.Contains(string(r.Remark), "棄選") {
		return true
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(string(r.Final)), 64)
	return err == nil && score < 60
}

// Text decodes a JSON string or number into its textual form.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(data)
	}
	return nil
}

// objectKeys returns the top-level keys of a JSON object in order.
func objectKeys(data []byte) ([]string, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
