// Package course defines the catalog domain types for coursegrid.
package course

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Domain errors.
var (
	ErrUnknownCourse = errors.New("course not found in catalog")
	ErrUnknownDay    = errors.New("unknown weekday")
	ErrUnknownPeriod = errors.New("unknown period")
)

// Credits is a credit count that decodes from either a JSON number or a
// numeric string. Anything non-numeric decodes to zero.
type Credits float64

// UnmarshalJSON implements json.Unmarshaler.
func (c *Credits) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*c = 0
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*c = 0
		return nil
	}
	*c = Credits(v)
	return nil
}

// MarshalJSON writes the credit count as a plain number. Non-finite values
// are written as 0.
func (c Credits) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatFloat(float64(c), 'f', -1, 64)), nil
}

// String formats the credit count without trailing zeros.
func (c Credits) String() string {
	return strconv.FormatFloat(float64(c), 'f', -1, 64)
}

// Course is a single catalog offering. Courses are immutable once loaded.
type Course struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Teacher       string   `json:"teacher"`
	Department    string   `json:"department"`
	Code          string   `json:"code"`
	Credits       Credits  `json:"credits"`
	Limit         string   `json:"limit"`
	Classroom     string   `json:"classroom"`
	Prerequisites string   `json:"prerequisites"`
	Note          string   `json:"note"`
	Time          TimeSpec `json:"time"`
}

// RegistrationCode is the code students type into the enrollment system.
func (c *Course) RegistrationCode() string {
	return c.Department + c.Code
}

// DepartmentName returns the display name of the course's department.
func (c *Course) DepartmentName() string {
	return DepartmentName(c.Department)
}

// QueryParams are the catalog query parameters echoed by the catalog source.
// They only feed the external detail-page link.
type QueryParams struct {
	OpenYear string `json:"OpenYear"`
	Helf     string `json:"Helf"`
}

// DefaultDetailURL is the syllabus page template. Placeholders: {year},
// {term}, {dept}, {code}.
const DefaultDetailURL = "https://course.nuk.edu.tw/QueryCourse/tcontent.asp?OpenYear={year}&Helf={term}&Sclass={dept}&Cono={code}"

// DetailURL expands a detail-page template for the course.
func (c *Course) DetailURL(template string, p QueryParams) string {
	if template == "" {
		template = DefaultDetailURL
	}
	r := strings.NewReplacer(
		"{year}", p.OpenYear,
		"{term}", p.Helf,
		"{dept}", c.Department,
		"{code}", c.Code,
	)
	return r.Replace(template)
}

// Catalog is the in-memory course list for one session.
type Catalog struct {
	Params  QueryParams
	courses []*Course
	byID    map[string]*Course
}

// NewCatalog builds a catalog. When ids repeat, the first course wins and the
// duplicates are returned so the caller can report them.
func NewCatalog(params QueryParams, courses []*Course) (*Catalog, []string) {
	c := &Catalog{
		Params: params,
		byID:   make(map[string]*Course, len(courses)),
	}
	var dups []string
	for _, crs := range courses {
		if crs == nil {
			continue
		}
		if _, ok := c.byID[crs.ID]; ok {
			dups = append(dups, crs.ID)
			continue
		}
		c.byID[crs.ID] = crs
		c.courses = append(c.courses, crs)
	}
	return c, dups
}

// Courses returns the catalog in source order.
func (c *Catalog) Courses() []*Course {
	return c.courses
}

// Len returns the number of courses.
func (c *Catalog) Len() int {
	return len(c.courses)
}

// Get returns the course with the given id, or nil.
func (c *Catalog) Get(id string) *Course {
	return c.byID[id]
}

// Lookup returns the course with the given id or ErrUnknownCourse.
func (c *Catalog) Lookup(id string) (*Course, error) {
	crs, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCourse, id)
	}
	return crs, nil
}
