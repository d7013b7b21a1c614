package course

import (
	"sort"
	"strings"
)

// Filter selects courses by department and free-text search.
type Filter struct {
	Search     string // matched against name, teacher and code
	Department string // exact department code, empty for all
}

// Match reports whether c passes the filter.
func (f Filter) Match(c *Course) bool {
	if f.Department != "" && c.Department != f.Department {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), term) ||
		strings.Contains(strings.ToLower(c.Teacher), term) ||
		strings.Contains(strings.ToLower(c.Code), term)
}

// Apply returns the courses passing the filter, preserving order.
func (f Filter) Apply(courses []*Course) []*Course {
	out := make([]*Course, 0, len(courses))
	for _, c := range courses {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// Departments returns the distinct department codes of courses, sorted by
// display name.
func Departments(courses []*Course) []string {
	seen := make(map[string]bool)
	var depts []string
	for _, c := range courses {
		if seen[c.Department] {
			continue
		}
		seen[c.Department] = true
		depts = append(depts, c.Department)
	}
	sort.SliceStable(depts, func(i, j int) bool {
		ni, nj := DepartmentName(depts[i]), DepartmentName(depts[j])
		if ni != nj {
			return ni < nj
		}
		return depts[i] < depts[j]
	})
	return depts
}
