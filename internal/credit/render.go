package credit

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/fatih/color"
)

var (
	colorTitle   = color.New(color.Bold)
	colorGood    = color.New(color.FgGreen)
	colorBad     = color.New(color.FgRed)
	colorFailed  = color.New(color.FgRed, color.Faint)
	colorMuted   = color.New(color.FgWhite, color.Faint)
	colorWarning = color.New(color.FgYellow)
)

const (
	requiredGroup = "必修"
	electiveGroup = "選修"
)

// Render writes the report for a terminal. Failed or dropped rows are
// highlighted.
func Render(w io.Writer, r *Report) error {
	p := &printer{w: w}
	p.deficit(r.Deficit)
	p.categories(r.Categorized)
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) deficit(d *DeficitAnalysis) {
	if d == nil {
		return
	}
	if !d.OK() {
		if d.Message != "" {
			p.printf("%s\n  %s\n\n", colorTitle.Sprint("學分缺額分析"), colorWarning.Sprint(d.Message))
		}
		return
	}

	p.printf("%s\n", colorTitle.Sprintf("學分缺額分析 - %s", d.Department))
	for _, name := range d.Details.Names {
		item := d.Details.ByName[name]
		state := colorGood.Sprint(item.State)
		if item.Missing > 0 {
			state = colorBad.Sprint(item.State)
		}
		p.printf("  %s 需要 %4s  已修 %4s  %s\n", pad(name, 16), num(item.Required), num(item.Earned), state)
	}

	s := d.Summary
	missing := colorGood.Sprintf("缺額 %s 學分", num(s.Missing))
	if s.Missing > 0 {
		missing = colorBad.Sprintf("缺額 %s 學分", num(s.Missing))
	}
	p.printf("\n  總學分狀況：需求 %s 學分  已修 %s 學分  %s\n", num(s.Required), num(s.Earned), missing)
	if s.GraduateState != "" {
		if s.Eligible() {
			p.printf("  %s\n", colorGood.Sprint(s.GraduateState))
		} else {
			p.printf("  %s\n", colorBad.Sprint(s.GraduateState))
		}
	}

	if len(d.Recommendations) > 0 {
		p.printf("\n  %s\n", colorTitle.Sprint("修課建議"))
		for _, rec := range d.Recommendations {
			p.printf("  • %s\n", rec)
		}
	}
	p.printf("\n")
}

func (p *printer) categories(c Categories) {
	if len(c.Names) == 0 {
		p.printf("%s\n", colorMuted.Sprint("沒有找到成績資料。"))
		return
	}
	for _, name := range c.Names {
		cat := c.ByName[name]
		if cat.Hierarchical() {
			p.hierarchical(name, cat)
		} else {
			p.printf("%s\n", colorTitle.Sprintf("%s (已獲學分: %.1f)", name, cat.Earned))
			p.table(cat.Courses, true)
		}
		p.printf("\n")
	}
}

func (p *printer) hierarchical(name string, cat *Category) {
	p.printf("%s\n", colorTitle.Sprintf("%s (總計已獲學分: %.1f)", name, cat.Earned))
	for _, subName := range cat.SubcategoryNames() {
		sub := cat.Subcategories[subName]
		if sub.Empty() {
			continue
		}
		p.printf("  %s (已獲學分: %.1f)\n", subName, sub.Earned())
		for _, g := range []struct {
			label string
			group Group
		}{{requiredGroup, sub.Required}, {electiveGroup, sub.Elective}} {
			if len(g.group.Courses) == 0 {
				continue
			}
			p.printf("    %s\n", colorMuted.Sprintf("%s (%.1f學分)", g.label, g.group.Earned))
			p.table(g.group.Courses, false)
		}
	}
}

func (p *printer) table(rows []Row, withType bool) {
	header := []string{pad("課號", 10), pad("課程名稱", 28), pad("學分數", 6)}
	if withType {
		header = append(header, pad("修別", 6))
	}
	header = append(header, pad("期中成績", 8), pad("學期成績", 8), "備註")
	p.printf("    %s\n", colorMuted.Sprint(strings.Join(header, " ")))

	for _, r := range rows {
		cells := []string{pad(string(r.ID), 10), pad(string(r.Name), 28), pad(string(r.Credits), 6)}
		if withType {
			cells = append(cells, pad(string(r.Type), 6))
		}
		cells = append(cells, pad(string(r.Midterm), 8), pad(string(r.Final), 8), string(r.Remark))
		line := strings.Join(cells, " ")
		if r.Failed() {
			line = colorFailed.Sprint(line)
		}
		p.printf("    %s\n", line)
	}
}

// pad right-pads s to width display cells, truncating when longer.
func pad(s string, width int) string {
	w := ansi.StringWidth(s)
	if w > width {
		s = ansi.Truncate(s, width, "…")
		w = ansi.StringWidth(s)
	}
	return s + strings.Repeat(" ", width-w)
}

func num(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", f), "0"), ".")
}
