package credit

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

const successBody = `{
	"status": "success",
	"message": "分析完成",
	"data": {
		"deficit_analysis": {
			"status": "success",
			"department": "資訊工程學系",
			"deficit_details": {
				"系必修": {"需要": 60, "已修": 54, "缺額": 6, "狀態": "尚缺 6 學分"},
				"核心通識": {"需要": 12, "已修": 12, "缺額": 0, "狀態": "已完成"}
			},
			"total_summary": {"總需求學分": 128, "目前總學分": 110, "總缺額": 18, "各類別缺額合計": 6, "畢業狀態": "不符合畢業資格"},
			"recommendations": ["補修系必修 6 學分"]
		},
		"categorized_credits": {
			"系必修": {
				"earned_credits": 54,
				"courses": [
					{"id": "CS101", "name": "程式設計", "credits": 3, "type": "必修", "midterm_score": "80", "final_score": "85", "remark": ""},
					{"id": "CS202", "name": "演算法", "credits": "3", "type": "必修", "midterm_score": 40, "final_score": 55, "remark": ""}
				]
			},
			"核心通識": {
				"earned_credits": 12,
				"subcategories": {
					"人文": {"必修": {"earned_credits": 2, "courses": [{"id": "GE1", "name": "哲學", "credits": 2, "midterm_score": "", "final_score": "70", "remark": ""}]},
					         "選修": {"earned_credits": 0, "courses": []}},
					"空白": {"必修": {"earned_credits": 0, "courses": []}, "選修": {"earned_credits": 0, "courses": []}}
				}
			}
		}
	}
}`

func newBackend(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/start-credit-analysis" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyze_Success(t *testing.T) {
	srv := newBackend(t, successBody, http.StatusOK)

	res, err := NewClient(srv.URL, time.Second, nil).Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if res.Message != "分析完成" {
		t.Errorf("unexpected message %q", res.Message)
	}

	d := res.Report.Deficit
	if !d.OK() {
		t.Fatal("expected successful deficit analysis")
	}
	if !reflect.DeepEqual(d.Details.Names, []string{"系必修", "核心通識"}) {
		t.Errorf("expected source order, got %v", d.Details.Names)
	}
	if d.Details.ByName["系必修"].Missing != 6 {
		t.Errorf("unexpected deficit %+v", d.Details.ByName["系必修"])
	}
	if d.Summary.Required != 128 || d.Summary.Eligible() {
		t.Errorf("unexpected summary %+v", d.Summary)
	}

	cats := res.Report.Categorized
	if !reflect.DeepEqual(cats.Names, []string{"系必修", "核心通識"}) {
		t.Errorf("expected category order, got %v", cats.Names)
	}
	core := cats.ByName["核心通識"]
	if !core.Hierarchical() {
		t.Fatal("expected 核心通識 to be hierarchical")
	}
	if !reflect.DeepEqual(core.SubcategoryNames(), []string{"人文", "空白"}) {
		t.Errorf("unexpected subcategory order %v", core.SubcategoryNames())
	}
	rows := cats.ByName["系必修"].Courses
	if rows[1].Credits != "3" || rows[1].Final != "55" {
		t.Errorf("expected numbers to decode as text, got %+v", rows[1])
	}
}

func TestAnalyze_Failures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		check  func(error) bool
	}{
		{
			name:   "backend error",
			body:   `{"status": "error", "message": "登入逾時"}`,
			status: http.StatusOK,
			check: func(err error) bool {
				var ae *AnalysisError
				return errors.As(err, &ae) && ae.Message == "登入逾時"
			},
		},
		{
			name:   "not json",
			body:   `<html>oops</html>`,
			status: http.StatusBadGateway,
			check:  func(err error) bool { return errors.Is(err, ErrRequest) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newBackend(t, tc.body, tc.status)
			_, err := NewClient(srv.URL, time.Second, nil).Analyze(context.Background())
			if !tc.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestRow_Failed(t *testing.T) {
	tests := []struct {
		row  Row
		want bool
	}{
		{Row{Final: "85"}, false},
		{Row{Final: "59.5"}, true},
		{Row{Final: "60"}, false},
		{Row{Final: "通過"}, false},
		{Row{Final: "90", Remark: "期中棄選"}, true},
	}

	for _, tc := range tests {
		if got := tc.row.Failed(); got != tc.want {
			t.Errorf("Failed(%+v) = %v, want %v", tc.row, got, tc.want)
		}
	}
}

func TestRender(t *testing.T) {
	color.NoColor = true
	srv := newBackend(t, successBody, http.StatusOK)
	res, err := NewClient(srv.URL, time.Second, nil).Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, &res.Report); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"學分缺額分析 - 資訊工程學系",
		"需求 128 學分",
		"缺額 18 學分",
		"不符合畢業資格",
		"補修系必修 6 學分",
		"系必修 (已獲學分: 54.0)",
		"核心通識 (總計已獲學分: 12.0)",
		"人文 (已獲學分: 2.0)",
		"演算法",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "空白") {
		t.Error("empty subcategories should be skipped")
	}
	if strings.Index(out, "系必修 (") > strings.Index(out, "核心通識 (") {
		t.Error("categories should render in source order")
	}
}

func TestRender_NoData(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	r := &Report{Deficit: &DeficitAnalysis{Status: "error", Message: "找不到系所"}}
	if err := Render(&buf, r); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "找不到系所") || !strings.Contains(buf.String(), "沒有找到成績資料") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
