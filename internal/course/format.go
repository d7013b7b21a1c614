package course

import (
	"fmt"
	"strings"
)

// departmentNames maps department codes to display names.
var departmentNames = map[string]string{
	"MI": "通識微學分", "GR": "共同必修系列", "CC": "核心通識", "LI": "通識人文科學類",
	"SC": "通識自然科學類", "SO": "通識社會科學類", "CD": "全民國防教育類", "IN": "興趣選修",
	"WL": "西洋語文學系", "KH": "運動健康與休閒學系", "CCD": "工藝與創意設計學系", "DA": "建築學系",
	"CDA": "創意設計與建築學系", "EL": "東亞語文學系", "DAP": "運動競技學系", "CHS": "人文社會科學院共同課程",
	"LA": "法律學系", "GL": "政治法律學系", "FL": "財經法律學系", "CCL": "法學院共同課程",
	"AE": "應用經濟學系", "FI": "財務金融學系", "IM": "資訊管理學系", "CCM": "管理學院共同課程",
	"AM": "應用數學系", "AC": "應用化學系", "AP": "應用物理學系", "CCS": "理學院共同課程",
	"EE": "電機工程學系", "CE": "土木與環境工程學系", "CS": "資訊工程學系", "CM": "化學工程及材料工程學系",
	"CCE": "工學院共同課程", "LS": "生命科學系", "AB": "亞太工商管理學系", "ISP": "國際學生系",
	"CPP": "華語先修班", "FIN": "財務金融學系(停用)", "IFD": "創新學院不分系",
}

// DepartmentName returns the display name for a department code, or the
// code itself when it is not in the table.
func DepartmentName(code string) string {
	if n, ok := departmentNames[code]; ok {
		return n
	}
	return code
}

// FormatTime renders a time spec as "一[1,2] 三[3]". Sunday is included
// since it is informative even though it never reaches the grid.
func FormatTime(t TimeSpec) string {
	var parts []string
	for _, d := range allDays {
		ps := t[d]
		if len(ps) == 0 {
			continue
		}
		tags := make([]string, len(ps))
		for i, p := range ps {
			tags[i] = string(p)
		}
		parts = append(parts, fmt.Sprintf("%s[%s]", d.Local(), strings.Join(tags, ",")))
	}
	if len(parts) == 0 {
		return "時間未定"
	}
	return strings.Join(parts, " ")
}
