// Package preview 生成屏幕预览：Markdown/HTML 简易视图，以及基于导出文档本身的原生视图。
package preview

import (
	"strings"

	"resume-docx-go/internal/constants"
	"resume-docx-go/internal/types"
)

// Markdown 按导出文档相同的章节顺序生成 Markdown 预览。
// 用户文本中的 ASCII 标点全部转义，不会被解释为 Markdown 或 HTML。
func Markdown(rec *types.ResumeRecord) string {
	if rec == nil {
		rec = types.NewResumeRecord()
	}

	var w mdWriter

	name := rec.Contact.Name
	if name == "" {
		name = constants.PlaceholderName
	}
	w.line("# " + escape(name))
	if contact := joinNonEmpty(" · ",
		rec.Contact.Phone, rec.Contact.Email, rec.Contact.Location,
		rec.Contact.LinkedIn, rec.Contact.GitHub); contact != "" {
		w.blank()
		w.line(contact)
	}

	if rec.Objective != "" {
		w.section(constants.TitleObjective)
		w.line(escape(rec.Objective))
	}

	if len(rec.Skills) > 0 {
		w.section(constants.TitleSkills)
		w.list(rec.Skills)
	}

	if len(rec.Certificates) > 0 {
		w.section(constants.TitleCertificates)
		w.list(rec.Certificates)
	}

	if len(rec.Education) > 0 {
		w.section(constants.TitleEducation)
		for _, e := range rec.Education {
			title := e.Institution
			if title == "" {
				title = e.Degree
			}
			w.blank()
			w.line("### " + escape(title))
			if e.Institution != "" && e.Degree != "" {
				w.blank()
				w.line("*" + escape(e.Degree) + "*")
			}
			if meta := joinNonEmpty(" · ", e.Dates, e.Location); meta != "" {
				w.blank()
				w.line(meta)
			}
			w.list(e.Details)
		}
	}

	if len(rec.Experience) > 0 {
		w.section(constants.TitleExperience)
		for _, e := range rec.Experience {
			company, title := e.Company, e.Title
			if company == "" {
				company = constants.PlaceholderCompany
			}
			if title == "" {
				title = constants.PlaceholderTitle
			}
			w.blank()
			w.line("### " + escape(company) + " — " + escape(title))
			if e.Dates != "" {
				w.blank()
				w.line(escape(e.Dates))
			}
			w.list(e.Responsibilities)
		}
	}

	return w.String()
}

type mdWriter struct {
	strings.Builder
}

func (w *mdWriter) line(s string) {
	w.WriteString(s)
	w.WriteByte('\n')
}

func (w *mdWriter) blank() {
	w.WriteByte('\n')
}

func (w *mdWriter) section(title string) {
	w.blank()
	w.line("## " + escape(title))
	w.blank()
}

func (w *mdWriter) list(items []string) {
	if len(items) == 0 {
		return
	}
	w.blank()
	for _, it := range items {
		w.line("- " + escape(it))
	}
}

// escape 反斜杠转义所有 ASCII 标点（CommonMark 允许转义任意 ASCII 标点），并把换行折叠为空格
func escape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			sb.WriteByte(' ')
		case r < 0x80 && isASCIIPunct(byte(r)):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func isASCIIPunct(c byte) bool {
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') || (c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, escape(p))
		}
	}
	return strings.Join(kept, sep)
}
