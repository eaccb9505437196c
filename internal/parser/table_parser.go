package parser

import (
	"strings"

	"resume-docx-go/internal/constants"
	"resume-docx-go/internal/logger"
	"resume-docx-go/internal/types"
)

// 导出文档中各章节表格的固定位置
const (
	tableContact = iota
	tableObjective
	tableSkills
	tableCertificates
	tableEducation
	tableExperience
)

// educationHeaderMarker 教育表中出现该文本的行是表头说明，不作为详情
const educationHeaderMarker = "educational institute"

// CellText 单元格内所有文本片段按文档顺序拼接并去除首尾空白
func CellText(cell *Node) string {
	var sb strings.Builder
	for _, t := range cell.FindAll("t") {
		sb.WriteString(t.TextContent())
	}
	return strings.TrimSpace(sb.String())
}

// CellParagraphs 单元格内每个非空段落的文本，保持段落顺序
func CellParagraphs(cell *Node) []string {
	paras := cell.FindAll("p")
	out := make([]string, 0, len(paras))
	for _, p := range paras {
		if text := CellText(p); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func rowCells(row *Node) []*Node {
	return row.FindAll("tc")
}

func cellAt(cells []*Node, i int) string {
	if i < len(cells) {
		return CellText(cells[i])
	}
	return ""
}

// ParseDocumentTree 在文档树中查找所有表格并按位置解析
func ParseDocumentTree(root *Node) *types.ResumeRecord {
	return ParseTables(root.FindAll("tbl"))
}

// ParseTables 按固定位置约定把表格序列解析为简历记录。
// 表格数量不足时缺失的章节保持为空，不返回错误。
func ParseTables(tables []*Node) *types.ResumeRecord {
	rec := types.NewResumeRecord()
	log := logger.Component("table_parser")

	if len(tables) < constants.ExpectedTableCount {
		log.Warn().
			Int("tables", len(tables)).
			Int("expected", constants.ExpectedTableCount).
			Msg("文档表格数量少于预期，缺失的章节将保持为空")
	}

	if len(tables) > tableContact {
		parseContactTable(rec, tables[tableContact])
	}
	if len(tables) > tableObjective {
		if rows := tables[tableObjective].FindAll("tr"); len(rows) > 0 {
			rec.Objective = cellAt(rowCells(rows[0]), 0)
		}
	}
	if len(tables) > tableSkills {
		for _, cell := range tables[tableSkills].FindAll("tc") {
			rec.Skills = append(rec.Skills, CellParagraphs(cell)...)
		}
	}
	if len(tables) > tableCertificates {
		for _, cell := range tables[tableCertificates].FindAll("tc") {
			if text := CellText(cell); text != "" {
				rec.Certificates = append(rec.Certificates, text)
			}
		}
	}
	if len(tables) > tableEducation {
		rec.Education = parseEducationTable(tables[tableEducation])
	}
	if len(tables) > tableExperience {
		rec.Experience = parseExperienceTable(tables[tableExperience])
	}

	log.Debug().
		Int("skills", len(rec.Skills)).
		Int("certificates", len(rec.Certificates)).
		Int("education", len(rec.Education)).
		Int("experience", len(rec.Experience)).
		Msg("表格解析完成")
	return rec
}

func parseContactTable(rec *types.ResumeRecord, table *Node) {
	rows := table.FindAll("tr")
	if len(rows) > 0 {
		cells := rowCells(rows[0])
		rec.Contact.Name = cellAt(cells, 0)
		rec.Contact.Phone = cellAt(cells, 1)
	}
	if len(rows) > 1 {
		cells := rowCells(rows[1])
		rec.Contact.Location = cellAt(cells, 0)
		rec.Contact.Email = cellAt(cells, 1)
	}
}

func parseEducationTable(table *Node) []types.EducationEntry {
	out := []types.EducationEntry{}
	rows := table.FindAll("tr")
	for i := 0; i < len(rows); i++ {
		cells := rowCells(rows[i])
		if len(cells) < 2 {
			continue
		}

		entry := types.NewEducationEntry()
		paras := CellParagraphs(cells[0])
		if len(paras) > 0 {
			entry.Institution = paras[0]
		}
		if len(paras) > 1 {
			entry.Degree = paras[1]
		}
		entry.Dates = CellText(cells[1])

		if i+1 < len(rows) {
			next := cellAt(rowCells(rows[i+1]), 0)
			if next != "" && !strings.Contains(next, educationHeaderMarker) {
				entry.Details = []string{next}
				i++
			}
		}

		if entry.HasIdentity() {
			out = append(out, entry)
		}
	}
	return out
}

func parseExperienceTable(table *Node) []types.ExperienceEntry {
	out := []types.ExperienceEntry{}
	rows := table.FindAll("tr")
	for i := 0; i < len(rows); i++ {
		cells := rowCells(rows[i])
		if len(cells) < 3 {
			continue
		}

		entry := types.NewExperienceEntry()
		entry.Company = CellText(cells[0])
		entry.Title = CellText(cells[1])
		entry.Dates = CellText(cells[2])

		if i+1 < len(rows) {
			if next := rowCells(rows[i+1]); len(next) > 0 {
				entry.Responsibilities = CellParagraphs(next[0])
				i++
			}
		}

		if entry.HasIdentity() {
			out = append(out, entry)
		}
	}
	return out
}
