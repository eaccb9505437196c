package layout

import (
	"resume-docx-go/internal/constants"
	"resume-docx-go/internal/types"
)

// 段后间距 (twip)
const (
	SectionSpacing   = 200
	EducationSpacing = 100
)

// Render 把简历记录转换为块序列。
// 纯函数：相同输入总是得到相同输出，缺失的字段以空串或占位文本代替，不会失败。
// 章节顺序固定为 联系方式、求职目标、技能、证书、教育、工作经历，空章节整体省略。
func Render(rec *types.ResumeRecord) []Block {
	if rec == nil {
		rec = types.NewResumeRecord()
	}

	var b builder
	b.contact(rec.Contact)

	if rec.Objective != "" {
		b.heading(constants.TitleObjective)
		b.table(&Table{
			Columns:    []int{100},
			Borderless: true,
			Rows: []Row{{Cells: []Cell{
				cell(100, Paragraph{Text: rec.Objective, Align: AlignJustify}),
			}}},
		})
		b.spacer(SectionSpacing)
	}

	if len(rec.Skills) > 0 {
		b.heading(constants.TitleSkills)
		b.table(pairGrid(rec.Skills, false))
		b.spacer(SectionSpacing)
	}

	if len(rec.Certificates) > 0 {
		b.heading(constants.TitleCertificates)
		b.table(pairGrid(rec.Certificates, true))
		b.spacer(SectionSpacing)
	}

	if len(rec.Education) > 0 {
		b.heading(constants.TitleEducation)
		for _, edu := range rec.Education {
			b.table(educationTable(edu))
			b.spacer(EducationSpacing)
		}
	}

	if len(rec.Experience) > 0 {
		b.heading(constants.TitleExperience)
		for _, exp := range rec.Experience {
			b.table(experienceTable(exp))
			b.spacer(SectionSpacing)
		}
	}

	return b.blocks
}

type builder struct {
	blocks []Block
}

func (b *builder) heading(text string) {
	b.blocks = append(b.blocks, Block{Kind: BlockHeading, Heading: &Heading{Text: text}})
}

func (b *builder) table(t *Table) {
	b.blocks = append(b.blocks, Block{Kind: BlockTable, Table: t})
}

func (b *builder) spacer(after int) {
	b.blocks = append(b.blocks, Block{Kind: BlockSpacer, Spacer: &Spacer{AfterTwips: after}})
}

func cell(width int, paras ...Paragraph) Cell {
	return Cell{Span: 1, WidthPct: width, Paragraphs: paras}
}

func (b *builder) contact(c types.Contact) {
	name := c.Name
	if name == "" {
		name = constants.PlaceholderName
	}
	b.table(&Table{
		Columns:    []int{50, 50},
		Borderless: true,
		Rows: []Row{
			{Cells: []Cell{
				cell(50, Paragraph{Text: name, Bold: true, Large: true, Align: AlignLeft}),
				cell(50, Paragraph{Text: c.Phone, Bold: true, Large: true, Align: AlignRight}),
			}},
			{Cells: []Cell{
				cell(50, Paragraph{Text: c.Location, Align: AlignLeft}),
				cell(50, Paragraph{Text: c.Email, Align: AlignRight}),
			}},
		},
	})
	b.spacer(SectionSpacing)
}

// pairGrid 两列网格：第 k 行为 (items[2k], items[2k+1])，末尾落单时右侧留空
func pairGrid(items []string, bullet bool) *Table {
	t := &Table{Columns: []int{50, 50}, Borderless: true}
	for i := 0; i < len(items); i += 2 {
		right := ""
		if i+1 < len(items) {
			right = items[i+1]
		}
		t.Rows = append(t.Rows, Row{Cells: []Cell{
			cell(50, Paragraph{Text: items[i], Align: AlignLeft, Bullet: bullet}),
			cell(50, Paragraph{Text: right, Align: AlignLeft, Bullet: bullet && right != ""}),
		}})
	}
	return t
}

func educationTable(edu types.EducationEntry) *Table {
	head := []Paragraph{{Text: edu.Institution, Bold: true, Align: AlignLeft}}
	if edu.Degree != "" {
		head = append(head, Paragraph{Text: edu.Degree, Bold: true, Align: AlignLeft})
	}

	t := &Table{
		Columns:    []int{70, 30},
		Borderless: true,
		Rows: []Row{{Cells: []Cell{
			cell(70, head...),
			cell(30, Paragraph{Text: edu.Dates, Bold: true, Align: AlignRight}),
		}}},
	}

	if len(edu.Details) > 0 {
		details := make([]Paragraph, 0, len(edu.Details))
		for _, d := range edu.Details {
			details = append(details, Paragraph{Text: d, Align: AlignLeft})
		}
		t.Rows = append(t.Rows, Row{Cells: []Cell{{Span: 2, WidthPct: 100, Paragraphs: details}}})
	}
	return t
}

func experienceTable(exp types.ExperienceEntry) *Table {
	company := exp.Company
	if company == "" {
		company = constants.PlaceholderCompany
	}
	title := exp.Title
	if title == "" {
		title = constants.PlaceholderTitle
	}

	t := &Table{
		Columns:    []int{40, 30, 30},
		Borderless: true,
		Rows: []Row{{Cells: []Cell{
			cell(40, Paragraph{Text: company, Bold: true, Align: AlignLeft}),
			cell(30, Paragraph{Text: title, Bold: true, Align: AlignCenter}),
			cell(30, Paragraph{Text: exp.Dates, Bold: true, Align: AlignRight}),
		}}},
	}

	if len(exp.Responsibilities) > 0 {
		items := make([]Paragraph, 0, len(exp.Responsibilities))
		for _, r := range exp.Responsibilities {
			items = append(items, Paragraph{Text: r, Align: AlignJustify, Bullet: true})
		}
		t.Rows = append(t.Rows, Row{Cells: []Cell{{Span: 3, WidthPct: 100, Paragraphs: items}}})
	}
	return t
}
