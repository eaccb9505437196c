// Package layout 把简历记录转换为与具体文档格式无关的表格/段落块序列。
package layout

import "strings"

// BlockKind 块类型
type BlockKind int

const (
	// BlockHeading 居中加粗的章节标题
	BlockHeading BlockKind = iota
	// BlockTable 表格
	BlockTable
	// BlockSpacer 垂直间距
	BlockSpacer
)

// String 实现 fmt.Stringer
func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "heading"
	case BlockTable:
		return "table"
	case BlockSpacer:
		return "spacer"
	default:
		return "unknown"
	}
}

// Align 段落对齐方式
type Align string

const (
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "both"
)

// Block 输出序列中的一个元素，按 Kind 只有对应字段非空
type Block struct {
	Kind    BlockKind
	Heading *Heading
	Table   *Table
	Spacer  *Spacer
}

// Heading 章节标题
type Heading struct {
	Text string
}

// Spacer 段后间距，单位 twip
type Spacer struct {
	AfterTwips int
}

// Table 一个网格。Columns 为各列宽度百分比，其和为 100
type Table struct {
	Columns    []int
	Borderless bool
	Rows       []Row
}

// Row 表格行
type Row struct {
	Cells []Cell
}

// Cell 单元格。Span>1 表示横跨多列
type Cell struct {
	Span       int
	WidthPct   int
	Paragraphs []Paragraph
}

// Paragraph 单元格内的一个段落
type Paragraph struct {
	Text   string
	Align  Align
	Bold   bool
	Large  bool // 使用姓名/电话的大号字
	Bullet bool
}

// Text 返回单元格内所有段落文本，每段一行
func (c Cell) Text() string {
	texts := make([]string, len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n")
}

// Tables 过滤出所有表格块
func Tables(blocks []Block) []*Table {
	var out []*Table
	for _, b := range blocks {
		if b.Kind == BlockTable {
			out = append(out, b.Table)
		}
	}
	return out
}
