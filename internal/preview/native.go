package preview

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"resume-docx-go/internal/docxwriter"
	"resume-docx-go/internal/layout"
	"resume-docx-go/internal/parser"
	"resume-docx-go/internal/types"
)

// ErrNativeUnavailable 原生预览不可用，调用方应回退到 HTML 预览
var ErrNativeUnavailable = errors.New("原生预览不可用")

// NativeRenderer 可选的原生预览组件：直接呈现导出文档的版式。
// 任何错误都意味着调用方应回退到 HTML，而不是向用户报错。
type NativeRenderer interface {
	RenderNative(ctx context.Context, rec *types.ResumeRecord) (string, error)
}

// DocxNativeRenderer 先把记录编码为 docx，再把文档本身转换为 HTML 表格，
// 预览与导出文件的版式保持一致
type DocxNativeRenderer struct {
	Options docxwriter.Options
}

// NewDocxNativeRenderer 创建原生预览组件
func NewDocxNativeRenderer(opts docxwriter.Options) *DocxNativeRenderer {
	return &DocxNativeRenderer{Options: opts}
}

// RenderNative 实现 NativeRenderer
func (r *DocxNativeRenderer) RenderNative(ctx context.Context, rec *types.ResumeRecord) (string, error) {
	if r == nil {
		return "", ErrNativeUnavailable
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := docxwriter.Encode(layout.Render(rec), r.Options)
	if err != nil {
		return "", fmt.Errorf("编码预览文档失败: %w", err)
	}
	root, err := parser.DecodeDocx(data)
	if err != nil {
		return "", fmt.Errorf("解码预览文档失败: %w", err)
	}
	return DocumentHTML(root)
}

// DocumentHTML 把 WordprocessingML 文档树转换为 HTML
func DocumentHTML(root *parser.Node) (string, error) {
	bodies := root.FindAll("body")
	if len(bodies) == 0 {
		return "", fmt.Errorf("%w: 文档缺少 body", ErrNativeUnavailable)
	}

	var sb strings.Builder
	sb.WriteString(`<div class="resume-native">` + "\n")
	for _, n := range bodies[0].Children {
		switch n.Local {
		case "p":
			writeParagraph(&sb, n)
		case "tbl":
			writeTable(&sb, n)
		}
	}
	sb.WriteString("</div>\n")
	return sb.String(), nil
}

func child(n *parser.Node, local string) *parser.Node {
	for _, c := range n.Children {
		if c.Local == local {
			return c
		}
	}
	return nil
}

func paragraphStyle(p *parser.Node) (align string, bullet bool) {
	ppr := child(p, "pPr")
	if ppr == nil {
		return "", false
	}
	if jc := child(ppr, "jc"); jc != nil {
		align, _ = jc.AttrValue("val")
		if align == "both" {
			align = "justify"
		}
	}
	return align, child(ppr, "numPr") != nil
}

func isBold(p *parser.Node) bool {
	for _, rpr := range p.FindAll("rPr") {
		if child(rpr, "b") != nil {
			return true
		}
	}
	return false
}

func writeParagraph(sb *strings.Builder, p *parser.Node) {
	text := parser.CellText(p)
	align, bullet := paragraphStyle(p)

	if text == "" {
		sb.WriteString(`<div class="spacer"></div>` + "\n")
		return
	}
	tag := "p"
	if bullet {
		tag = "li"
	}
	sb.WriteString("<" + tag)
	if align != "" {
		sb.WriteString(` style="text-align:` + align + `"`)
	}
	sb.WriteString(">")
	if isBold(p) {
		sb.WriteString("<strong>" + html.EscapeString(text) + "</strong>")
	} else {
		sb.WriteString(html.EscapeString(text))
	}
	sb.WriteString("</" + tag + ">\n")
}

func writeTable(sb *strings.Builder, tbl *parser.Node) {
	sb.WriteString(`<table class="resume-table">` + "\n")
	for _, tr := range tbl.Children {
		if tr.Local != "tr" {
			continue
		}
		sb.WriteString("<tr>")
		for _, tc := range tr.Children {
			if tc.Local != "tc" {
				continue
			}
			sb.WriteString("<td")
			if tcpr := child(tc, "tcPr"); tcpr != nil {
				if span := child(tcpr, "gridSpan"); span != nil {
					if v, _ := span.AttrValue("val"); v != "" {
						if n, err := strconv.Atoi(v); err == nil && n > 1 {
							sb.WriteString(` colspan="` + strconv.Itoa(n) + `"`)
						}
					}
				}
			}
			sb.WriteString(">")
			writeCellParagraphs(sb, tc)
			sb.WriteString("</td>")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</table>\n")
}

// writeCellParagraphs 连续的项目符号段落合并进同一个 <ul>
func writeCellParagraphs(sb *strings.Builder, tc *parser.Node) {
	inList := false
	for _, p := range tc.Children {
		if p.Local != "p" {
			continue
		}
		_, bullet := paragraphStyle(p)
		if bullet && !inList {
			sb.WriteString("<ul>")
			inList = true
		} else if !bullet && inList {
			sb.WriteString("</ul>")
			inList = false
		}
		if parser.CellText(p) == "" {
			continue
		}
		var inner strings.Builder
		writeParagraph(&inner, p)
		sb.WriteString(strings.TrimSuffix(inner.String(), "\n"))
	}
	if inList {
		sb.WriteString("</ul>")
	}
}
