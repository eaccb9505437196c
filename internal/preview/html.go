package preview

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"resume-docx-go/internal/types"
)

// 不开启 html.WithUnsafe：记录里的原始 HTML 一律不输出
var markdownEngine = goldmark.New(
	goldmark.WithRendererOptions(html.WithXHTML()),
)

// HTML 由 Markdown 预览转换得到的 HTML 片段
func HTML(rec *types.ResumeRecord) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(`<div class="resume-preview">` + "\n")
	if err := markdownEngine.Convert([]byte(Markdown(rec)), &buf); err != nil {
		return "", fmt.Errorf("渲染预览HTML失败: %w", err)
	}
	buf.WriteString(`</div>` + "\n")
	return buf.String(), nil
}
