package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrInvalidDocument 输入字节不是合法的文档容器
	ErrInvalidDocument = errors.New("文档格式无效")
	// ErrUnsupportedFormat 没有可处理该文件类型的提取器
	ErrUnsupportedFormat = errors.New("不支持的文件格式")
	// ErrExtractorUnavailable 外部解析服务不可达
	ErrExtractorUnavailable = errors.New("解析服务不可用")
)

const docxMainPart = "word/document.xml"

// DecodeDocx 解压 docx 容器并把主文档部件解码为节点树
func DecodeDocx(data []byte) (*Node, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: 无法打开docx压缩包: %v", ErrInvalidDocument, err)
	}

	for _, f := range zr.File {
		if f.Name != docxMainPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: 无法读取 %s: %v", ErrInvalidDocument, docxMainPart, err)
		}
		defer rc.Close()

		root, err := DecodeXML(io.LimitReader(rc, maxDocumentPartBytes))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return root, nil
	}
	return nil, fmt.Errorf("%w: 缺少 %s", ErrInvalidDocument, docxMainPart)
}

// maxDocumentPartBytes 单个 XML 部件解压后的上限，防止压缩炸弹
const maxDocumentPartBytes = 64 << 20

// DocumentText 文档树中每个非空段落一行，表格单元格内的段落同样计入
func DocumentText(root *Node) string {
	var lines []string
	for _, p := range root.FindAll("p") {
		if text := paragraphText(p); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// paragraphText 与 CellText 相同，但保留制表符和软换行
func paragraphText(p *Node) string {
	var sb strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		switch n.Local {
		case "t":
			sb.WriteString(n.TextContent())
			return
		case "tab":
			sb.WriteByte('\t')
		case "br", "cr":
			sb.WriteByte('\n')
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(p)
	return strings.TrimSpace(sb.String())
}

// DocxTextExtractor 从 docx 中提取纯文本
type DocxTextExtractor struct{}

// ExtractText 实现 TextExtractor
func (DocxTextExtractor) ExtractText(_ context.Context, data []byte, _ string) (string, error) {
	root, err := DecodeDocx(data)
	if err != nil {
		return "", err
	}
	return DocumentText(root), nil
}
