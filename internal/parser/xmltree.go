package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Node 一个与具体 DOM 实现无关的 XML 元素节点。
// 只保留元素名、属性、子元素和直接文本，足够按 local name 查找表格/行/单元格/段落/文本。
type Node struct {
	Space    string
	Local    string
	Attr     []xml.Attr
	Children []*Node
	// Text 该元素的直接字符数据（不含子元素）
	Text string

	// segments 记录每段直接字符数据出现在第几个子元素之前，用于按文档顺序还原文本
	segments []textSegment
}

type textSegment struct {
	before int
	text   string
}

// DecodeXML 将 XML 文档解码为节点树，返回根元素
func DecodeXML(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("解析XML失败: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Space: t.Name.Space, Local: t.Name.Local, Attr: t.Attr}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				cur := stack[len(stack)-1]
				text := string(t)
				cur.Text += text
				cur.segments = append(cur.segments, textSegment{before: len(cur.Children), text: text})
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("XML文档没有根元素")
	}
	return root, nil
}

// DecodeXMLBytes DecodeXML 的字节版本
func DecodeXMLBytes(data []byte) (*Node, error) {
	return DecodeXML(bytes.NewReader(data))
}

// FindAll 按文档顺序（深度优先）返回所有 local name 匹配的后代元素，不含自身。
// 与命名空间无关：w:tbl 和 tbl 都匹配 "tbl"。
func (n *Node) FindAll(local string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.Children {
			if c.Local == local {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// TextContent 子树内所有字符数据按文档顺序拼接
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*Node)
	walk = func(cur *Node) {
		if len(cur.segments) == 0 {
			// 手工构造的节点没有位置信息，直接文本排在子元素之前
			sb.WriteString(cur.Text)
		}
		seg := 0
		for i, c := range cur.Children {
			for ; seg < len(cur.segments) && cur.segments[seg].before <= i; seg++ {
				sb.WriteString(cur.segments[seg].text)
			}
			walk(c)
		}
		for ; seg < len(cur.segments); seg++ {
			sb.WriteString(cur.segments[seg].text)
		}
	}
	walk(n)
	return sb.String()
}

// AttrValue 按 local name 取属性值
func (n *Node) AttrValue(local string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
