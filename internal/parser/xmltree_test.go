package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextContentDocumentOrder(t *testing.T) {
	root, err := DecodeXMLBytes([]byte(`<a>one<b>two</b>three<c>four<d>five</d></c>six</a>`))
	require.NoError(t, err)

	assert.Equal(t, "onetwothreefourfivesix", root.TextContent())
	assert.Equal(t, "onethreesix", root.Text, "Text 只含直接字符数据")
	assert.Equal(t, "fourfive", root.FindAll("c")[0].TextContent())
}

func TestTextContentHandBuiltNode(t *testing.T) {
	n := &Node{Local: "p", Text: "x", Children: []*Node{{Local: "t", Text: "y"}}}
	assert.Equal(t, "xy", n.TextContent())
	assert.Equal(t, "", (*Node)(nil).TextContent())
}

func TestFindAllNamespaceAgnostic(t *testing.T) {
	root, err := DecodeXMLBytes([]byte(`<w:document xmlns:w="urn:w"><w:tbl><w:tr/></w:tbl><tbl/></w:document>`))
	require.NoError(t, err)

	assert.Len(t, root.FindAll("tbl"), 2)
	assert.Len(t, root.FindAll("tr"), 1)
	assert.Empty(t, root.FindAll("document"), "不含自身")
}
