package sanitize

import (
	"html"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextEscapesHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"script tag", `<script>alert("xss")</script>`},
		{"attribute breakout", `" onmouseover='alert(1)'`},
		{"ampersand", "Tom & Jerry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Text(tt.input, MaxTitleLen, "title", false)
			require.NoError(t, err)
			assert.NotContains(t, out, "<")
			assert.NotContains(t, out, ">")
			assert.NotContains(t, out, `"`)
			// 反转义后应还原成 trim 过的原文
			assert.Equal(t, strings.TrimSpace(tt.input), html.UnescapeString(out))
		})
	}
}

func TestTextTrimsWhitespace(t *testing.T) {
	out, err := Text("  hello  ", MaxTitleLen, "title", false)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestTextLengthBoundary(t *testing.T) {
	ok := strings.Repeat("a", MaxTitleLen)
	out, err := Text(ok, MaxTitleLen, "title", false)
	require.NoError(t, err)
	assert.Equal(t, ok, out)

	_, err = Text(strings.Repeat("a", MaxTitleLen+1), MaxTitleLen, "title", false)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)
}

func TestTextLengthCountsRunes(t *testing.T) {
	// 200 个多字节字符也应通过
	out, err := Text(strings.Repeat("가", MaxTitleLen), MaxTitleLen, "title", false)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestTextEmpty(t *testing.T) {
	_, err := Text("   ", MaxTitleLen, "title", false)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)

	out, err := Text("   ", MaxTitleLen, "author", true)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestTagListCountBoundary(t *testing.T) {
	tags := make([]string, MaxTagCount)
	for i := range tags {
		tags[i] = "tag"
	}
	out, err := TagList(tags)
	require.NoError(t, err)
	assert.Len(t, out, MaxTagCount)

	_, err = TagList(append(tags, "one-too-many"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "tags", ve.Field)
}

func TestTagListKeepsOrderAndDuplicates(t *testing.T) {
	out, err := TagList([]string{"bug", " feature ", "", "bug"})
	require.NoError(t, err)
	// 空串丢弃，顺序与重复保留
	assert.Equal(t, []string{"bug", "feature", "bug"}, out)
}

func TestTagListEscapesAndLimits(t *testing.T) {
	out, err := TagList([]string{"<b>bold</b>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"&lt;b&gt;bold&lt;/b&gt;"}, out)

	_, err = TagList([]string{strings.Repeat("x", MaxTagLen + 1)})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestTagListNil(t *testing.T) {
	out, err := TagList(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestPayloadSize(t *testing.T) {
	require.NoError(t, PayloadSize(make([]byte, MaxBodyBytes)))

	err := PayloadSize(make([]byte, MaxBodyBytes+1))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}
