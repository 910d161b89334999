// Package sanitize 集中所有自由文本的校验与转义，创建/更新路径共用同一套规则。
package sanitize

import (
	"fmt"
	"html"
	"strings"
)

// 输入上限
const (
	MaxTitleLen   = 200
	MaxContentLen = 10000
	MaxAuthorLen  = 50
	MaxTagLen     = 50
	MaxTagCount   = 10
	MaxBodyBytes  = 50 * 1024 // 字段级校验之前的整体兜底
)

// ValidationError 带字段名的客户端输入错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Text 去首尾空白、检查空值与长度，并把 < > & ' " 转义为实体。
// 这是唯一的 XSS 防线，所有自由文本入库前必须经过这里。
func Text(value string, maxLen int, field string, allowEmpty bool) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if allowEmpty {
			return "", nil
		}
		return "", invalid(field, "%s is required", field)
	}
	if len([]rune(value)) > maxLen {
		return "", invalid(field, "%s must not exceed %d characters", field, maxLen)
	}
	return html.EscapeString(value), nil
}

// TagList 校验标签列表：数量上限、逐个 trim/转义/限长，空串丢弃，顺序保留，不去重
// （唯一性由存储层 get-or-create 保证）。非字符串元素在 JSON 解码阶段即被拒绝。
func TagList(tags []string) ([]string, error) {
	if tags == nil {
		return nil, nil
	}
	if len(tags) > MaxTagCount {
		return nil, invalid("tags", "at most %d tags are allowed", MaxTagCount)
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len([]rune(tag)) > MaxTagLen {
			return nil, invalid("tags", "tag must not exceed %d characters", MaxTagLen)
		}
		out = append(out, html.EscapeString(tag))
	}
	return out, nil
}

// PayloadSize 在 JSON 解析之前对原始请求体做体积兜底
func PayloadSize(body []byte) error {
	if len(body) > MaxBodyBytes {
		return invalid("", "request body too large (max %dKB)", MaxBodyBytes/1024)
	}
	return nil
}
