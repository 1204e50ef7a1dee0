package zpl

import (
	"fmt"
	"regexp"
	"strings"
)

const maxFieldLength = 255

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// RenderError 渲染失败错误，携带字段名与原因
type RenderError struct {
	Field  string
	Reason string
}

// Error 实现 error 接口
func (e *RenderError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("zpl render failed: %s", e.Reason)
	}
	return fmt.Sprintf("zpl render failed on field %q: %s", e.Field, e.Reason)
}

// Render 以字段值渲染模板，生成确定性的 ZPL 输出
//
// 模板的每个占位符都必须有值，空串视为缺失；单个空格是合法值，
// 可选字段以它留白。任何字段超过 255 字符即失败，
// 输出必须带 ^XA/^XZ 起止标记。相同输入产生字节级相同的输出。
func Render(template *Template, fields map[string]string) (string, error) {
	if template == nil {
		return "", &RenderError{Reason: "template is nil"}
	}
	if fields == nil {
		return "", &RenderError{Reason: "fields map is nil"}
	}

	for name := range template.placeholders {
		value, ok := fields[name]
		if !ok {
			return "", &RenderError{Field: name, Reason: "missing required field"}
		}
		if value == "" {
			return "", &RenderError{Field: name, Reason: "field cannot be empty"}
		}
	}
	for name, value := range fields {
		if len([]rune(value)) > maxFieldLength {
			return "", &RenderError{
				Field:  name,
				Reason: fmt.Sprintf("exceeds maximum length of %d characters (length: %d)", maxFieldLength, len([]rune(value))),
			}
		}
	}

	var missing *RenderError
	result := placeholderPattern.ReplaceAllStringFunc(template.content, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := fields[name]
		if !ok {
			if missing == nil {
				missing = &RenderError{Field: name, Reason: "missing required field"}
			}
			return match
		}
		return EscapeField(value)
	})
	if missing != nil {
		return "", missing
	}
	if !strings.Contains(result, "^XA") || !strings.Contains(result, "^XZ") {
		return "", &RenderError{Reason: "output missing ^XA/^XZ markers"}
	}
	return result, nil
}

// EscapeField 转义字段值中的 ZPL 特殊字符
//
// 替换顺序固定：先 ^ 后 ~ 再 { }。
func EscapeField(value string) string {
	value = strings.ReplaceAll(value, "^", "~~^")
	value = strings.ReplaceAll(value, "~", "~~")
	value = strings.ReplaceAll(value, "{", "{{")
	value = strings.ReplaceAll(value, "}", "}}")
	return value
}

// IsValid 检查 ZPL 输出是否带有起止标记且不含未替换占位符
func IsValid(zplContent string) bool {
	return strings.Contains(zplContent, "^XA") &&
		strings.Contains(zplContent, "^XZ") &&
		!placeholderPattern.MatchString(zplContent)
}
