package zpl

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Template 带占位符的 ZPL 标签模板
//
// 模板不可变，可复用于多次渲染。占位符形如 {fieldName}，
// 构造时解析一次并缓存占位符集合。
type Template struct {
	name         string
	content      string
	placeholders map[string]int // 占位符名 -> 出现次数
}

// NewTemplate 解析模板内容并校验占位符语法
func NewTemplate(name, content string) (*Template, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("template name cannot be empty")
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("template content cannot be empty")
	}

	placeholders := make(map[string]int)
	for position := 0; ; {
		open := strings.IndexByte(content[position:], '{')
		if open < 0 {
			break
		}
		open += position
		close := strings.IndexByte(content[open:], '}')
		if close < 0 {
			return nil, fmt.Errorf("unclosed placeholder at position %d", open)
		}
		close += open

		placeholderName := strings.TrimSpace(content[open+1 : close])
		if placeholderName == "" {
			return nil, fmt.Errorf("empty placeholder at position %d", open)
		}
		if !placeholderNamePattern.MatchString(placeholderName) {
			return nil, fmt.Errorf("invalid placeholder name: %s", placeholderName)
		}
		placeholders[placeholderName]++
		position = close + 1
	}

	return &Template{
		name:         name,
		content:      content,
		placeholders: placeholders,
	}, nil
}

// Name 返回模板名
func (t *Template) Name() string {
	return t.name
}

// Content 返回原始模板内容
func (t *Template) Content() string {
	return t.content
}

// Placeholders 返回模板占位符名集合
func (t *Template) Placeholders() []string {
	names := make([]string, 0, len(t.placeholders))
	for name := range t.placeholders {
		names = append(names, name)
	}
	return names
}

// HasPlaceholder 判断模板是否包含指定占位符
func (t *Template) HasPlaceholder(name string) bool {
	_, ok := t.placeholders[name]
	return ok
}

// PlaceholderCount 返回去重后的占位符数量
func (t *Template) PlaceholderCount() int {
	return len(t.placeholders)
}
