package zpl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/palletprint/internal/logger"
)

// Registry 标签模板注册表
//
// 启动时从配置目录加载全部 .zpl 模板文件，文件名（去扩展名）即模板名。
// 加载后只读。
type Registry struct {
	templates map[string]*Template
}

// LoadTemplateFile 从单个文件加载模板
func LoadTemplateFile(path string) (*Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template file failed: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewTemplate(name, string(content))
}

// LoadRegistry 从目录加载所有 .zpl 模板
func LoadRegistry(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read template dir failed: %w", err)
	}

	registry := &Registry{templates: make(map[string]*Template)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".zpl") {
			continue
		}
		template, err := LoadTemplateFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("load template %s failed: %w", entry.Name(), err)
		}
		registry.templates[template.Name()] = template
	}

	logger.Infow("label_templates_loaded", "dir", dir, "count", len(registry.templates))
	return registry, nil
}

// Get 按名获取模板
func (r *Registry) Get(name string) (*Template, bool) {
	template, ok := r.templates[name]
	return template, ok
}

// Names 返回已加载模板名列表
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
