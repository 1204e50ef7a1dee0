package job

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/palletprint/internal/logger"
)

// Store 校验点文件仓库（每个在途作业一个 JSON 文件）
type Store struct {
	dir string
}

// NewStore 创建校验点仓库
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path 返回作业校验点文件路径
func (s *Store) Path(jobID string) string {
	return filepath.Join(s.dir, jobID+".json")
}

// Save 原子写出校验点（先写临时文件再改名，崩溃不会留下半截文件）
func (s *Store) Save(cp *Checkpoint) error {
	if cp.ID == "" {
		return fmt.Errorf("checkpoint missing id")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint %s: %w", cp.ID, err)
	}

	path := s.Path(cp.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint %s: %w", cp.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace checkpoint %s: %w", cp.ID, err)
	}
	return nil
}

// Load 读入指定作业的校验点
func (s *Store) Load(jobID string) (*Checkpoint, error) {
	path := s.Path(jobID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CheckpointError{ID: jobID, Path: path, Err: err}
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, &CheckpointError{ID: jobID, Path: path, Err: err}
	}
	if cp.ID == "" {
		cp.ID = jobID
	}
	return &cp, nil
}

// Remove 删除作业校验点（作业完成时调用）
func (s *Store) Remove(jobID string) error {
	err := os.Remove(s.Path(jobID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint %s: %w", jobID, err)
	}
	return nil
}

// ListIncomplete 列出全部未完成作业，按最近更新排序
//
// 单个损坏文件只告警跳过，不拖垮整个列表。
func (s *Store) ListIncomplete() ([]*Checkpoint, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read checkpoint dir: %w", err)
	}

	var out []*Checkpoint
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		cp, err := s.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			logger.Warnw("checkpoint_unreadable", "file", name, "error", err)
			continue
		}
		if cp.Completed {
			continue
		}
		out = append(out, cp)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}
