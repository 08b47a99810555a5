package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"lyrnios-backend/internal/pkg/aijson"
	"lyrnios-backend/internal/pkg/mermaid"
)

const demoFallbackFile = "error.json"

// demoFiles is matched in order; the first keyword contained in the prompt
// wins.
var demoFiles = []struct {
	keyword string
	file    string
}{
	{"write", "gc2.json"},
	{"garbage", "gc.json"},
	{"equa", "eqn_motion.json"},
	{"mughal", "mughal.json"},
	{"regression", "regression.json"},
	{"maximum", "regression2.json"},
}

// DemoService serves canned generate results from JSON files so the
// frontend can be shown without calling a model.
type DemoService struct {
	dir        string
	normalizer *mermaid.Normalizer
	log        *zap.Logger
}

func NewDemoService(dir string, normalizer *mermaid.Normalizer, log *zap.Logger) *DemoService {
	if log == nil {
		log = zap.NewNop()
	}
	if normalizer == nil {
		normalizer = mermaid.NewNormalizer(log)
	}
	return &DemoService{dir: dir, normalizer: normalizer, log: log}
}

func (s *DemoService) Load(prompt string) (map[string]any, error) {
	path := filepath.Join(s.dir, DemoFileFor(prompt))

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrDemoNotFound
		}
		return nil, fmt.Errorf("read demo file failed: %w", err)
	}

	result, err := aijson.ParseObject(string(raw))
	if err != nil {
		s.log.Error("parse demo file failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	applyDiagram(result, s.normalizer, false)
	return result, nil
}

// DemoFileFor maps a prompt to its demo file name. Matching is
// case-sensitive.
func DemoFileFor(prompt string) string {
	for _, d := range demoFiles {
		if strings.Contains(prompt, d.keyword) {
			return d.file
		}
	}
	return demoFallbackFile
}
