// Package mermaid cleans AI-produced mermaid markup so the frontend renderer
// accepts it.
package mermaid

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	EmptyFallback        = "graph TD\n    A[No diagram available]"
	ErrorFallback        = "graph TD\n    A[Diagram Error] --> B[Please try regenerating]"
	NotAvailableFallback = "graph TD\n    A[Diagram Not Available]"

	defaultHeader  = "graph TD\n    "
	labelWrapWidth = 35
)

var (
	nodeLabel = regexp.MustCompile(`(?s)\[(.*?)\]`)

	diagramKeywords = []string{
		"graph",
		"flowchart",
		"sequenceDiagram",
		"classDiagram",
		"gitgraph",
		"pie",
		"journey",
		"gantt",
	}
)

type Normalizer struct {
	log     *zap.Logger
	rewrite func(string) string
}

func NewNormalizer(log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{log: log, rewrite: rewrite}
}

var defaultNormalizer = NewNormalizer(nil)

// Normalize runs raw through the package default normalizer, which does not
// log.
func Normalize(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

// Normalize never fails: blank input yields EmptyFallback and any failure
// while rewriting yields ErrorFallback.
func (n *Normalizer) Normalize(raw string) (out string) {
	if strings.TrimSpace(raw) == "" {
		return EmptyFallback
	}

	defer func() {
		if r := recover(); r != nil {
			n.log.Error("normalize mermaid diagram failed",
				zap.Any("panic", r),
				zap.String("raw", raw),
			)
			out = ErrorFallback
		}
	}()

	return n.rewrite(raw)
}

func rewrite(diagram string) string {
	diagram = SanitizeText(diagram)
	diagram = EscapeChars(diagram)
	diagram = nodeLabel.ReplaceAllStringFunc(diagram, quoteLabel)
	diagram = strings.TrimSpace(diagram)

	if !hasDiagramKeyword(diagram) {
		diagram = defaultHeader + diagram
	}
	return diagram
}

func quoteLabel(match string) string {
	content := match[1 : len(match)-1]
	content = strings.Join(strings.Fields(content), " ")
	return `["` + WrapText(content, labelWrapWidth) + `"]`
}

func hasDiagramKeyword(diagram string) bool {
	for _, keyword := range diagramKeywords {
		if strings.HasPrefix(diagram, keyword) {
			return true
		}
	}
	return false
}
