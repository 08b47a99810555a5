package app

import "lyrnios-backend/internal/pkg/mermaid"

const DiagramField = "mermaid_diagram"

// applyDiagram rewrites the diagram field of an AI result in place. With
// required set, a missing, empty or non-string field becomes the
// not-available placeholder; otherwise only a present field is touched.
func applyDiagram(result map[string]any, normalizer *mermaid.Normalizer, required bool) {
	value, ok := result[DiagramField]
	if !ok && !required {
		return
	}

	diagram, isString := value.(string)
	if !isString || (required && diagram == "") {
		result[DiagramField] = mermaid.NotAvailableFallback
		return
	}
	result[DiagramField] = normalizer.Normalize(diagram)
}
