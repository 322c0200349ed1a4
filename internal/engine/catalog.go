package engine

import (
	"codecoach/internal/complexity"
	"codecoach/internal/features"
	"codecoach/internal/patterns"
	"codecoach/internal/recommend"
)

// CatalogEntry is one detectable pattern, algorithm or data structure.
type CatalogEntry struct {
	Name        string        `json:"name"`
	Kind        patterns.Kind `json:"kind"`
	Description string        `json:"description"`
	Evidence    []string      `json:"evidence"`
}

// CatalogConcept is one knowledge-graph node.
type CatalogConcept struct {
	Name          string               `json:"name"`
	Category      string               `json:"category"`
	Difficulty    recommend.Difficulty `json:"difficulty"`
	Prerequisites []string             `json:"prerequisites,omitempty"`
	LeadsTo       []string             `json:"leads_to,omitempty"`
	BaseMinutes   int                  `json:"base_minutes"`
}

// Catalog lists what the engine can recognise and recommend.
type Catalog struct {
	Languages         []features.Language `json:"languages"`
	ComplexityClasses []string            `json:"complexity_classes"`
	Detections        []CatalogEntry      `json:"detections"`
	Concepts          []CatalogConcept    `json:"concepts"`
	Styles            []recommend.Style   `json:"styles"`
}

// Catalog returns the detector rules and knowledge graph in declaration order.
func (e *Engine) Catalog() Catalog {
	c := Catalog{
		Languages: features.Languages,
		ComplexityClasses: []string{
			complexity.O1.String(), complexity.OLogN.String(), complexity.ON.String(),
			complexity.ONLogN.String(), complexity.ON2.String(), complexity.Poly(3).String(),
			complexity.O2N.String(), complexity.ONFact.String(), complexity.Bound{}.String(),
		},
		Styles: recommend.Styles,
	}
	for _, r := range e.detector.Rules() {
		entry := CatalogEntry{Name: r.Name, Kind: r.Kind, Description: r.Description}
		for _, ev := range r.Evidence {
			entry.Evidence = append(entry.Evidence, ev.Name)
		}
		c.Detections = append(c.Detections, entry)
	}
	for _, n := range recommend.KnowledgeGraph {
		c.Concepts = append(c.Concepts, CatalogConcept{
			Name:          n.Name,
			Category:      n.Category,
			Difficulty:    n.Difficulty,
			Prerequisites: n.Prerequisites,
			LeadsTo:       n.LeadsTo,
			BaseMinutes:   n.BaseMinutes,
		})
	}
	return c
}
