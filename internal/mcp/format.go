package mcp

import (
	"encoding/json"
	"fmt"
)

// geneSearchEntry is the projection of one gene search hit. Field order
// matches the rendered output.
type geneSearchEntry struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	Species string `json:"species"`
	ID      string `json:"id"`
	Biotype string `json:"biotype"`
}

type diseaseSearchEntry struct {
	Name            string `json:"name"`
	ID              string `json:"id"`
	Definition      string `json:"definition"`
	AssociatedGenes int    `json:"associated_genes"`
}

type geneSummary struct {
	Symbol      interface{}   `json:"symbol"`
	Name        interface{}   `json:"name"`
	Species     interface{}   `json:"species"`
	Biotype     interface{}   `json:"biotype"`
	Description string        `json:"description"`
	Synonyms    []interface{} `json:"synonyms"`
	Chromosome  interface{}   `json:"chromosome"`
}

// formatGeneSearch projects gene search hits to a compact summary list
// under a count header.
func formatGeneSearch(raw json.RawMessage, args Args) string {
	query := args.String("query")
	limit := args.Int("limit")

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Sprintf("Unexpected response format for gene search '%s'", query)
	}
	resultsRaw, ok := envelope["results"]
	if !ok {
		return fmt.Sprintf("Unexpected response format for gene search '%s'", query)
	}
	var results []map[string]interface{}
	if err := json.Unmarshal(resultsRaw, &results); err != nil {
		return fmt.Sprintf("Unexpected response format for gene search '%s'", query)
	}

	if len(results) == 0 {
		return fmt.Sprintf("No genes found for '%s'", query)
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	formatted := make([]geneSearchEntry, 0, len(results))
	for _, gene := range results {
		formatted = append(formatted, geneSearchEntry{
			Symbol:  stringField(gene, "symbol", "Unknown"),
			Name:    stringField(gene, "name", ""),
			Species: nestedString(gene, "species", "name"),
			ID:      stringField(gene, "id", ""),
			Biotype: stringField(gene, "soTermName", ""),
		})
	}

	return fmt.Sprintf("Found %d genes for '%s':\n\n%s", len(formatted), query, prettyJSON(formatted))
}

// formatDiseaseSearch projects disease search hits, truncating long
// definitions and counting associated genes.
func formatDiseaseSearch(raw json.RawMessage, args Args) string {
	query := args.String("query")

	var payload struct {
		Results []map[string]interface{} `json:"results"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Results) == 0 {
		return fmt.Sprintf("No diseases found for '%s'", query)
	}

	formatted := make([]diseaseSearchEntry, 0, len(payload.Results))
	for _, disease := range payload.Results {
		genes, _ := disease["associatedGenes"].([]interface{})
		formatted = append(formatted, diseaseSearchEntry{
			Name:            stringField(disease, "name", "Unknown"),
			ID:              stringField(disease, "id", ""),
			Definition:      truncateEllipsis(stringField(disease, "definition", ""), 200),
			AssociatedGenes: len(genes),
		})
	}

	return fmt.Sprintf("Found %d diseases for '%s':\n\n%s", len(formatted), query, prettyJSON(formatted))
}

// formatGeneInfo renders a fixed summary when the payload looks like a
// gene record, and falls back to the full payload otherwise.
func formatGeneInfo(raw json.RawMessage, args Args) string {
	geneID := args.String("gene_id")

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Sprintf("Gene information for %s:\n\n%s", geneID, prettyRaw(raw))
	}
	if _, ok := payload["symbol"]; !ok {
		return fmt.Sprintf("Gene information for %s:\n\n%s", geneID, prettyJSON(payload))
	}

	synonyms, _ := payload["synonyms"].([]interface{})
	if len(synonyms) > 5 {
		synonyms = synonyms[:5]
	}
	if synonyms == nil {
		synonyms = []interface{}{}
	}

	summary := geneSummary{
		Symbol:      payload["symbol"],
		Name:        payload["name"],
		Species:     nestedField(payload, "species", "name"),
		Biotype:     payload["soTermName"],
		Description: truncateEllipsis(stringField(payload, "description", ""), 300),
		Synonyms:    synonyms,
		Chromosome:  firstLocationChromosome(payload),
	}

	return fmt.Sprintf("Gene Information for %s:\n\n%s", geneID, prettyJSON(summary))
}

// formatDefault renders a header line followed by the pretty-printed
// upstream payload verbatim.
func formatDefault(header string, raw json.RawMessage) string {
	return header + "\n\n" + prettyRaw(raw)
}

// truncateEllipsis mirrors the upstream rendering: empty values stay
// empty, non-empty values are cut at max runes and always carry an
// ellipsis marker.
func truncateEllipsis(s string, max int) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) > max {
		r = r[:max]
	}
	return string(r) + "..."
}

func prettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func prettyRaw(raw json.RawMessage) string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return prettyJSON(v)
}

func stringField(m map[string]interface{}, key, fallback string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return fallback
}

func nestedString(m map[string]interface{}, key, sub string) string {
	if child, ok := m[key].(map[string]interface{}); ok {
		if s, ok := child[sub].(string); ok {
			return s
		}
	}
	return ""
}

func nestedField(m map[string]interface{}, key, sub string) interface{} {
	if child, ok := m[key].(map[string]interface{}); ok {
		return child[sub]
	}
	return nil
}

func firstLocationChromosome(m map[string]interface{}) interface{} {
	locations, ok := m["genomeLocations"].([]interface{})
	if !ok || len(locations) == 0 {
		return nil
	}
	if first, ok := locations[0].(map[string]interface{}); ok {
		return first["chromosome"]
	}
	return nil
}
