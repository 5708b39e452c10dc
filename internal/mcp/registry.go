package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/agrtools/agr-genomics-mcp/internal/agr"
)

// Tool set names selectable through configuration.
const (
	ToolSetCore     = "core"
	ToolSetEnhanced = "enhanced"
)

// ArgType is the JSON schema type of a tool argument.
type ArgType string

const (
	ArgString  ArgType = "string"
	ArgInteger ArgType = "integer"
)

// ArgSpec declares one tool argument. The same declaration renders the
// advertised inputSchema and drives validation, so the bounds shown to
// the caller are the bounds applied.
type ArgSpec struct {
	Name        string
	Type        ArgType
	Description string
	Required    bool
	Default     interface{}
	Minimum     int
	Maximum     int

	// MissingMsg is the user-facing sentence reported when a required
	// argument is absent. Defaults to "<name> parameter is required".
	MissingMsg string
}

// Args holds validated tool arguments: strings trimmed, integers
// defaulted and clamped.
type Args map[string]interface{}

func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a Args) Int(name string) int {
	n, _ := a[name].(int)
	return n
}

// ToolDef couples a tool's advertised schema with its validation
// contract, upstream fetch and result rendering.
type ToolDef struct {
	Name        string
	Description string
	Args        []ArgSpec

	// FailLabel prefixes upstream failure messages: "<FailLabel> failed: ...".
	FailLabel string

	// Check runs after argument validation; a non-empty return is a
	// user-facing validation failure (without the "Error: " prefix).
	Check func(args Args) string

	Run func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error)

	// Format renders the successful payload. When nil, the result is
	// Header(args) followed by the pretty-printed payload verbatim.
	Format func(raw json.RawMessage, args Args) string
	Header func(args Args) string
}

// validate applies the declared argument contract to the raw arguments
// map. Missing required arguments (after trimming) produce a user-facing
// message; out-of-bounds integers are silently clamped, never rejected.
func (t *ToolDef) validate(raw map[string]interface{}) (Args, string) {
	args := make(Args, len(t.Args))
	for _, spec := range t.Args {
		switch spec.Type {
		case ArgInteger:
			n, ok := intArg(raw[spec.Name])
			if !ok {
				if d, hasDefault := spec.Default.(int); hasDefault {
					n = d
				} else if spec.Required {
					return nil, spec.missingMsg()
				}
			}
			if spec.Maximum > 0 && n > spec.Maximum {
				n = spec.Maximum
			}
			if n < spec.Minimum {
				n = spec.Minimum
			}
			args[spec.Name] = n
		default:
			s, ok := raw[spec.Name].(string)
			if !ok {
				s, _ = spec.Default.(string)
			}
			s = strings.TrimSpace(s)
			if s == "" {
				if spec.Required {
					return nil, spec.missingMsg()
				}
				if d, hasDefault := spec.Default.(string); hasDefault {
					s = d
				}
			}
			args[spec.Name] = s
		}
	}
	return args, ""
}

func (s *ArgSpec) missingMsg() string {
	if s.MissingMsg != "" {
		return s.MissingMsg
	}
	return fmt.Sprintf("%s parameter is required", s.Name)
}

// intArg coerces a JSON argument value to int. Decoded JSON numbers
// arrive as float64.
func intArg(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

func (t *ToolDef) definition() Tool {
	props := make(map[string]interface{}, len(t.Args))
	var required []string
	for _, spec := range t.Args {
		prop := map[string]interface{}{
			"type":        string(spec.Type),
			"description": spec.Description,
		}
		if spec.Default != nil {
			prop["default"] = spec.Default
		}
		if spec.Minimum > 0 {
			prop["minimum"] = spec.Minimum
		}
		if spec.Maximum > 0 {
			prop["maximum"] = spec.Maximum
		}
		props[spec.Name] = prop
		if spec.Required {
			required = append(required, spec.Name)
		}
	}
	return Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: ToolInputSchema{Type: "object", Properties: props, Required: required},
	}
}

// Registry maps tool names to their definitions. Immutable after
// construction; tools/list answers come from the cached definitions.
type Registry struct {
	byName map[string]*ToolDef
	defs   []Tool
}

// NewRegistry builds the registry for the named tool set. An empty name
// selects the enhanced set.
func NewRegistry(set string) (*Registry, error) {
	var tools []ToolDef
	switch set {
	case ToolSetCore:
		tools = coreTools()
	case "", ToolSetEnhanced:
		tools = enhancedTools()
	default:
		return nil, fmt.Errorf("unknown tool set %q", set)
	}

	r := &Registry{byName: make(map[string]*ToolDef, len(tools))}
	for i := range tools {
		t := &tools[i]
		if _, dup := r.byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", t.Name)
		}
		r.byName[t.Name] = t
		r.defs = append(r.defs, t.definition())
	}
	return r, nil
}

// Definitions returns the advertised tool list. The slice is built once;
// callers must not mutate it.
func (r *Registry) Definitions() []Tool {
	return r.defs
}

// Lookup finds a tool by name.
func (r *Registry) Lookup(name string) (*ToolDef, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// coreTools is the minimal catalog: gene search, disease search and gene
// detail retrieval with rich projections.
func coreTools() []ToolDef {
	return []ToolDef{
		{
			Name:        "search_genes",
			Description: "Search for genes by symbol, name, or identifier across 8 model organisms",
			Args: []ArgSpec{
				{
					Name: "query", Type: ArgString, Required: true,
					Description: "Gene symbol (e.g., BRCA1), name, or identifier",
					MissingMsg:  "Gene query is required (e.g., 'BRCA1', 'insulin')",
				},
				{
					Name: "limit", Type: ArgInteger, Default: 10, Minimum: 1, Maximum: 50,
					Description: "Maximum number of results to return",
				},
				{
					Name: "offset", Type: ArgInteger, Default: 0,
					Description: "Number of results to skip",
				},
			},
			FailLabel: "Gene search",
			Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
				return api.Get(ctx, agr.ServiceAPI, "/search", url.Values{
					"q":        {args.String("query")},
					"category": {"gene"},
					"limit":    {strconv.Itoa(args.Int("limit"))},
					"offset":   {strconv.Itoa(args.Int("offset"))},
				})
			},
			Format: formatGeneSearch,
		},
		{
			Name:        "search_diseases",
			Description: "Search for diseases and medical conditions with gene associations",
			Args: []ArgSpec{
				{
					Name: "query", Type: ArgString, Required: true,
					Description: "Disease name or medical term (e.g., diabetes, cancer)",
					MissingMsg:  "Disease query is required (e.g., 'diabetes', 'cancer')",
				},
				{
					Name: "limit", Type: ArgInteger, Default: 10, Minimum: 1, Maximum: 50,
					Description: "Maximum number of results to return",
				},
			},
			FailLabel: "Disease search",
			Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
				return api.Get(ctx, agr.ServiceAPI, "/search", url.Values{
					"q":        {args.String("query")},
					"category": {"disease"},
					"limit":    {strconv.Itoa(args.Int("limit"))},
				})
			},
			Format: formatDiseaseSearch,
		},
		{
			Name:        "get_gene_info",
			Description: "Get comprehensive information about a specific gene",
			Args: []ArgSpec{
				{
					Name: "gene_id", Type: ArgString, Required: true,
					Description: "Gene identifier (e.g., HGNC:1100, MGI:88276, FB:FBgn0000008)",
					MissingMsg:  "Gene identifier is required (e.g., 'HGNC:1100', 'MGI:88276')",
				},
			},
			FailLabel: "Gene information retrieval",
			Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
				geneID := args.String("gene_id")
				if !agr.ValidGeneID(geneID) {
					log.Warn().Str("gene_id", geneID).Msg("Gene identifier does not carry a known database prefix")
				}
				return api.Get(ctx, agr.ServiceAPI, "/gene/"+geneID, nil)
			},
			Format: formatGeneInfo,
		},
	}
}

// enhancedTools is the full Alliance catalog: the core tools plus
// alleles, variants, phenotypes, expression, interactions, orthology,
// ontology, pathways, literature, sequences, species, genome browser,
// transgenics, downloads and data mining.
func enhancedTools() []ToolDef {
	tools := coreTools()

	tools = append(tools,
		geneDetailTool("get_gene_summary",
			"Get concise gene summary with key functional information",
			"Gene summary retrieval", "/summary", "Gene summary for %s:"),
		geneDetailTool("get_gene_alleles",
			"Get all alleles associated with a gene including phenotypic effects",
			"Allele retrieval", "/alleles", "Alleles for %s:"),
		idDetailTool("get_allele_info", "allele_id", "Allele identifier",
			"Get detailed information about a specific allele",
			"Allele information retrieval", "/allele/", "Allele information for %s:"),
		geneDetailTool("get_gene_variants",
			"Get sequence variants for a gene",
			"Variant retrieval", "/variants", "Variants for %s:"),
		geneDetailTool("get_gene_diseases",
			"Get disease associations and models for a gene",
			"Disease association retrieval", "/diseases", "Disease associations for %s:"),
		idDetailTool("get_disease_info", "disease_id", "Disease identifier (DO term)",
			"Get comprehensive information about a disease",
			"Disease information retrieval", "/disease/", "Disease information for %s:"),
		geneDetailTool("get_gene_phenotypes",
			"Get phenotype annotations and experimental conditions for a gene",
			"Phenotype retrieval", "/phenotypes", "Phenotypes for %s:"),
		categorySearchTool("search_phenotypes", "phenotype", "Phenotype term",
			"Search for phenotypes and their associations",
			"Phenotype search", "Phenotype search results for '%s':"),
		geneDetailTool("get_gene_expression",
			"Get comprehensive gene expression data across tissues and conditions",
			"Expression retrieval", "/expression", "Expression data for %s:"),
		geneDetailTool("get_expression_ribbon_summary",
			"Get expression ribbon summary for visualization across anatomy and life stages",
			"Expression ribbon retrieval", "/expression-ribbon-summary", "Expression ribbon summary for %s:"),
		geneDetailTool("get_molecular_interactions",
			"Get protein-protein and molecular interactions for a gene",
			"Molecular interaction retrieval", "/molecular-interactions", "Molecular interactions for %s:"),
		geneDetailTool("get_genetic_interactions",
			"Get genetic interactions and epistasis data for a gene",
			"Genetic interaction retrieval", "/genetic-interactions", "Genetic interactions for %s:"),
		geneDetailTool("find_orthologs",
			"Find orthologous genes across all species in the Alliance",
			"Ortholog search", "/orthologs", "Orthologs for %s:"),
		ToolDef{
			Name:        "get_homologs_by_species",
			Description: "Get homologs for a specific target species",
			Args: []ArgSpec{
				geneIDArg(),
				{
					Name: "species", Type: ArgString, Required: true,
					Description: "Target species (e.g., 'Homo sapiens', 'Mus musculus')",
				},
			},
			FailLabel: "Homolog search",
			Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
				return api.Get(ctx, agr.ServiceAPI, "/gene/"+args.String("gene_id")+"/orthologs",
					url.Values{"species": {args.String("species")}})
			},
			Header: func(args Args) string {
				return fmt.Sprintf("Homologs in %s for %s:", args.String("species"), args.String("gene_id"))
			},
		},
		geneDetailTool("get_paralogs",
			"Get paralogous genes within the same species",
			"Paralog search", "/paralogs", "Paralogs for %s:"),
		geneDetailTool("get_gene_function",
			"Get functional annotations and Gene Ontology terms for a gene",
			"Function retrieval", "/function", "Functional annotations for %s:"),
		geneDetailTool("get_go_annotations",
			"Get detailed Gene Ontology annotations with evidence codes",
			"GO annotation retrieval", "/go-annotations", "GO annotations for %s:"),
		categorySearchTool("search_go_terms", "go", "GO term name or ID",
			"Search for Gene Ontology terms and definitions",
			"GO term search", "GO term search results for '%s':"),
		geneDetailTool("get_gene_pathways",
			"Get biological pathways associated with a gene",
			"Pathway retrieval", "/pathways", "Pathways for %s:"),
		categorySearchTool("search_pathways", "pathway", "Pathway name or description",
			"Search for biological pathways and networks",
			"Pathway search", "Pathway search results for '%s':"),
		geneDetailTool("get_gene_literature",
			"Get literature references and citations for a gene",
			"Literature retrieval", "/literature", "Literature for %s:"),
		ToolDef{
			Name:        "search_literature_textpresso",
			Description: "Search literature using Textpresso full-text search system",
			Args: []ArgSpec{
				{
					Name: "query", Type: ArgString, Required: true,
					Description: "Search terms for literature",
				},
				{
					Name: "species", Type: ArgString, Default: "all",
					Description: "Species filter",
				},
				{
					Name: "category", Type: ArgString, Default: "gene",
					Description: "Category filter",
				},
				{
					Name: "limit", Type: ArgInteger, Default: 20, Minimum: 1,
					Description: "Maximum number of results to return",
				},
			},
			FailLabel: "Textpresso literature search",
			Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
				return api.Get(ctx, agr.ServiceTextpresso, "/search", url.Values{
					"query":    {args.String("query")},
					"species":  {args.String("species")},
					"category": {args.String("category")},
					"limit":    {strconv.Itoa(args.Int("limit"))},
				})
			},
			Header: func(args Args) string {
				return fmt.Sprintf("Textpresso literature search for '%s':", args.String("query"))
			},
		},
		ToolDef{
			Name:        "blast_sequence",
			Description: "Perform BLAST sequence similarity search against Alliance databases",
			Args: []ArgSpec{
				{
					Name: "sequence", Type: ArgString, Required: true,
					Description: "DNA, RNA, or protein sequence",
				},
				{
					Name: "database", Type: ArgString, Default: "all",
					Description: "Target database",
				},
				{
					Name: "program", Type: ArgString, Default: "blastn",
					Description: "BLAST program",
				},
				{
					Name: "max_target_seqs", Type: ArgInteger, Default: 50, Minimum: 1,
					Description: "Maximum number of target sequences",
				},
			},
			FailLabel: "BLAST search",
			Check: func(args Args) string {
				if !agr.ValidSequence(args.String("sequence")) {
					return "Sequence must be a valid DNA, RNA, or protein sequence"
				}
				return ""
			},
			Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
				return api.Get(ctx, agr.ServiceBLAST, "/blast", url.Values{
					"sequence":        {args.String("sequence")},
					"database":        {args.String("database")},
					"program":         {args.String("program")},
					"max_target_seqs": {strconv.Itoa(args.Int("max_target_seqs"))},
				})
			},
			Header: func(args Args) string { return "BLAST results:" },
		},
		ToolDef{
			Name:        "get_gene_sequence",
			Description: "Get gene sequence data (genomic, transcript, protein)",
			Args: []ArgSpec{
				geneIDArg(),
				{
					Name: "sequence_type", Type: ArgString, Default: "genomic",
					Description: "Sequence type (genomic, transcript, protein)",
				},
			},
			FailLabel: "Sequence retrieval",
			Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
				return api.Get(ctx, agr.ServiceAPI, "/gene/"+args.String("gene_id")+"/sequence",
					url.Values{"type": {args.String("sequence_type")}})
			},
			Header: func(args Args) string {
				return fmt.Sprintf("Sequence data for %s (%s):", args.String("gene_id"), args.String("sequence_type"))
			},
		},
		ToolDef{
			Name:        "get_species_list",
			Description: "Get list of all supported model organisms and species",
			FailLabel:   "Species list retrieval",
			Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
				return api.Get(ctx, agr.ServiceAPI, "/species", nil)
			},
			Header: func(args Args) string { return "Supported species:" },
		},
		idDetailTool("get_species_info", "species_id", "Species identifier or name",
			"Get detailed information about a specific species",
			"Species information retrieval", "/species/", "Species information for %s:"),
		ToolDef{
			Name:        "get_jbrowse_data",
			Description: "Get genome browser data for visualization of genomic regions",
			Args: []ArgSpec{
				{Name: "species", Type: ArgString, Required: true, Description: "Species name"},
				{Name: "chromosome", Type: ArgString, Required: true, Description: "Chromosome identifier"},
				{Name: "start", Type: ArgInteger, Required: true, Description: "Start position"},
				{Name: "end", Type: ArgInteger, Required: true, Description: "End position"},
			},
			FailLabel: "JBrowse data retrieval",
			Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
				return api.Get(ctx, agr.ServiceJBrowse, "/tracks", url.Values{
					"species": {args.String("species")},
					"chr":     {args.String("chromosome")},
					"start":   {strconv.Itoa(args.Int("start"))},
					"end":     {strconv.Itoa(args.Int("end"))},
				})
			},
			Header: func(args Args) string {
				return fmt.Sprintf("JBrowse data for %s %s:%d-%d:",
					args.String("species"), args.String("chromosome"), args.Int("start"), args.Int("end"))
			},
		},
		geneDetailTool("get_transgenic_alleles",
			"Get transgenic alleles and model systems for a gene",
			"Transgenic allele retrieval", "/transgenic-alleles", "Transgenic alleles for %s:"),
		idDetailTool("get_construct_info", "construct_id", "Construct identifier",
			"Get information about transgenic constructs",
			"Construct information retrieval", "/construct/", "Construct information for %s:"),
		ToolDef{
			Name:        "get_download_links",
			Description: "Get links to download Alliance data files",
			Args: []ArgSpec{
				{
					Name: "data_type", Type: ArgString, Default: "all",
					Description: "Data type to download",
				},
			},
			FailLabel: "Download link retrieval",
			Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
				return api.Get(ctx, agr.ServiceFMS, "/downloads",
					url.Values{"type": {args.String("data_type")}})
			},
			Header: func(args Args) string {
				return fmt.Sprintf("Download links for %s:", args.String("data_type"))
			},
		},
		ToolDef{
			Name:        "alliancemine_query",
			Description: "Execute complex data mining queries using AllianceMine",
			Args: []ArgSpec{
				{
					Name: "query_xml", Type: ArgString, Required: true,
					Description: "AllianceMine XML query",
				},
			},
			FailLabel: "AllianceMine query",
			Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
				return api.Post(ctx, agr.ServiceMine, "/query",
					map[string]string{"query": args.String("query_xml")})
			},
			Header: func(args Args) string { return "AllianceMine query results:" },
		},
	)

	return tools
}

func geneIDArg() ArgSpec {
	return ArgSpec{
		Name: "gene_id", Type: ArgString, Required: true,
		Description: "Gene identifier (e.g., HGNC:5, MGI:95892)",
	}
}

// geneDetailTool builds a tool that fetches one sub-resource of a gene.
func geneDetailTool(name, description, failLabel, suffix, headerFmt string) ToolDef {
	return ToolDef{
		Name:        name,
		Description: description,
		Args:        []ArgSpec{geneIDArg()},
		FailLabel:   failLabel,
		Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
			return api.Get(ctx, agr.ServiceAPI, "/gene/"+args.String("gene_id")+suffix, nil)
		},
		Header: func(args Args) string {
			return fmt.Sprintf(headerFmt, args.String("gene_id"))
		},
	}
}

// idDetailTool builds a tool that fetches an entity by a single
// identifier argument.
func idDetailTool(name, argName, argDescription, description, failLabel, pathPrefix, headerFmt string) ToolDef {
	return ToolDef{
		Name:        name,
		Description: description,
		Args: []ArgSpec{
			{Name: argName, Type: ArgString, Required: true, Description: argDescription},
		},
		FailLabel: failLabel,
		Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
			return api.Get(ctx, agr.ServiceAPI, pathPrefix+args.String(argName), nil)
		},
		Header: func(args Args) string {
			return fmt.Sprintf(headerFmt, args.String(argName))
		},
	}
}

// categorySearchTool builds a tool that queries the search endpoint with
// a fixed category.
func categorySearchTool(name, category, queryDescription, description, failLabel, headerFmt string) ToolDef {
	return ToolDef{
		Name:        name,
		Description: description,
		Args: []ArgSpec{
			{Name: "query", Type: ArgString, Required: true, Description: queryDescription},
			{
				Name: "limit", Type: ArgInteger, Default: 20, Minimum: 1,
				Description: "Maximum number of results to return",
			},
		},
		FailLabel: failLabel,
		Run: func(ctx context.Context, api agr.API, args Args) (json.RawMessage, error) {
			return api.Get(ctx, agr.ServiceAPI, "/search", url.Values{
				"q":        {args.String("query")},
				"category": {category},
				"limit":    {strconv.Itoa(args.Int("limit"))},
			})
		},
		Header: func(args Args) string {
			return fmt.Sprintf(headerFmt, args.String("query"))
		},
	}
}
