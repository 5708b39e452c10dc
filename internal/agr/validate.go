package agr

import "strings"

var geneIDPrefixes = []string{
	"HGNC:", "MGI:", "ZFIN:", "FB:", "WB:", "SGD:", "RGD:",
	"ENSEMBL:", "RefSeq:", "UniProt:",
}

// ValidGeneID reports whether a gene identifier carries one of the
// curated database prefixes the Alliance aggregates. The upstream API
// accepts more forms than this list, so callers should treat a false
// result as advisory.
func ValidGeneID(geneID string) bool {
	for _, prefix := range geneIDPrefixes {
		if strings.HasPrefix(geneID, prefix) {
			return true
		}
	}
	return false
}

const (
	nucleotideAlphabet = "ATCGUN"
	aminoAcidAlphabet  = "ACDEFGHIKLMNPQRSTVWY"
)

// ValidSequence reports whether the input is a plausible DNA, RNA, or
// protein sequence. Whitespace is ignored and case is not significant.
func ValidSequence(sequence string) bool {
	clean := strings.ToUpper(strings.Join(strings.Fields(sequence), ""))
	if clean == "" {
		return false
	}
	return alphabetOnly(clean, nucleotideAlphabet) || alphabetOnly(clean, aminoAcidAlphabet)
}

func alphabetOnly(s, alphabet string) bool {
	for _, r := range s {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	return true
}
