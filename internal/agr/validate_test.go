package agr

import "testing"

func TestValidGeneID(t *testing.T) {
	valid := []string{"HGNC:1100", "MGI:95892", "ZFIN:ZDB-GENE-980526-166", "FB:FBgn0000008", "WB:WBGene00000912", "SGD:S000000001", "RGD:2004", "ENSEMBL:ENSG00000012048", "RefSeq:NM_007294", "UniProt:P38398"}
	for _, id := range valid {
		if !ValidGeneID(id) {
			t.Errorf("ValidGeneID(%q) = false, want true", id)
		}
	}

	invalid := []string{"", "BRCA1", "hgnc:1100", "1100:HGNC"}
	for _, id := range invalid {
		if ValidGeneID(id) {
			t.Errorf("ValidGeneID(%q) = true, want false", id)
		}
	}
}

func TestValidSequence(t *testing.T) {
	valid := []string{
		"ATCG",
		"atcgatcg",
		"AUGGCU",          // RNA
		"ATC GAT\nCGN",    // whitespace ignored
		"MKWVTFISLLFLFSS", // protein
	}
	for _, seq := range valid {
		if !ValidSequence(seq) {
			t.Errorf("ValidSequence(%q) = false, want true", seq)
		}
	}

	invalid := []string{
		"",
		"   ",
		"ATCG123",
		"hello world!",
		"MKWVTF*",
	}
	for _, seq := range invalid {
		if ValidSequence(seq) {
			t.Errorf("ValidSequence(%q) = true, want false", seq)
		}
	}
}
