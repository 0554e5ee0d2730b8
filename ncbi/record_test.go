package ncbi

import "testing"

func TestNormalizeGene_MissingFields(t *testing.T) {
	// Every field access must default, never panic.
	rec := normalizeGene(map[string]any{})
	if rec.Name != "" || rec.GenomicInfo != "" || rec.Organism != "" {
		t.Errorf("expected empty record from empty doc, got %+v", rec)
	}
}

func TestNormalizeGene_OrganismShapes(t *testing.T) {
	nested := normalizeGene(map[string]any{
		"organism": map[string]any{"scientificname": "Arabidopsis thaliana"},
	})
	if nested.Organism != "Arabidopsis thaliana" {
		t.Errorf("nested organism: got %q", nested.Organism)
	}

	flat := normalizeGene(map[string]any{"organism": "Solanum lycopersicum"})
	if flat.Organism != "Solanum lycopersicum" {
		t.Errorf("string organism: got %q", flat.Organism)
	}
}

func TestNormalizeGene_GenomicInfoSegments(t *testing.T) {
	rec := normalizeGene(map[string]any{
		"genomicinfo": []any{
			map[string]any{"chraccver": "NC_1.1", "chrstart": float64(10), "chrstop": float64(90), "chrstrand": float64(1)},
			map[string]any{"chraccver": "NC_2.1", "chrstart": float64(5), "chrstop": float64(50)},
			map[string]any{},
		},
	})

	want := "NC_1.1:10-90 strand=1; NC_2.1:5-50"
	if rec.GenomicInfo != want {
		t.Errorf("GenomicInfo = %q, want %q", rec.GenomicInfo, want)
	}
}

func TestNormalizeProtein_LengthShapes(t *testing.T) {
	asNumber := normalizeProtein(map[string]any{"slen": float64(175)})
	if asNumber.SequenceLength != 175 {
		t.Errorf("numeric slen: got %d", asNumber.SequenceLength)
	}

	asString := normalizeProtein(map[string]any{"slen": "230"})
	if asString.SequenceLength != 230 {
		t.Errorf("string slen: got %d", asString.SequenceLength)
	}

	garbage := normalizeProtein(map[string]any{"slen": "abc"})
	if garbage.SequenceLength != 0 {
		t.Errorf("garbage slen: got %d", garbage.SequenceLength)
	}
}

func TestEntity_Key(t *testing.T) {
	tests := []struct {
		entity Entity
		want   string
	}{
		{Entity{Name: "FT", Type: "gene", ID: "G1"}, "gene:G1"},
		{Entity{Name: "FT", Type: "gene"}, "gene:FT"},
		{Entity{Name: "NP_001.1", Type: "protein", ID: "P1"}, "protein:P1"},
	}

	for _, tt := range tests {
		if got := tt.entity.Key(); got != tt.want {
			t.Errorf("Key(%+v) = %q, want %q", tt.entity, got, tt.want)
		}
	}
}
