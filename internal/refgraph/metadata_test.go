package refgraph

import (
	"reflect"
	"testing"
)

func TestExtractMetadata_Keywords(t *testing.T) {
	meta := ExtractMetadata("Implement OAuth2 login, with refresh tokens!")

	want := []string{"implement", "oauth2", "login", "refresh", "tokens"}
	if !reflect.DeepEqual(meta.Keywords, want) {
		t.Errorf("keywords = %v, want %v", meta.Keywords, want)
	}
}

func TestExtractMetadata_DropsShortAndStopWords(t *testing.T) {
	meta := ExtractMetadata("fix the bug that this with from have")

	if len(meta.Keywords) != 0 {
		t.Errorf("keywords = %v, want none", meta.Keywords)
	}
}

func TestExtractMetadata_CapsKeywordsAtTen(t *testing.T) {
	meta := ExtractMetadata(
		"alpha1 bravo2 charlie3 delta4 echo5 foxtrot6 golf7 hotel8 india9 juliett10 kilo11 lima12",
	)

	if len(meta.Keywords) != 10 {
		t.Errorf("keyword count = %d, want 10", len(meta.Keywords))
	}
}

func TestExtractMetadata_DedupesKeywords(t *testing.T) {
	meta := ExtractMetadata("database database database migration")

	want := []string{"database", "migration"}
	if !reflect.DeepEqual(meta.Keywords, want) {
		t.Errorf("keywords = %v, want %v", meta.Keywords, want)
	}
}

func TestExtractMetadata_FeatureDomain(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"Implement OAuth2 authentication with refresh tokens", "user-management"},
		{"Add login page for returning visitors", "user-management"},
		{"Wire up stripe checkout and invoice emails", "payments"},
		{"Improve search ranking for stale results", "search"},
		{"Refactor the build script", "general"},
	}
	for _, tt := range tests {
		meta := ExtractMetadata(tt.content)
		if meta.FeatureDomain != tt.want {
			t.Errorf("FeatureDomain(%q) = %q, want %q", tt.content, meta.FeatureDomain, tt.want)
		}
	}
}

func TestExtractMetadata_FirstMatchingDomainRuleWins(t *testing.T) {
	// Contains both user-management and payments triggers; the
	// user-management rule is ordered first.
	meta := ExtractMetadata("login flow for the billing portal")

	if meta.FeatureDomain != "user-management" {
		t.Errorf("FeatureDomain = %q, want user-management", meta.FeatureDomain)
	}
}

func TestExtractMetadata_TechnicalDomain(t *testing.T) {
	meta := ExtractMetadata("Move the endpoint handler into its own service")
	if meta.TechnicalDomain != "backend" {
		t.Errorf("TechnicalDomain = %q, want backend", meta.TechnicalDomain)
	}

	meta = ExtractMetadata("Nothing recognizable here")
	if meta.TechnicalDomain != "general" {
		t.Errorf("TechnicalDomain = %q, want general", meta.TechnicalDomain)
	}
}

func TestExtractMetadata_CodeLocationsCollectAllMatches(t *testing.T) {
	meta := ExtractMetadata("session handler for the login route")

	want := []string{"src/api", "src/auth"}
	if !reflect.DeepEqual(meta.CodeLocations, want) {
		t.Errorf("CodeLocations = %v, want %v", meta.CodeLocations, want)
	}
}

func TestExtractMetadata_StrategicThemeHasNoFallback(t *testing.T) {
	meta := ExtractMetadata("Rotate the encryption keys")
	if meta.StrategicTheme != "security" {
		t.Errorf("StrategicTheme = %q, want security", meta.StrategicTheme)
	}

	meta = ExtractMetadata("Tidy the readme wording")
	if meta.StrategicTheme != "" {
		t.Errorf("StrategicTheme = %q, want empty", meta.StrategicTheme)
	}
}

func TestExtractMetadata_Deterministic(t *testing.T) {
	content := "Optimize database cache for the search endpoint"
	a := ExtractMetadata(content)
	b := ExtractMetadata(content)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("extraction not deterministic: %+v vs %+v", a, b)
	}
}
