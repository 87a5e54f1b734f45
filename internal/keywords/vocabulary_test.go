package keywords

import (
	"reflect"
	"testing"
)

func TestExpand(t *testing.T) {
	expander := NewVocabularyExpander(nil)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			"single term",
			"What is the premium amount?",
			[]string{"premium"},
		},
		{
			"multi-word term",
			"Is there a grace period?",
			[]string{"grace period"},
		},
		{
			"several terms in vocabulary order",
			"Does the policy cover maternity after the waiting period?",
			[]string{"policy", "waiting period", "maternity"},
		},
		{
			"case insensitive",
			"PREMIUM due dates",
			[]string{"premium"},
		},
		{
			"no hits",
			"Unrelated question about weather",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expander.Expand(tt.query); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expand(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestExpandCustomVocabulary(t *testing.T) {
	expander := NewVocabularyExpander([]string{"sprocket", "flange"})

	got := expander.Expand("How do I replace the flange on a sprocket?")
	want := []string{"sprocket", "flange"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}

	if hits := expander.Expand("What is the premium?"); hits != nil {
		t.Errorf("custom vocabulary matched default terms: %v", hits)
	}
}

func TestParseTerms(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "premium", []string{"premium"}},
		{"trimmed", " premium , grace period ,", []string{"premium", "grace period"}},
		{"drops empties", ",,premium,,", []string{"premium"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTerms(tt.value); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTerms(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
