package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFulfillment(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"fulfilled", "Fulfilled"},
		{"partial", "Partially Fulfilled"},
		{"partially_fulfilled", "Partially Fulfilled"},
		{"PARTIALLY_FULFILLED", "Partially Fulfilled"},
		{"restocked", "Restocked"},
		{"unfulfilled", "Unfulfilled"},
		{"", "Unfulfilled"},
		{"some_new_platform_state", "Unfulfilled"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFulfillment(tt.raw))
		})
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"plain amount", "99.99", 99.99, true},
		{"integer amount", "100", 100, true},
		{"whitespace trimmed", " 42.50 ", 42.50, true},
		{"negative refund", "-10.00", -10.00, true},
		{"empty omitted", "", 0, false},
		{"garbage omitted", "abc", 0, false},
		{"currency symbol omitted", "$99.99", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseMoney(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.0001)
			}
		})
	}
}

func TestRuleVocabularyMatching(t *testing.T) {
	tests := []struct {
		name     string
		synonyms []string
		property string
		want     bool
	}{
		{"substring match", []string{"total"}, "order total", true},
		{"case folded by caller", []string{"total"}, "subtotal price", true},
		{"no match", []string{"total"}, "discount", false},
		{"empty synonyms match anything", nil, "whatever", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesName(tt.property, tt.synonyms))
		})
	}
}
