package query

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"question words dropped",
			"What is the process of making cheese?",
			"the process making cheese",
		},
		{
			"short tokens and punctuation dropped",
			"How do I age a cheddar wheel?",
			"age cheddar wheel",
		},
		{
			"mixed case lowered",
			"Where Did Gouda Cheese Originate",
			"gouda cheese originate",
		},
		{
			"fallback to trimmed original when under two keywords",
			"  What is it?  ",
			"What is it?",
		},
		{
			"single keyword falls back",
			"What is Brie?",
			"What is Brie?",
		},
		{
			"empty input",
			"   ",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"What is the process of making cheese?",
		"Can cheese be made from soy milk?",
		"What is it?",
		"mozzarella plant-based comparison",
		"",
	}
	for _, q := range inputs {
		once := Normalize(q)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", q, once, twice)
		}
	}
}
