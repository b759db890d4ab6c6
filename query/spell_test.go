package query

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"小写", "Vegan SUSHI", "vegan sushi"},
		{"去标点", "pizza!!! (cheap)", "pizza cheap"},
		{"压缩空白", "  sushi   bar  ", "sushi bar"},
		{"保留数字", "open 24h", "open 24h"},
		{"空串", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, 期望 %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Vegan SUSHI!!", "  a  b  ", "taco's & burritos"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize 应幂等：%q -> %q -> %q", in, once, twice)
		}
	}
}

func TestSpellCorrectorVocabPassThrough(t *testing.T) {
	c, err := NewSpellCorrector([]string{"vegan sushi", "italian pizza"}, 1)
	if err != nil {
		t.Fatalf("构建纠错器失败: %v", err)
	}

	// 词表内 token 原样通过
	if got := c.Correct("vegan pizza"); got != "vegan pizza" {
		t.Errorf("词表内 token 不应被修改，实际 %q", got)
	}
}

func TestSpellCorrectorCorrects(t *testing.T) {
	c, err := NewSpellCorrector([]string{"sushi", "pizza", "ramen"}, 1)
	if err != nil {
		t.Fatalf("构建纠错器失败: %v", err)
	}

	tests := []struct {
		input string
		want  string
	}{
		{"sushu", "sushi"},  // 距离 1，替换
		{"pizzza", "pizza"}, // 距离 1，替换
		{"burger", "burger"}, // 距离超限，保留原词
	}
	for _, tt := range tests {
		if got := c.Correct(tt.input); got != tt.want {
			t.Errorf("Correct(%q) = %q, 期望 %q", tt.input, got, tt.want)
		}
	}
}

func TestSpellCorrectorMaxDistanceGuard(t *testing.T) {
	c, err := NewSpellCorrector([]string{"sushi"}, 1)
	if err != nil {
		t.Fatalf("构建纠错器失败: %v", err)
	}
	// "sash" 与 "sushi" 距离为 2，超过上限，不应被替换
	if got := c.Correct("sash"); got != "sash" {
		t.Errorf("超过编辑距离上限的 token 不应被替换，实际 %q", got)
	}
}

func TestSpellCorrectorEmptyVocab(t *testing.T) {
	if _, err := NewSpellCorrector(nil, 1); err == nil {
		t.Fatal("空词表应被拒绝")
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"kitten", "sitting", 3},
		{"sushi", "sushi", 0},
		{"sushu", "sushi", 1},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, 期望 %d", tt.a, tt.b, got, tt.want)
		}
	}
}
