package content

import (
	"testing"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

func TestFallbackCoversEveryCategory(t *testing.T) {
	for _, c := range domain.Categories {
		p := mustProfile(t, c)
		items := Fallback(c)
		if len(items) < p.Count {
			t.Fatalf("%s: запасной список %d короче выдачи %d", c, len(items), p.Count)
		}
		seen := map[string]bool{}
		for _, it := range items {
			if seen[it.Text] {
				t.Fatalf("%s: повтор в запасном списке: %q", c, it.Text)
			}
			seen[it.Text] = true
		}
	}
}

func TestFallbackLinesPassParser(t *testing.T) {
	for _, c := range []domain.Category{domain.CategoryReadingSentence, domain.CategoryShortAnswer, domain.CategoryOpenQuestion} {
		p := mustProfile(t, c)
		for _, it := range Fallback(c) {
			res := Parse(p, it.Text)
			if len(res.Accepted) != 1 {
				t.Fatalf("%s: запасной элемент не проходит проверки: %q %+v", c, it.Text, res.Rejected)
			}
		}
	}
}

func texts(items []domain.ContentItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestPadWithFallback(t *testing.T) {
	table := lines("a", "b", "c")
	tests := []struct {
		name    string
		fresh   []string
		history []string
		target  int
		want    []string
	}{
		{name: "без свежих", target: 3, want: []string{"a", "b", "c"}},
		{name: "свежие идут первыми", fresh: []string{"x"}, target: 3, want: []string{"x", "a", "b"}},
		{name: "сначала не выданные ранее", history: []string{"a"}, target: 2, want: []string{"b", "c"}},
		{name: "затем из истории", history: []string{"a", "b"}, target: 3, want: []string{"c", "a", "b"}},
		{name: "не повторяет свежие", fresh: []string{"b"}, target: 3, want: []string{"b", "a", "c"}},
		{name: "цикл сверх таблицы", target: 5, want: []string{"a", "b", "c", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist := map[string]struct{}{}
			for _, h := range tt.history {
				hist[h] = struct{}{}
			}
			got := texts(padWithFallback(lines(tt.fresh...), tt.target, hist, table))
			if len(got) != len(tt.want) {
				t.Fatalf("ожидали %v, получили %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ожидали %v, получили %v", tt.want, got)
				}
			}
		})
	}
}
