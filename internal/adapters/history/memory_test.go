package history

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

func TestMemoryStoreCapEvictsOldest(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Append(ctx, "u1", domain.CategoryStory, []string{"a", "b", "c"}, 3); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, "u1", domain.CategoryStory, []string{"d", "e"}, 3); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, _ := s.Recent(ctx, "u1", domain.CategoryStory)
	if want := []string{"c", "d", "e"}; !slices.Equal(got, want) {
		t.Fatalf("ожидали %v, получили %v", want, got)
	}
}

func TestMemoryStoreItemsStayUnique(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Append(ctx, "u1", domain.CategoryOpenQuestion, []string{"a", "b"}, 10)
	_ = s.Append(ctx, "u1", domain.CategoryOpenQuestion, []string{"a"}, 10)
	got, _ := s.Recent(ctx, "u1", domain.CategoryOpenQuestion)
	if want := []string{"b", "a"}; !slices.Equal(got, want) {
		t.Fatalf("ожидали %v, получили %v", want, got)
	}
}

func TestMemoryStoreExpiredHistoryIsEmpty(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()
	_ = s.Append(ctx, "u1", domain.CategoryReadingSentence, []string{"a"}, 10)

	now = now.Add(23 * time.Hour)
	if got, _ := s.Recent(ctx, "u1", domain.CategoryReadingSentence); len(got) != 1 {
		t.Fatalf("история ещё действует, получили %v", got)
	}
	now = now.Add(2 * time.Hour)
	if got, _ := s.Recent(ctx, "u1", domain.CategoryReadingSentence); len(got) != 0 {
		t.Fatalf("история старше суток должна быть пустой, получили %v", got)
	}
	_ = s.Append(ctx, "u1", domain.CategoryReadingSentence, []string{"b"}, 10)
	if got, _ := s.Recent(ctx, "u1", domain.CategoryReadingSentence); !slices.Equal(got, []string{"b"}) {
		t.Fatalf("после истечения запись начинается заново, получили %v", got)
	}
}

func TestMemoryStoreSeparatesUsersAndCategories(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Append(ctx, "u1", domain.CategoryStory, []string{"a"}, 10)
	if got, _ := s.Recent(ctx, "u2", domain.CategoryStory); len(got) != 0 {
		t.Fatalf("история другого пользователя: %v", got)
	}
	if got, _ := s.Recent(ctx, "u1", domain.CategoryRepeatSentence); len(got) != 0 {
		t.Fatalf("история другой категории: %v", got)
	}
}

func TestMemoryStoreConcurrentAppends(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(ctx, "u1", domain.CategoryShortAnswer, []string{fmt.Sprintf("q%d", i)}, 20)
		}(i)
	}
	wg.Wait()
	got, _ := s.Recent(ctx, "u1", domain.CategoryShortAnswer)
	if len(got) != 20 {
		t.Fatalf("ожидали 20 элементов, получили %d", len(got))
	}
}
