package types

import (
	"context"
	"testing"
)

func TestMergerIntersects(t *testing.T) {
	result := ItemList{1: {}, 2: {}, 3: {}, 4: {}}
	merger := NewQueryMerger(context.Background(), &result)

	merger.Add(func(_ context.Context) *ItemList {
		return &ItemList{1: {}, 2: {}, 3: {}}
	})
	merger.Add(func(_ context.Context) *ItemList {
		return &ItemList{2: {}, 3: {}, 5: {}}
	})
	merger.Wait()

	if result.Len() != 2 || !result.Contains(2) || !result.Contains(3) {
		t.Errorf("Expected {2 3}, got %v", result)
	}
}

func TestMergerNilIsUnconstrained(t *testing.T) {
	result := ItemList{1: {}, 2: {}, 3: {}}
	merger := NewQueryMerger(context.Background(), &result)
	merger.Add(func(_ context.Context) *ItemList {
		return nil
	})
	merger.Wait()
	if result.Len() != 3 {
		t.Errorf("Expected 3, got %d", result.Len())
	}
}

func TestMergerEmptyResult(t *testing.T) {
	result := ItemList{1: {}, 2: {}}
	merger := NewQueryMerger(context.Background(), &result)
	merger.Add(func(_ context.Context) *ItemList {
		return &ItemList{}
	})
	merger.Add(func(_ context.Context) *ItemList {
		return nil
	})
	merger.Wait()
	if !result.IsEmpty() {
		t.Errorf("Expected no matches, got %v", result)
	}
}
