package messaging

import "testing"

func TestTopicName(t *testing.T) {
	if got := topicName("tyres", CatalogChanged); got != "tyres_catalog_changed" {
		t.Errorf("Expected tyres_catalog_changed, got %s", got)
	}
}

func TestDecodeCatalogChange(t *testing.T) {
	change, err := DecodeCatalogChange([]byte(`{"source":"cms","reason":"publish","time":"2024-05-01T10:00:00Z"}`))
	if err != nil {
		t.Fatal(err)
	}
	if change.Source != "cms" || change.Reason != "publish" || change.Time.Year() != 2024 {
		t.Errorf("Expected decoded change, got %+v", change)
	}
	if _, err := DecodeCatalogChange(nil); err != nil {
		t.Errorf("Expected empty body to be a reload request, got %v", err)
	}
	if _, err := DecodeCatalogChange([]byte("{")); err == nil {
		t.Errorf("Expected error for broken body")
	}
}
