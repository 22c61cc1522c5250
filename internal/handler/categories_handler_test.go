package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListCategories(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	w := httptest.NewRecorder()

	ListCategories(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Categories []struct {
			Name       string   `json:"name"`
			Subreddits []string `json:"subreddits"`
		} `json:"categories"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Categories) != 6 {
		t.Fatalf("len(categories) = %d, want 6", len(resp.Categories))
	}
	if resp.Categories[0].Name != "general" {
		t.Errorf("categories[0].Name = %q, want general (fixed order)", resp.Categories[0].Name)
	}
	for _, c := range resp.Categories {
		if len(c.Subreddits) == 0 {
			t.Errorf("category %q has no subreddits", c.Name)
		}
	}
}

func TestHealth(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	Health(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf(`status field = %q, want "ok"`, resp["status"])
	}
}
