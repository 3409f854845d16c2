package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"todos/internal/models"
	"todos/internal/store"
)

func setupTestRouter(t *testing.T) (chi.Router, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	h := New(s, zerolog.Nop())
	return h.Routes(), s
}

func doJSON(t *testing.T, r chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListItems_Empty(t *testing.T) {
	r, _ := setupTestRouter(t)

	rec := doJSON(t, r, "GET", "/api/items", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var items []models.Item
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("expected JSON array, got %q: %v", rec.Body.String(), err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty array, got %d items", len(items))
	}
}

func TestCreateItem(t *testing.T) {
	r, _ := setupTestRouter(t)

	rec := doJSON(t, r, "POST", "/api/items", map[string]interface{}{"name": "Buy milk"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var item models.Item
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if item.ID == 0 {
		t.Error("expected assigned id in response")
	}
	if item.Name != "Buy milk" {
		t.Errorf("expected name %q, got %q", "Buy milk", item.Name)
	}
	if item.Completed {
		t.Error("expected new item to be incomplete")
	}
}

func TestCreateItem_EmptyName(t *testing.T) {
	r, s := setupTestRouter(t)

	rec := doJSON(t, r, "POST", "/api/items", map[string]interface{}{"name": ""})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	items, _ := s.ListItems(context.Background())
	if len(items) != 0 {
		t.Errorf("expected store to stay empty, got %d items", len(items))
	}
}

func TestCreateItem_InvalidBody(t *testing.T) {
	r, _ := setupTestRouter(t)

	req := httptest.NewRequest("POST", "/api/items", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestGetItem(t *testing.T) {
	r, s := setupTestRouter(t)

	item := &models.Item{Name: "Buy milk"}
	s.CreateItem(context.Background(), item)

	rec := doJSON(t, r, "GET", fmt.Sprintf("/api/items/%d", item.ID), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var got models.Item
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Name != "Buy milk" {
		t.Errorf("expected name %q, got %q", "Buy milk", got.Name)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	r, _ := setupTestRouter(t)

	rec := doJSON(t, r, "GET", "/api/items/999", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestGetItem_InvalidID(t *testing.T) {
	r, _ := setupTestRouter(t)

	rec := doJSON(t, r, "GET", "/api/items/abc", nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUpdateItem_Partial(t *testing.T) {
	r, s := setupTestRouter(t)

	item := &models.Item{Name: "Buy milk"}
	s.CreateItem(context.Background(), item)

	rec := doJSON(t, r, "PUT", fmt.Sprintf("/api/items/%d", item.ID), map[string]interface{}{"completed": true})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var got models.Item
	json.Unmarshal(rec.Body.Bytes(), &got)
	if !got.Completed {
		t.Error("expected completed to be true")
	}
	if got.Name != "Buy milk" {
		t.Errorf("expected name to be unchanged, got %q", got.Name)
	}
}

func TestUpdateItem_NotFound(t *testing.T) {
	r, _ := setupTestRouter(t)

	rec := doJSON(t, r, "PUT", "/api/items/999", map[string]interface{}{"completed": true})

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestDeleteItem(t *testing.T) {
	r, s := setupTestRouter(t)

	item := &models.Item{Name: "Buy milk"}
	s.CreateItem(context.Background(), item)

	rec := doJSON(t, r, "DELETE", fmt.Sprintf("/api/items/%d", item.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	rec = doJSON(t, r, "DELETE", fmt.Sprintf("/api/items/%d", item.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d on second delete, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHealth(t *testing.T) {
	r, _ := setupTestRouter(t)

	rec := doJSON(t, r, "GET", "/healthz", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
