package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestAPI(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	tokens := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v2/token", func(w http.ResponseWriter, r *http.Request) {
		tokens++
		if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "client_credentials" || r.Form.Get("client_id") != "id" {
			http.Error(w, "bad grant", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			h(w, r)
		}
	}
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("/venues/adc-theatre/diary.json", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("from") != "2024-01-01" || r.URL.Query().Get("to") != "2024-12-31" {
			http.Error(w, "bad window", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"events": []any{
			map[string]any{"show": map[string]any{"id": 1, "slug": "2024-hamlet", "name": "Hamlet"}},
			map[string]any{"id": 99},
		}})
	}))
	mux.HandleFunc("/shows.json", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			writeJSON(w, map[string]any{"shows": []any{map[string]any{"id": 2, "slug": "2024-macbeth"}}})
			return
		}
		writeJSON(w, []any{})
	}))
	mux.HandleFunc("/shows/2024-hamlet/roles.json", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{
			map[string]any{"role": "Director", "role_type": "prod", "person": map[string]any{"id": 7, "name": "Al", "slug": "al"}},
			map[string]any{"role": "Lighting", "person": map[string]any{"id": "oops", "name": "Bo"}},
		})
	}))
	return httptest.NewServer(mux), &tokens
}

func TestClientAuthenticatesAndDecodes(t *testing.T) {
	srv, tokens := newTestAPI(t)
	defer srv.Close()

	ctx := context.Background()
	c := NewClient(ctx, ClientOptions{BaseURL: srv.URL, ClientID: "id", ClientSecret: "secret"})

	shows, err := c.VenueDiary(ctx, "adc-theatre", "2024-01-01", "2024-12-31")
	if err != nil {
		t.Fatalf("VenueDiary: %v", err)
	}
	if len(shows) != 1 || shows[0].Slug != "2024-hamlet" {
		t.Fatalf("diary shows = %+v", shows)
	}

	page, err := c.Shows(ctx, 1, 50)
	if err != nil || len(page) != 1 || page[0].ID != 2 {
		t.Fatalf("Shows page 1 = %+v, %v", page, err)
	}
	page, err = c.Shows(ctx, 2, 50)
	if err != nil || len(page) != 0 {
		t.Fatalf("Shows page 2 = %+v, %v", page, err)
	}

	roles, err := c.ShowRoles(ctx, "2024-hamlet")
	if err != nil {
		t.Fatalf("ShowRoles: %v", err)
	}
	if len(roles) != 2 || roles[0].Person.ID != 7 || roles[1].Person.HasID() {
		t.Fatalf("roles = %+v", roles)
	}
	if *tokens != 1 {
		t.Fatalf("token requests = %d, want 1", *tokens)
	}
}

func TestClientStatusError(t *testing.T) {
	srv, _ := newTestAPI(t)
	defer srv.Close()

	c := NewClient(context.Background(), ClientOptions{BaseURL: srv.URL})
	_, err := c.ShowRoles(context.Background(), "2024-hamlet")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 StatusError", err)
	}
}
