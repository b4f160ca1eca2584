// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const omdbFoundBody = `{
	"Response": "True",
	"Title": "Inception",
	"Year": "2010",
	"Director": "Christopher Nolan",
	"imdbRating": "8.8",
	"imdbID": "tt1375666",
	"Poster": "https://m.media-amazon.com/inception.jpg",
	"Ratings": [
		{"Source": "Internet Movie Database", "Value": "8.8/10"},
		{"Source": "Rotten Tomatoes", "Value": "87%"},
		{"Source": "Metacritic", "Value": "74/100"}
	]
}`

func newOMDBTestServer(t *testing.T, calls *atomic.Int32, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if got := r.URL.Query().Get("type"); got != "movie" {
			t.Errorf("type param = %q, want movie", got)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOMDBLookupSuccess(t *testing.T) {
	srv := newOMDBTestServer(t, nil, omdbFoundBody)

	omdb := NewOMDBClient(OMDBConfig{
		APIKey:  "key",
		BaseURL: srv.URL,
		Enabled: true,
	}, newTestClient(t), newTestMovieCache(t))

	result := omdb.Lookup(context.Background(), "Inception")

	if !result.Found || result.Status != StatusSuccess {
		t.Fatalf("result = %+v, want found/success", result)
	}
	if result.Title != "Inception" || result.Year != "2010" {
		t.Errorf("title/year = %q/%q", result.Title, result.Year)
	}
	if result.Director != "Christopher Nolan" {
		t.Errorf("director = %q", result.Director)
	}
	if result.IMDBRating != "8.8" || result.IMDBID != "tt1375666" {
		t.Errorf("imdb = %q/%q", result.IMDBRating, result.IMDBID)
	}
	if result.RottenTomatoes != "87%" {
		t.Errorf("rotten tomatoes = %q, want from Ratings array", result.RottenTomatoes)
	}
}

func TestOMDBLookupNotFoundInBand(t *testing.T) {
	// OMDb reports misses with HTTP 200 and Response "False".
	var calls atomic.Int32
	srv := newOMDBTestServer(t, &calls, `{"Response":"False","Error":"Movie not found!"}`)

	omdb := NewOMDBClient(OMDBConfig{
		APIKey:  "key",
		BaseURL: srv.URL,
		Enabled: true,
	}, newTestClient(t), newTestMovieCache(t))

	result := omdb.Lookup(context.Background(), "The Totally Fake Movie")
	if result.Found || result.Status != StatusNotFound {
		t.Errorf("result = %+v, want not_found", result)
	}

	omdb.Lookup(context.Background(), "The Totally Fake Movie")
	if got := calls.Load(); got != 1 {
		t.Errorf("upstream called %d times, want 1 (negative cache)", got)
	}
}

func TestOMDBLookupNAFieldsCleared(t *testing.T) {
	body := `{
		"Response": "True",
		"Title": "Obscure Film",
		"Year": "1962",
		"Director": "N/A",
		"imdbRating": "N/A",
		"imdbID": "tt0000001",
		"Poster": "N/A",
		"Ratings": []
	}`
	srv := newOMDBTestServer(t, nil, body)

	omdb := NewOMDBClient(OMDBConfig{
		APIKey:  "key",
		BaseURL: srv.URL,
		Enabled: true,
	}, newTestClient(t), newTestMovieCache(t))

	result := omdb.Lookup(context.Background(), "Obscure Film")
	if !result.Found {
		t.Fatal("not found")
	}
	if result.Director != "" || result.IMDBRating != "" || result.PosterURL != "" {
		t.Errorf("N/A fields not cleared: %+v", result)
	}
	if result.RottenTomatoes != "" {
		t.Errorf("rotten tomatoes = %q, want empty", result.RottenTomatoes)
	}
}

func TestOMDBLookupYearNormalized(t *testing.T) {
	body := `{"Response":"True","Title":"Some Series Film","Year":"2010-2012","Ratings":[]}`
	srv := newOMDBTestServer(t, nil, body)

	omdb := NewOMDBClient(OMDBConfig{
		APIKey:  "key",
		BaseURL: srv.URL,
		Enabled: true,
	}, newTestClient(t), newTestMovieCache(t))

	result := omdb.Lookup(context.Background(), "Some Series Film")
	if result.Year != "2010" {
		t.Errorf("year = %q, want normalized 2010", result.Year)
	}
}

func TestOMDBLookupQuotaExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := newOMDBTestServer(t, &calls, omdbFoundBody)

	omdb := NewOMDBClient(OMDBConfig{
		APIKey:     "key",
		BaseURL:    srv.URL,
		Enabled:    true,
		DailyLimit: 1,
	}, newTestClient(t), newTestMovieCache(t))

	first := omdb.Lookup(context.Background(), "Inception")
	if !first.Found {
		t.Fatal("first lookup failed")
	}

	// A different title misses the cache and hits the exhausted quota.
	second := omdb.Lookup(context.Background(), "The Matrix")
	if second.Status != StatusQuotaError {
		t.Errorf("status = %q, want quota_error", second.Status)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("upstream called %d times, want 1", got)
	}

	used, limit, _ := omdb.Quota().Usage()
	if used != 1 || limit != 1 {
		t.Errorf("quota usage = %d/%d, want 1/1", used, limit)
	}
}

func TestOMDBLookupNoAPIKey(t *testing.T) {
	omdb := NewOMDBClient(OMDBConfig{Enabled: true},
		newTestClient(t), newTestMovieCache(t))

	result := omdb.Lookup(context.Background(), "Inception")
	if result.Status != StatusAuthError {
		t.Errorf("status = %q, want auth_error", result.Status)
	}
	if omdb.Enabled() {
		t.Error("Enabled() = true without an API key")
	}
}

func TestOMDBFieldHelpers(t *testing.T) {
	if got := omdbField("N/A"); got != "" {
		t.Errorf("omdbField(N/A) = %q, want empty", got)
	}
	if got := omdbField("8.8"); got != "8.8" {
		t.Errorf("omdbField(8.8) = %q", got)
	}

	ratings := []omdbRating{
		{Source: "Internet Movie Database", Value: "9.3/10"},
		{Source: "Rotten Tomatoes", Value: "89%"},
	}
	if got := rottenTomatoesScore(ratings); got != "89%" {
		t.Errorf("rottenTomatoesScore = %q, want 89%%", got)
	}
	if got := rottenTomatoesScore(nil); got != "" {
		t.Errorf("rottenTomatoesScore(nil) = %q, want empty", got)
	}
}
