package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

const duckDuckGoPage = `<html><body>
<div class="result results_links">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.linkedin.com%2Fcompany%2Fbright-labs%2F">Bright Labs | LinkedIn</a></h2>
  <a class="result__snippet">Growth   agency for <b>SaaS</b></a>
</div>
<div class="result">
  <h2><a class="result__a" href="">empty href</a></h2>
</div>
<div class="result">
  <h2><a class="result__a" href="https://www.linkedin.com/company/nova/">Nova - LinkedIn</a></h2>
  <div class="result__snippet">Fintech studio</div>
</div>
<div class="result">
  <h2><a class="result__a" href="https://example.com/third">Third</a></h2>
</div>
</body></html>`

func TestDuckDuckGoSearch(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostForm.Get("q")
		gotAgent = r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, duckDuckGoPage)
	}))
	defer srv.Close()

	ddg := NewDuckDuckGo(WithDuckDuckGoURL(srv.URL), WithDuckDuckGoClient(srv.Client()))
	results, err := ddg.Search(context.Background(), `site:linkedin.com/company "growth agency"`, 2)
	require.NoError(t, err)

	assert.Equal(t, `site:linkedin.com/company "growth agency"`, gotQuery)
	assert.Contains(t, gotAgent, "Mozilla")
	require.Len(t, results, 2)
	assert.Equal(t, "Bright Labs | LinkedIn", results[0].Title)
	assert.Equal(t, "Growth agency for SaaS", results[0].Snippet)
	assert.Equal(t, "https://www.linkedin.com/company/nova/", results[1].URL)
}

func TestDuckDuckGoNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	_, err := NewDuckDuckGo(WithDuckDuckGoURL(srv.URL)).Search(context.Background(), "q", 5)
	assert.Error(t, err)
}

func TestSerpAPISearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "google", q.Get("engine"))
		assert.Equal(t, "secret", q.Get("api_key"))
		assert.Equal(t, "6", q.Get("num"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"organic_results":[{"title":"Jane Doe - CTO","link":"https://www.linkedin.com/in/jane","snippet":"CTO at Acme"}]}`)
	}))
	defer srv.Close()

	serp, err := NewSerpAPI("secret", WithSerpAPIEndpoint(srv.URL), WithSerpAPIClient(srv.Client()))
	require.NoError(t, err)

	results, err := serp.Search(context.Background(), "cto", 6)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://www.linkedin.com/in/jane", results[0].URL)
	assert.Equal(t, "CTO at Acme", results[0].Snippet)
}

func TestSerpAPIErrors(t *testing.T) {
	_, err := NewSerpAPI(" ")
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	serp, err := NewSerpAPI("secret", WithSerpAPIEndpoint(srv.URL))
	require.NoError(t, err)
	_, err = serp.Search(context.Background(), "cto", 6)
	assert.Error(t, err)
}

func TestSerpAPINoResultsIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"error":"Google hasn't returned any results for this query."}`)
	}))
	defer srv.Close()

	serp, err := NewSerpAPI("secret", WithSerpAPIEndpoint(srv.URL))
	require.NoError(t, err)
	results, err := serp.Search(context.Background(), "cto", 6)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGoogleCSESearch(t *testing.T) {
	var gotNum, gotCx string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotNum = r.URL.Query().Get("num")
		gotCx = r.URL.Query().Get("cx")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"items":[{"title":"Acme | LinkedIn","link":"https://www.linkedin.com/company/acme","snippet":"Acme builds things"}]}`)
	}))
	defer srv.Close()

	cse, err := NewGoogleCSE(context.Background(), "key", "engine-1",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	results, err := cse.Search(context.Background(), "acme", 40)
	require.NoError(t, err)
	assert.Equal(t, "10", gotNum)
	assert.Equal(t, "engine-1", gotCx)
	require.Len(t, results, 1)
	assert.Equal(t, "Acme | LinkedIn", results[0].Title)
}

func TestGoogleCSERequiresCredentials(t *testing.T) {
	_, err := NewGoogleCSE(context.Background(), "key", "")
	assert.Error(t, err)
}
