package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
	"github.com/MrSnakeDoc/wanderlust/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wanderlust/internal/logger"
	"github.com/MrSnakeDoc/wanderlust/internal/metrics"
	"github.com/MrSnakeDoc/wanderlust/internal/store/memory"
	"github.com/MrSnakeDoc/wanderlust/internal/view"
)

const missingID = "000000000000000000000000"

type testEnv struct {
	handler http.Handler
	store   *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	renderer, err := view.New(view.Options{Locale: "en-IN", CurrencySymbol: "₹"})
	if err != nil {
		t.Fatalf("view.New() error = %v", err)
	}

	store := memory.NewStore()
	mm := metrics.NewManager("test")
	d := deps.Deps{
		Logger:    logger.NewNop(),
		StartTime: time.Now(),
		Version:   "test",
		TimeNow:   time.Now,
		Store:     metrics.InstrumentStore(store, mm),
		Renderer:  renderer,
		Metrics:   mm,
	}

	return &testEnv{
		handler: NewRouter(5*time.Second, logger.NewNop(), d),
		store:   store,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seed(t *testing.T, title string, price float64) *domain.Listing {
	t.Helper()
	l, err := e.store.Create(context.Background(), domain.ListingInput{Title: title, Price: &price, Location: "Manali"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return l
}

func (e *testEnv) get(t *testing.T, id string) *domain.Listing {
	t.Helper()
	l, err := e.store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID(%s) error = %v", id, err)
	}
	return l
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, want, rec.Body.String())
	}
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	expectStatus(t, rec, http.StatusSeeOther)
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("Location = %q, want %q", got, location)
	}
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", nil)

	expectStatus(t, rec, http.StatusOK)
	if got := strings.TrimSpace(rec.Body.String()); got != "Hi, I am root" {
		t.Errorf("body = %q, want %q", got, "Hi, I am root")
	}
}

func TestCreateThenShow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/listings", url.Values{
		"listing[title]": {"Cabin"},
		"listing[price]": {"100"},
	})
	expectRedirect(t, rec, "/listings")

	all, _ := env.store.ListAll(context.Background())
	if len(all) != 1 {
		t.Fatalf("store holds %d listings, want 1", len(all))
	}
	created := all[0]
	if created.Price == nil || *created.Price != 100 {
		t.Errorf("price = %v, want 100", created.Price)
	}

	rec = env.do(t, http.MethodGet, "/listings/"+created.ID, nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Cabin") {
		t.Error("show page does not contain the title")
	}

	rec = env.do(t, http.MethodGet, "/listings", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "/listings/"+created.ID) {
		t.Error("index page does not link the new listing")
	}
}

func TestCreateRejected(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing title", url.Values{"listing[price]": {"100"}}},
		{"empty title", url.Values{"listing[title]": {""}}},
		{"negative price", url.Values{"listing[title]": {"Cabin"}, "listing[price]": {"-5"}}},
		{"price not a number", url.Values{"listing[title]": {"Cabin"}, "listing[price]": {"cheap"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, http.MethodPost, "/listings", tt.form)

			expectStatus(t, rec, http.StatusBadRequest)
			if env.store.Count() != 0 {
				t.Errorf("store holds %d listings, want 0", env.store.Count())
			}
		})
	}
}

func TestCreateIgnoresUnknownKeys(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/listings", url.Values{
		"listing[title]": {"Cabin"},
		"listing[owner]": {"someone"},
		"csrf":           {"x"},
	})

	expectRedirect(t, rec, "/listings")
	if env.store.Count() != 1 {
		t.Errorf("store holds %d listings, want 1", env.store.Count())
	}
}

func TestShowUnknownOrMalformedID(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []string{missingID, "not-an-id"} {
		for _, path := range []string{"/listings/" + id, "/listings/" + id + "/edit"} {
			rec := env.do(t, http.MethodGet, path, nil)
			if rec.Code != http.StatusNotFound {
				t.Errorf("GET %s status = %d, want 404", path, rec.Code)
			}
		}
	}
}

func TestShowUppercaseID(t *testing.T) {
	env := newTestEnv(t)
	l := env.seed(t, "Cabin", 100)

	rec := env.do(t, http.MethodGet, "/listings/"+strings.ToUpper(l.ID), nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Cabin") {
		t.Errorf("body missing title: %s", rec.Body.String())
	}
}

func TestNewAndEditForms(t *testing.T) {
	env := newTestEnv(t)
	l := env.seed(t, "Cabin", 1500)

	rec := env.do(t, http.MethodGet, "/listings/new", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `name="listing[title]"`) {
		t.Error("new form has no title input")
	}

	rec = env.do(t, http.MethodGet, "/listings/"+l.ID+"/edit", nil)
	expectStatus(t, rec, http.StatusOK)
	body := rec.Body.String()
	for _, want := range []string{`value="Cabin"`, `value="1500"`, "_method=PUT"} {
		if !strings.Contains(body, want) {
			t.Errorf("edit form missing %q", want)
		}
	}
}

func TestUpdateViaMethodOverride(t *testing.T) {
	env := newTestEnv(t)
	l := env.seed(t, "Cabin", 100)

	rec := env.do(t, http.MethodPost, "/listings/"+l.ID+"?_method=PUT", url.Values{
		"listing[price]": {"250"},
	})
	expectRedirect(t, rec, "/listings/"+l.ID)

	got := env.get(t, l.ID)
	if got.Title != "Cabin" || got.Location != "Manali" {
		t.Errorf("fields outside the form changed: %+v", got)
	}
	if got.Price == nil || *got.Price != 250 {
		t.Errorf("price = %v, want 250", got.Price)
	}
}

func TestUpdateWithPutMethod(t *testing.T) {
	env := newTestEnv(t)
	l := env.seed(t, "Cabin", 100)

	rec := env.do(t, http.MethodPut, "/listings/"+l.ID, url.Values{"listing[title]": {"Lodge"}})

	expectRedirect(t, rec, "/listings/"+l.ID)
	if got := env.get(t, l.ID); got.Title != "Lodge" {
		t.Errorf("title = %q, want Lodge", got.Title)
	}
}

func TestUpdateClearsPrice(t *testing.T) {
	env := newTestEnv(t)
	l := env.seed(t, "Cabin", 100)

	rec := env.do(t, http.MethodPost, "/listings/"+l.ID+"?_method=PUT", url.Values{
		"listing[title]": {"Cabin"},
		"listing[price]": {""},
	})
	expectRedirect(t, rec, "/listings/"+l.ID)

	if got := env.get(t, l.ID); got.Price != nil {
		t.Errorf("price = %v, want cleared", *got.Price)
	}
}

func TestUpdateRejected(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"empty title", url.Values{"listing[title]": {""}}},
		{"negative price", url.Values{"listing[price]": {"-5"}}},
		{"price not a number", url.Values{"listing[price]": {"abc"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			l := env.seed(t, "Cabin", 100)

			rec := env.do(t, http.MethodPost, "/listings/"+l.ID+"?_method=PUT", tt.form)
			expectStatus(t, rec, http.StatusBadRequest)

			got := env.get(t, l.ID)
			if got.Title != "Cabin" || got.Price == nil || *got.Price != 100 {
				t.Errorf("listing changed after rejected update: %+v", got)
			}
		})
	}
}

func TestUpdateMissingListing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/listings/"+missingID+"?_method=PUT", url.Values{
		"listing[title]": {"Ghost"},
	})

	expectStatus(t, rec, http.StatusBadRequest)
}

func TestDeleteTwice(t *testing.T) {
	env := newTestEnv(t)
	l := env.seed(t, "Cabin", 100)

	rec := env.do(t, http.MethodPost, "/listings/"+l.ID+"?_method=DELETE", nil)
	expectRedirect(t, rec, "/listings")

	rec = env.do(t, http.MethodPost, "/listings/"+l.ID+"?_method=DELETE", nil)
	expectStatus(t, rec, http.StatusNotFound)

	if env.store.Count() != 0 {
		t.Errorf("store holds %d listings, want 0", env.store.Count())
	}
}

func TestDeleteViaHeaderOverride(t *testing.T) {
	env := newTestEnv(t)
	l := env.seed(t, "Cabin", 100)

	req := httptest.NewRequest(http.MethodPost, "/listings/"+l.ID, nil)
	req.Header.Set("X-HTTP-Method-Override", "DELETE")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	expectRedirect(t, rec, "/listings")
}

func TestCreateNDeleteM(t *testing.T) {
	env := newTestEnv(t)

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, env.seed(t, "Listing", float64(i)).ID)
	}
	for _, id := range ids[:2] {
		expectRedirect(t, env.do(t, http.MethodDelete, "/listings/"+id, nil), "/listings")
	}

	all, err := env.store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListAll() returned %d listings, want 3", len(all))
	}
}

func TestOperationalEndpoints(t *testing.T) {
	env := newTestEnv(t)
	// One listing request so the HTTP metrics have a sample.
	env.do(t, http.MethodGet, "/listings", nil)

	tests := []struct {
		path     string
		contains string
	}{
		{"/healthz", `"status":"ok"`},
		{"/readyz", `"ready":true`},
		{"/infra", `"status":"operational"`},
		{"/metrics", "test_http_requests_total"},
		{"/static/css/style.css", ".navbar"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, nil)
			expectStatus(t, rec, http.StatusOK)
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body does not contain %q", tt.contains)
			}
		})
	}
}
