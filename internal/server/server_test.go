package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/jera/internal/checksum"
	"github.com/starford/jera/internal/manifest"
	"github.com/starford/jera/internal/testutil"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	root, store := testutil.TestRepo(t)

	rules := `{"rules":["r1"]}`
	testutil.WriteFile(t, root, "db/rules.json", rules)
	testutil.WriteFile(t, root, "db/replacements.json", `{}`)
	testutil.WriteFile(t, root, "db/db.json", `{}`)

	m := &manifest.Manifest{Version: "1.2.1", Notes: "latest"}
	m.SetSha("rules", checksum.Sum([]byte(rules)))
	if err := m.Save(store, "manifest.json"); err != nil {
		t.Fatal(err)
	}

	h := NewHandler(store, "manifest.json", testutil.TrackedFiles())
	srv := httptest.NewServer(NewRouter(h, nil))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)
	resp := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestGetManifest(t *testing.T) {
	srv := testServer(t)
	resp := get(t, srv.URL+"/api/manifest")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var m manifest.Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	if m.Version != "1.2.1" || m.Notes != "latest" {
		t.Errorf("manifest = %+v", m)
	}
}

func TestGetManifestMissing(t *testing.T) {
	_, store := testutil.TestRepo(t)
	h := NewHandler(store, "manifest.json", testutil.TrackedFiles())
	srv := httptest.NewServer(NewRouter(h, nil))
	t.Cleanup(srv.Close)

	resp := get(t, srv.URL+"/api/manifest")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetFile(t *testing.T) {
	srv := testServer(t)
	resp := get(t, srv.URL+"/api/files/rules")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Rules []string `json:"rules"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Rules) != 1 || body.Rules[0] != "r1" {
		t.Errorf("body = %+v", body)
	}
}

func TestGetFileUnknownName(t *testing.T) {
	srv := testServer(t)
	resp := get(t, srv.URL+"/api/files/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
