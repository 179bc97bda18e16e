// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	// Every script process gets an empty in-memory keyring so no test touches
	// the user's real one.
	keyring.MockInit()

	os.Exit(testscript.RunMain(m, map[string]func() int{
		"pipectl": Run,
	}))
}

// TestScripts runs the CLI scripts in testdata against an in-process fake store.
func TestScripts(t *testing.T) {
	t.Parallel()

	store := newScriptStore()
	t.Cleanup(store.Close)

	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(env.WorkDir, ".config"))
			env.Setenv("PIPECTL_API_BASE_URL", store.URL)
			env.Setenv("PIPECTL_API_KEY", "")
			env.Setenv("NO_COLOR", "1")
			return nil
		},
	})
}

// newScriptStore serves the three publish calls with canned success answers.
func newScriptStore() *httptest.Server {
	var srv *httptest.Server
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/plugins/publish", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
			return
		}
		object := body.Name + "-" + body.Version + ".zip"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"uploadUrl": srv.URL + "/upload/" + object + "?sig=secret",
			"path":      path.Join("pipes", object),
		})
	})

	mux.HandleFunc("PUT /upload/{object}", func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.Copy(io.Discard, r.Body); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /api/plugins/publish/finalize", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "pipe is now live"})
	})

	srv = httptest.NewServer(mux)
	return srv
}
