package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testToken = "dXNlckBleGFtcGxlLmNvbQ=="

// fakeAPI is an in-memory launch GraphQL API.
type fakeAPI struct {
	mu     sync.Mutex
	auth   []string
	booked map[string]bool
}

func (api *fakeAPI) launch(id string) map[string]any {
	missions := map[string]any{
		"1": map[string]any{"name": "FalconSat", "missionPatch": "https://images2.imgbox.com/1.png"},
		"2": map[string]any{"name": "DemoSat", "missionPatch": nil},
		"3": nil,
	}
	mission, ok := missions[id]
	if !ok {
		return nil
	}
	return map[string]any{
		"id":       id,
		"site":     "Kwajalein Atoll",
		"mission":  mission,
		"rocket":   map[string]any{"id": "falcon1", "name": "Falcon 1", "type": "rocket"},
		"isBooked": api.booked[id],
	}
}

func (api *fakeAPI) serveGraphQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	api.auth = append(api.auth, r.Header.Get("Authorization"))

	var data map[string]any
	switch req.OperationName {
	case "GetLaunches":
		data = map[string]any{"launches": map[string]any{"launches": []any{api.launch("1"), api.launch("2"), api.launch("3")}}}
	case "GetLaunchDetail":
		launch := api.launch(req.Variables["id"].(string))
		if launch == nil {
			data = map[string]any{"launch": nil}
		} else {
			data = map[string]any{"launch": launch}
		}
	case "Login":
		data = map[string]any{"login": map[string]any{"id": "1", "token": testToken}}
	case "BookTrips":
		var refs []any
		for _, id := range req.Variables["launchIds"].([]any) {
			api.booked[id.(string)] = true
			refs = append(refs, map[string]any{"id": id})
		}
		data = map[string]any{"bookTrips": map[string]any{"success": true, "message": "trips booked successfully", "launches": refs}}
	case "CancelTrip":
		id := req.Variables["launchId"].(string)
		delete(api.booked, id)
		data = map[string]any{"cancelTrip": map[string]any{"success": true, "message": "trip cancelled", "launches": []any{map[string]any{"id": id}}}}
	default:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"errors": []any{map[string]any{"message": "unknown operation"}}})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (api *fakeAPI) lastAuth() string {
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.auth) == 0 {
		return ""
	}
	return api.auth[len(api.auth)-1]
}

// setupCLI starts a fake API and returns a runner bound to a fresh config dir.
func setupCLI(t *testing.T) (*fakeAPI, func(args ...string) (string, error)) {
	t.Helper()

	api := &fakeAPI{booked: map[string]bool{}}
	router := mux.NewRouter()
	router.HandleFunc("/graphql", api.serveGraphQL).Methods(http.MethodPost)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	configDir := t.TempDir()
	run := func(args ...string) (string, error) {
		var stdout, stderr bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetArgs(append([]string{"--config-dir", configDir, "--endpoint", server.URL + "/graphql"}, args...))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := cmd.ExecuteContext(ctx)
		return stdout.String(), err
	}
	return api, run
}

func TestLaunchesCommand(t *testing.T) {
	_, run := setupCLI(t)

	t.Run("lists launches in server order", func(t *testing.T) {
		out, err := run("launches")
		require.NoError(t, err)

		assert.Contains(t, out, "FalconSat")
		assert.Contains(t, out, "DemoSat")
		assert.Less(t, bytes.Index([]byte(out), []byte("FalconSat")), bytes.Index([]byte(out), []byte("DemoSat")))
	})

	t.Run("renders yaml with the unnamed launch", func(t *testing.T) {
		out, err := run("launches", "-o", "yaml")
		require.NoError(t, err)

		var views []launchView
		require.NoError(t, yaml.Unmarshal([]byte(out), &views))
		require.Len(t, views, 3)
		assert.Equal(t, "1", views[0].ID)
		assert.Equal(t, "Launch", views[2].Mission)
		assert.False(t, views[0].Favorite)
	})

	t.Run("rejects an unknown output format", func(t *testing.T) {
		_, err := run("launches", "-o", "json")
		assert.Error(t, err)
	})
}

func TestLaunchCommand(t *testing.T) {
	_, run := setupCLI(t)

	t.Run("shows the launch detail", func(t *testing.T) {
		out, err := run("launch", "1", "-o", "yaml")
		require.NoError(t, err)

		var view struct {
			ID       string `yaml:"id"`
			Mission  string `yaml:"mission"`
			RocketID string `yaml:"rocket_id"`
			Booked   bool   `yaml:"booked"`
			Favorite bool   `yaml:"favorite"`
		}
		require.NoError(t, yaml.Unmarshal([]byte(out), &view))
		assert.Equal(t, "1", view.ID)
		assert.Equal(t, "FalconSat", view.Mission)
		assert.Equal(t, "falcon1", view.RocketID)
		assert.False(t, view.Booked)
		assert.False(t, view.Favorite)
	})

	t.Run("reports a missing launch", func(t *testing.T) {
		_, err := run("launch", "404")
		require.Error(t, err)
		assert.Equal(t, "Launch not found", err.Error())
	})
}

func TestFavoriteCommands(t *testing.T) {
	_, run := setupCLI(t)

	t.Run("starts without favorites", func(t *testing.T) {
		out, err := run("favorites")
		require.NoError(t, err)
		assert.Contains(t, out, "No favorites yet.")
	})

	t.Run("toggles a launch into the favorites", func(t *testing.T) {
		out, err := run("favorite", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "Added DemoSat to favorites")

		out, err = run("favorites", "-o", "yaml")
		require.NoError(t, err)
		var views []launchView
		require.NoError(t, yaml.Unmarshal([]byte(out), &views))
		require.Len(t, views, 1)
		assert.Equal(t, "2", views[0].ID)

		out, err = run("launches", "-o", "yaml")
		require.NoError(t, err)
		views = nil
		require.NoError(t, yaml.Unmarshal([]byte(out), &views))
		assert.True(t, views[1].Favorite)
		assert.False(t, views[0].Favorite)
	})

	t.Run("lists the newest favorite first", func(t *testing.T) {
		_, err := run("favorite", "1")
		require.NoError(t, err)

		out, err := run("favorites", "-o", "yaml")
		require.NoError(t, err)
		var views []launchView
		require.NoError(t, yaml.Unmarshal([]byte(out), &views))
		require.Len(t, views, 2)
		assert.Equal(t, "1", views[0].ID)
		assert.Equal(t, "2", views[1].ID)
	})

	t.Run("toggles a favorite back out", func(t *testing.T) {
		out, err := run("favorite", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "Removed FalconSat from favorites")
	})

	t.Run("removes a favorite", func(t *testing.T) {
		out, err := run("unfavorite", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "Removed DemoSat from favorites")

		out, err = run("favorites")
		require.NoError(t, err)
		assert.Contains(t, out, "No favorites yet.")
	})

	t.Run("refuses to remove a launch that is not a favorite", func(t *testing.T) {
		_, err := run("unfavorite", "3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a favorite")
	})
}

func TestSessionCommands(t *testing.T) {
	api, run := setupCLI(t)

	t.Run("requires a login before booking", func(t *testing.T) {
		_, err := run("book", "1")
		require.Error(t, err)
		assert.Equal(t, "Please login first", err.Error())
	})

	t.Run("rejects an invalid email", func(t *testing.T) {
		_, err := run("login", "not-an-email")
		require.Error(t, err)
		assert.Equal(t, "Please enter a valid email", err.Error())
	})

	t.Run("logs in and remembers the session", func(t *testing.T) {
		out, err := run("login", "user@example.com")
		require.NoError(t, err)
		assert.Contains(t, out, "Login successful!")

		out, err = run("whoami", "-o", "yaml")
		require.NoError(t, err)
		var view sessionView
		require.NoError(t, yaml.Unmarshal([]byte(out), &view))
		assert.True(t, view.LoggedIn)
		assert.Equal(t, "user@example.com", view.Email)
	})

	t.Run("books trips with the stored token", func(t *testing.T) {
		out, err := run("book", "1,2", "3")
		require.NoError(t, err)
		assert.Contains(t, out, "trips booked successfully")
		assert.Equal(t, testToken, api.lastAuth())

		out, err = run("launch", "3", "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "booked: true")
	})

	t.Run("cancels a trip", func(t *testing.T) {
		out, err := run("cancel", "3")
		require.NoError(t, err)
		assert.Contains(t, out, "trip cancelled")
	})

	t.Run("logs out", func(t *testing.T) {
		out, err := run("logout")
		require.NoError(t, err)
		assert.Contains(t, out, "Logged out")

		out, err = run("whoami")
		require.NoError(t, err)
		assert.Contains(t, out, "Not logged in.")

		_, err = run("cancel", "1")
		require.Error(t, err)
		assert.Equal(t, "Please login first", err.Error())
	})
}

func TestConfigCommand(t *testing.T) {
	t.Run("persists the endpoint", func(t *testing.T) {
		configDir := t.TempDir()
		run := func(args ...string) (string, error) {
			var stdout bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&stdout)
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(append([]string{"--config-dir", configDir}, args...))
			err := cmd.Execute()
			return stdout.String(), err
		}

		_, err := run("config", "set-endpoint", "http://127.0.0.1:4000/graphql")
		require.NoError(t, err)

		out, err := run("config", "-o", "yaml")
		require.NoError(t, err)
		var view configView
		require.NoError(t, yaml.Unmarshal([]byte(out), &view))
		assert.Equal(t, "http://127.0.0.1:4000/graphql", view.Endpoint)
		assert.Equal(t, "30s", view.RequestTimeout)
	})

	t.Run("rejects an invalid endpoint", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--config-dir", t.TempDir(), "config", "set-endpoint", "not a url"})
		assert.Error(t, cmd.Execute())
	})
}
