package recipes_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
	_ "modernc.org/sqlite"

	"cookbook/auth"
	"cookbook/cookbook"
	"cookbook/dbscripts"
	"cookbook/models"
	"cookbook/ratelim"
	"cookbook/rdx"
	"cookbook/recipes"
	"cookbook/routes"
	"cookbook/utils"
)

const testPassword = "Troglodon5986"

// newTestServer wires the full stack the way main does: router, rate
// limiter, password gate, handlers, and a disabled cache.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	pool, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	pool.SetMaxOpenConns(1)
	t.Cleanup(func() { pool.Close() })

	require.NoError(t, dbscripts.InitTables(context.Background(), pool))

	logger := zap.NewNop()
	gate := auth.NewGate(pool, logger, bcrypt.MinCost)
	require.NoError(t, gate.Seed(context.Background(), testPassword))

	book := cookbook.New(pool, logger)
	cache := rdx.New("", logger)
	handler := recipes.NewHandler(book, cache, logger)

	router := httprouter.New()
	routes.AddRecipeRoutes(router, handler, gate, ratelim.New(rate.Limit(1000), 1000), logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, utils.Envelope) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env utils.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.Equal(t, resp.StatusCode, env.Code)
	require.Equal(t, resp.StatusCode >= 200 && resp.StatusCode < 300, env.Success)
	return resp.StatusCode, env
}

const chiliJSON = `{
	"password": "Troglodon5986",
	"name": "Chili",
	"description": "Hearty bean chili",
	"servings": 4,
	"ingredients": [{"name": "Beans", "unit": "can", "amount": "2"}],
	"instructions": [{"step": 1, "instruction": "Mix"}]
}`

func TestListEmptyCookbook(t *testing.T) {
	srv := newTestServer(t)

	code, env := do(t, srv, http.MethodGet, "/recipes", "")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "There are no recipes in the cookbook.", env.Message)

	code, _ = do(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusNotFound, code)
}

func TestAddListAndGet(t *testing.T) {
	srv := newTestServer(t)

	code, env := do(t, srv, http.MethodPost, "/addrecipe", chiliJSON)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "Successfully added Chili into the cookbook.", env.Message)

	// Bare list under /recipes.
	code, env = do(t, srv, http.MethodGet, "/recipes", "")
	require.Equal(t, http.StatusOK, code)
	var list []models.Recipe
	raw, err := json.Marshal(env.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	require.Equal(t, "Chili", list[0].Name)

	// Root wraps the same list under a recipes key.
	code, env = do(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, code)
	var wrapped struct {
		Recipes []models.Recipe `json:"recipes"`
	}
	raw, err = json.Marshal(env.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &wrapped))
	require.Len(t, wrapped.Recipes, 1)

	// Lookup is case-insensitive.
	code, env = do(t, srv, http.MethodGet, "/recipe?name=chili", "")
	require.Equal(t, http.StatusOK, code)
	var got models.Recipe
	raw, err = json.Marshal(env.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, "Chili", got.Name)
	require.Equal(t, 4, got.Servings)
}

func TestGetWithBlankOrUnknownName(t *testing.T) {
	srv := newTestServer(t)

	code, _ := do(t, srv, http.MethodGet, "/recipe", "")
	require.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, srv, http.MethodGet, "/recipe?name=Nothing", "")
	require.Equal(t, http.StatusNotFound, code)
}

func TestMutationsRequireThePassword(t *testing.T) {
	srv := newTestServer(t)

	code, env := do(t, srv, http.MethodPost, "/addrecipe", `{"name":"Chili"}`)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Authentication needed", env.Message)

	code, env = do(t, srv, http.MethodPut, "/editrecipe", `{"password":"wrong","name":"Chili"}`)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Password is incorrect", env.Message)
}

func TestAddRejectsInvalidAndDuplicate(t *testing.T) {
	srv := newTestServer(t)

	code, _ := do(t, srv, http.MethodPost, "/addrecipe", `{"password":"Troglodon5986","name":"Chili"}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, srv, http.MethodPost, "/addrecipe", chiliJSON)
	require.Equal(t, http.StatusCreated, code)

	dup := strings.Replace(chiliJSON, `"Chili"`, `"CHILI"`, 1)
	code, env := do(t, srv, http.MethodPost, "/addrecipe", dup)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Recipe with name CHILI already exists", env.Message)
}

func TestRemoveReturnsSnapshot(t *testing.T) {
	srv := newTestServer(t)

	code, _ := do(t, srv, http.MethodPost, "/addrecipe", chiliJSON)
	require.Equal(t, http.StatusCreated, code)

	code, env := do(t, srv, http.MethodPut, "/removerecipe",
		`{"password":"Troglodon5986","name":"Chili"}`)
	require.Equal(t, http.StatusOK, code)

	var snapshot models.Recipe
	raw, err := json.Marshal(env.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	require.Equal(t, "Chili", snapshot.Name)
	require.Len(t, snapshot.Ingredients, 1)

	code, _ = do(t, srv, http.MethodGet, "/recipe?name=Chili", "")
	require.Equal(t, http.StatusNotFound, code)
}

func TestDeleteRouteAndMissingName(t *testing.T) {
	srv := newTestServer(t)

	code, _ := do(t, srv, http.MethodPost, "/addrecipe", chiliJSON)
	require.Equal(t, http.StatusCreated, code)

	code, _ = do(t, srv, http.MethodDelete, "/deleterecipe", `{"password":"Troglodon5986"}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, srv, http.MethodDelete, "/deleterecipe",
		`{"password":"Troglodon5986","name":"chili"}`)
	require.Equal(t, http.StatusOK, code)

	code, env := do(t, srv, http.MethodPut, "/removerecipe",
		`{"password":"Troglodon5986","name":"chili"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Recipe with name chili does not exist in the cookbook.", env.Message)
}

func TestEditEndpoint(t *testing.T) {
	srv := newTestServer(t)

	code, _ := do(t, srv, http.MethodPost, "/addrecipe", chiliJSON)
	require.Equal(t, http.StatusCreated, code)

	code, env := do(t, srv, http.MethodPut, "/editrecipe", `{"password":"Troglodon5986"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Please provide name of the recipe you want to edit", env.Message)

	code, env = do(t, srv, http.MethodPut, "/editrecipe",
		`{"password":"Troglodon5986","name":"Chili"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Please provide new information you want to edit the recipe with", env.Message)

	code, env = do(t, srv, http.MethodPut, "/editrecipe", `{
		"password": "Troglodon5986",
		"name": "Chili",
		"recipe": {
			"name": "Smoky Chili",
			"description": "Hearty bean chili, smoked",
			"servings": 6,
			"ingredients": [{"name": "Beans", "unit": "can", "amount": "3"}],
			"instructions": [{"step": 1, "instruction": "Mix and smoke"}]
		}
	}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Successfully updated recipe", env.Message)

	code, _ = do(t, srv, http.MethodGet, "/recipe?name=Smoky%20Chili", "")
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, srv, http.MethodGet, "/recipe?name=Chili", "")
	require.Equal(t, http.StatusNotFound, code)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
