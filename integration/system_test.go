//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

func TestSystem_E2E_Favorites(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var products struct {
		Items []map[string]any `json:"items"`
	}
	doJSON(t, http.MethodGet, baseURL+"/products", nil, &products, 200)
	if len(products.Items) == 0 {
		t.Fatalf("expected non-empty products")
	}

	pid, _ := products.Items[0]["id"].(string)
	if pid == "" {
		t.Fatalf("product id missing in response: %#v", products.Items[0])
	}

	// start from a known state; the slot may hold favorites from earlier runs
	doJSON(t, http.MethodDelete, baseURL+"/favorites/"+pid, nil, nil, 200)
	doJSON(t, http.MethodPut, baseURL+"/favorites/"+pid, nil, nil, 201)
	assertFavorite(t, pid, true)

	doJSON(t, http.MethodPost, baseURL+"/products/"+pid+"/comments", map[string]any{
		"content": fmt.Sprintf("e2e %d", rand.Intn(100000)),
	}, nil, 201)

	if os.Getenv("E2E_RESTART_STOREFRONT") == "1" {
		restartContainer(t, ctx, "storefront")
		waitReady(t, ctx, baseURL+"/readyz")
		assertFavorite(t, pid, true)
	}

	doJSON(t, http.MethodPost, baseURL+"/favorites/remove", map[string]any{"ids": []string{pid}}, nil, 200)
	assertFavorite(t, pid, false)
}

func TestSystem_E2E_Session(t *testing.T) {
	if os.Getenv("E2E_SESSIONS") != "1" {
		t.Skip("E2E_SESSIONS not set; storefront may run without JWT_SECRET")
	}
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var session struct {
		AccessToken string `json:"access_token"`
	}
	doJSON(t, http.MethodPost, baseURL+"/session", map[string]any{
		"name":     "E2E Viewer",
		"username": fmt.Sprintf("e2e_%d", time.Now().Unix()),
	}, &session, 201)
	if session.AccessToken == "" {
		t.Fatalf("empty access_token")
	}

	var profile struct {
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
	}
	doJSONAuth(t, http.MethodGet, baseURL+"/profile", session.AccessToken, nil, &profile, 200)
	if profile.Profile.Name != "E2E Viewer" {
		t.Fatalf("profile name=%q", profile.Profile.Name)
	}
}

func assertFavorite(t *testing.T, id string, want bool) {
	t.Helper()

	var st struct {
		Favorite bool `json:"favorite"`
	}
	doJSON(t, http.MethodGet, baseURL+"/favorites/"+id, nil, &st, 200)
	if st.Favorite != want {
		t.Fatalf("favorite(%s)=%v want=%v", id, st.Favorite, want)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()
	doJSONAuth(t, method, url, "", body, out, want)
}

func doJSONAuth(t *testing.T, method, url, token string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
