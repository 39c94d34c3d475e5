package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDoSendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]Project{})
	}))
	defer server.Close()

	cli, err := New(server.URL, "secret-token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := cli.ListProjects(context.Background()); err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestDoDecodesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"name already taken"}`))
	}))
	defer server.Close()

	cli, err := New(server.URL, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = cli.CreateProject(context.Background(), CreateProjectInput{Name: "demo"})
	apiErr, ok := err.(APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity || apiErr.Message != "name already taken" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestReleaseInputOmitsEmptyOptionals(t *testing.T) {
	data, err := json.Marshal(ReleaseInput{Runtime: "nodejs20", MemoryMB: 512, TimeoutSeconds: 30})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"database", "cache", "storage", "layers", "key", "image", "handler"} {
		if _, present := decoded[key]; present {
			t.Fatalf("expected %q to be omitted from payload: %s", key, data)
		}
	}
}

func TestNewNormalisesBaseURL(t *testing.T) {
	cli, err := New("api.usevaf.com/", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cli.BaseURL() != "https://api.usevaf.com" {
		t.Fatalf("unexpected base url: %s", cli.BaseURL())
	}
}
