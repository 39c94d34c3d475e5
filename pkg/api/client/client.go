package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client provides typed access to the vaf API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New constructs a Client pointing at the provided API base URL. The token may
// be empty for unauthenticated calls such as Login.
func New(base, token string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		return nil, fmt.Errorf("api base url cannot be empty")
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// BaseURL reports the normalised API base URL the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError represents an error response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body any, v any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := c.baseURL + path
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Normalise transport failures so callers never see url.Error internals.
		if uerr, ok := err.(*url.Error); ok {
			return fmt.Errorf("unable to reach %s: %v", c.baseURL, uerr.Err)
		}
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg := extractError(resp.Body)
		return APIError{Status: resp.StatusCode, Message: msg}
	}

	if v == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func extractError(body io.Reader) string {
	if body == nil {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return ""
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}
	return strings.TrimSpace(payload.Error)
}

// LoginResponse captures the token payload emitted by the API.
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return LoginResponse{}, err
	}
	return resp, nil
}

// Project describes a deployable unit.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Region    string    `json:"region"`
	CreatedAt time.Time `json:"created_at"`
}

// ListProjects returns projects for the authenticated account.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProjectInput captures the payload for project creation.
type CreateProjectInput struct {
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

// CreateProject provisions a new project.
func (c *Client) CreateProject(ctx context.Context, input CreateProjectInput) (Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodPost, "/projects", input, &project); err != nil {
		return Project{}, err
	}
	return project, nil
}

// DeleteProject removes a project and all of its environments.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	path := fmt.Sprintf("/projects/%s", url.PathEscape(projectID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Environment is a named deployment target within a project.
type Environment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListEnvironments returns the environments declared for a project.
func (c *Client) ListEnvironments(ctx context.Context, projectID string) ([]Environment, error) {
	path := fmt.Sprintf("/projects/%s/environments", url.PathEscape(projectID))
	var envs []Environment
	if err := c.do(ctx, http.MethodGet, path, nil, &envs); err != nil {
		return nil, err
	}
	return envs, nil
}

// EnvVar represents an environment variable visible to a function.
type EnvVar struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ListEnvVars returns environment variables for the environment.
func (c *Client) ListEnvVars(ctx context.Context, projectID, envID string) ([]EnvVar, error) {
	path := fmt.Sprintf("/projects/%s/environments/%s/env-vars", url.PathEscape(projectID), url.PathEscape(envID))
	var vars []EnvVar
	if err := c.do(ctx, http.MethodGet, path, nil, &vars); err != nil {
		return nil, err
	}
	return vars, nil
}

// SetEnvVar stores an environment variable.
func (c *Client) SetEnvVar(ctx context.Context, projectID, envID string, v EnvVar) error {
	path := fmt.Sprintf("/projects/%s/environments/%s/env-vars", url.PathEscape(projectID), url.PathEscape(envID))
	return c.do(ctx, http.MethodPut, path, v, nil)
}

// UnsetEnvVar removes an environment variable by key.
func (c *Client) UnsetEnvVar(ctx context.Context, projectID, envID, key string) error {
	path := fmt.Sprintf("/projects/%s/environments/%s/env-vars/%s", url.PathEscape(projectID), url.PathEscape(envID), url.PathEscape(key))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Database is a managed database attachable to a release.
type Database struct {
	Name      string    `json:"name"`
	Engine    string    `json:"engine"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ListDatabases returns the account's managed databases.
func (c *Client) ListDatabases(ctx context.Context) ([]Database, error) {
	var dbs []Database
	if err := c.do(ctx, http.MethodGet, "/databases", nil, &dbs); err != nil {
		return nil, err
	}
	return dbs, nil
}

// CreateDatabaseInput captures the payload for database creation.
type CreateDatabaseInput struct {
	Name   string `json:"name"`
	Engine string `json:"engine,omitempty"`
}

// CreateDatabase provisions a managed database.
func (c *Client) CreateDatabase(ctx context.Context, input CreateDatabaseInput) (Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodPost, "/databases", input, &db); err != nil {
		return Database{}, err
	}
	return db, nil
}

// DeleteDatabase removes a managed database.
func (c *Client) DeleteDatabase(ctx context.Context, name string) error {
	path := fmt.Sprintf("/databases/%s", url.PathEscape(name))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Cache is a managed cache attachable to a release.
type Cache struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ListCaches returns the account's managed caches.
func (c *Client) ListCaches(ctx context.Context) ([]Cache, error) {
	var caches []Cache
	if err := c.do(ctx, http.MethodGet, "/caches", nil, &caches); err != nil {
		return nil, err
	}
	return caches, nil
}

// CreateCache provisions a managed cache.
func (c *Client) CreateCache(ctx context.Context, name string) (Cache, error) {
	var cache Cache
	if err := c.do(ctx, http.MethodPost, "/caches", map[string]string{"name": name}, &cache); err != nil {
		return Cache{}, err
	}
	return cache, nil
}

// DeleteCache removes a managed cache.
func (c *Client) DeleteCache(ctx context.Context, name string) error {
	path := fmt.Sprintf("/caches/%s", url.PathEscape(name))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// UploadTarget is a pre-signed destination for one artifact upload.
type UploadTarget struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
}

// UploadTargetFor requests a pre-signed upload destination for an artifact of
// the given kind ("package" or "layer").
func (c *Client) UploadTargetFor(ctx context.Context, projectID, envID, kind string) (UploadTarget, error) {
	path := fmt.Sprintf("/projects/%s/environments/%s/deployment/upload-url?kind=%s",
		url.PathEscape(projectID), url.PathEscape(envID), url.QueryEscape(kind))
	var target UploadTarget
	if err := c.do(ctx, http.MethodGet, path, nil, &target); err != nil {
		return UploadTarget{}, err
	}
	return target, nil
}

// Layer references a published dependency layer.
type Layer struct {
	Reference string `json:"reference"`
	Version   int    `json:"version"`
}

// PublishLayerInput registers an uploaded layer archive.
type PublishLayerInput struct {
	Key       string `json:"key"`
	SizeBytes int64  `json:"size_bytes"`
}

// PublishLayer registers an uploaded layer and returns its reference.
func (c *Client) PublishLayer(ctx context.Context, projectID, envID string, input PublishLayerInput) (Layer, error) {
	path := fmt.Sprintf("/projects/%s/environments/%s/deployment/layer", url.PathEscape(projectID), url.PathEscape(envID))
	var layer Layer
	if err := c.do(ctx, http.MethodPost, path, input, &layer); err != nil {
		return Layer{}, err
	}
	return layer, nil
}

// RegistryConfig describes the container registry assigned to an environment.
type RegistryConfig struct {
	RepositoryURI string `json:"repository_uri"`
	RegistryID    string `json:"registry_id"`
	LoginCommand  string `json:"login_command"`
	Username      string `json:"username"`
	Password      string `json:"password"`
}

// GetRegistryConfig fetches the registry configuration for container releases.
func (c *Client) GetRegistryConfig(ctx context.Context, projectID, envID string) (RegistryConfig, error) {
	path := fmt.Sprintf("/projects/%s/environments/%s/deployment/ecr-config", url.PathEscape(projectID), url.PathEscape(envID))
	var cfg RegistryConfig
	if err := c.do(ctx, http.MethodGet, path, nil, &cfg); err != nil {
		return RegistryConfig{}, err
	}
	return cfg, nil
}

// ReleaseInput is the payload submitted to start a release. Optional references
// carry omitempty so absent values are never sent as empty strings.
type ReleaseInput struct {
	Key            string   `json:"key,omitempty"`
	Image          string   `json:"image,omitempty"`
	Runtime        string   `json:"runtime"`
	Handler        string   `json:"handler,omitempty"`
	MemoryMB       int      `json:"memory_mb"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	Database       string   `json:"database,omitempty"`
	Cache          string   `json:"cache,omitempty"`
	Storage        string   `json:"storage,omitempty"`
	Layers         []string `json:"layers,omitempty"`
}

// Release is the backend's view of one deployment attempt.
type Release struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Logs   string `json:"logs"`
	URL    string `json:"url"`
	Error  string `json:"error"`
}

// CreateRelease submits the release payload and returns the initial record.
func (c *Client) CreateRelease(ctx context.Context, projectID, envID string, input ReleaseInput) (Release, error) {
	path := fmt.Sprintf("/projects/%s/environments/%s/deployment/deploy", url.PathEscape(projectID), url.PathEscape(envID))
	var release Release
	if err := c.do(ctx, http.MethodPost, path, input, &release); err != nil {
		return Release{}, err
	}
	return release, nil
}

// GetLatestRelease fetches the most recent release for the environment.
func (c *Client) GetLatestRelease(ctx context.Context, projectID, envID string) (Release, error) {
	path := fmt.Sprintf("/projects/%s/environments/%s/deployment/latest",
		url.PathEscape(projectID), url.PathEscape(envID))
	var release Release
	if err := c.do(ctx, http.MethodGet, path, nil, &release); err != nil {
		return Release{}, err
	}
	return release, nil
}

// GetRelease fetches the current state of a release.
func (c *Client) GetRelease(ctx context.Context, projectID, envID, releaseID string) (Release, error) {
	path := fmt.Sprintf("/projects/%s/environments/%s/deployment/%s",
		url.PathEscape(projectID), url.PathEscape(envID), url.PathEscape(releaseID))
	var release Release
	if err := c.do(ctx, http.MethodGet, path, nil, &release); err != nil {
		return Release{}, err
	}
	return release, nil
}
