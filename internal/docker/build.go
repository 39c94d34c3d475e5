package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/pkg/archive"
)

// TargetPlatform is the architecture every image is built for. The function
// fleet runs on a single architecture, so the host platform is never used.
const TargetPlatform = "linux/amd64"

// OutputCallback is invoked with incremental build or push messages.
type OutputCallback func(string)

// BuildImage builds an image from dir using the named Dockerfile (relative to
// dir) and tags it. Base layers are always pulled fresh so a cached image from
// a different architecture can never poison the build.
func (c *Client) BuildImage(ctx context.Context, dir, dockerfile, tag string, onOutput OutputCallback) error {
	if c == nil || c.inner == nil {
		return fmt.Errorf("docker client not initialized")
	}
	if dir == "" {
		return fmt.Errorf("build directory cannot be empty")
	}
	if tag == "" {
		return fmt.Errorf("image tag cannot be empty")
	}
	buildCtx, err := archive.TarWithOptions(dir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("create build context: %w", err)
	}
	defer buildCtx.Close()

	opts := types.ImageBuildOptions{
		Tags:        []string{tag},
		Dockerfile:  dockerfile,
		Platform:    TargetPlatform,
		PullParent:  true,
		Remove:      true,
		ForceRemove: true,
	}
	resp, err := c.inner.ImageBuild(ctx, buildCtx, opts)
	if err != nil {
		return fmt.Errorf("docker image build: %w", err)
	}
	defer resp.Body.Close()
	return drainMessages(resp.Body, "docker image build", onOutput)
}

// TagImage applies an additional tag to an existing local image.
func (c *Client) TagImage(ctx context.Context, source, target string) error {
	if c == nil || c.inner == nil {
		return fmt.Errorf("docker client not initialized")
	}
	if err := c.inner.ImageTag(ctx, source, target); err != nil {
		return fmt.Errorf("tag image %s as %s: %w", source, target, err)
	}
	return nil
}

// PushImage pushes ref to its registry using the supplied credentials.
func (c *Client) PushImage(ctx context.Context, ref, username, password string, onOutput OutputCallback) error {
	if c == nil || c.inner == nil {
		return fmt.Errorf("docker client not initialized")
	}
	auth, err := registry.EncodeAuthConfig(registry.AuthConfig{
		Username: username,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("encode registry auth: %w", err)
	}
	body, err := c.inner.ImagePush(ctx, ref, image.PushOptions{RegistryAuth: auth})
	if err != nil {
		return fmt.Errorf("docker image push: %w", err)
	}
	defer body.Close()
	return drainMessages(body, "docker image push", onOutput)
}

func drainMessages(r io.Reader, op string, onOutput OutputCallback) error {
	decoder := json.NewDecoder(r)
	for {
		var msg streamMessage
		if err := decoder.Decode(&msg); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("decode %s output: %w", op, err)
		}
		if errMsg := msg.errorMessage(); errMsg != "" {
			return fmt.Errorf("%s: %s", op, errMsg)
		}
		if line := msg.render(); line != "" && onOutput != nil {
			onOutput(line)
		}
	}
}

type streamMessage struct {
	Stream      string            `json:"stream"`
	Status      string            `json:"status"`
	ID          string            `json:"id"`
	Progress    string            `json:"progress"`
	Error       string            `json:"error"`
	ErrorDetail streamErrorDetail `json:"errorDetail"`
}

type streamErrorDetail struct {
	Message string `json:"message"`
}

func (m streamMessage) errorMessage() string {
	if strings.TrimSpace(m.Error) != "" {
		return strings.TrimSpace(m.Error)
	}
	if strings.TrimSpace(m.ErrorDetail.Message) != "" {
		return strings.TrimSpace(m.ErrorDetail.Message)
	}
	return ""
}

func (m streamMessage) render() string {
	if s := strings.TrimSpace(m.Stream); s != "" {
		return s
	}
	if m.Status == "" {
		return ""
	}
	if m.ID != "" {
		return fmt.Sprintf("%s: %s", m.ID, m.Status)
	}
	return m.Status
}
