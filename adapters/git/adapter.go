// Package git reads repository context for CI cost reports and detects
// whether a change touches Terraform files at all.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"ionos-finops/internal/errors"
)

// Adapter runs git against one repository
type Adapter struct {
	repoPath string
	gitPath  string
}

// Config configures the Git adapter
type Config struct {
	// RepoPath is the repository path
	RepoPath string `json:"repo_path"`

	// GitPath is the git executable path (defaults to "git")
	GitPath string `json:"git_path"`
}

// New creates a new Git adapter
func New(config Config) (*Adapter, error) {
	repoPath := config.RepoPath
	if repoPath == "" {
		repoPath = "."
	}
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "failed to resolve repo path", err)
	}

	gitPath := config.GitPath
	if gitPath == "" {
		gitPath = "git"
	}

	return &Adapter{repoPath: absPath, gitPath: gitPath}, nil
}

// Context is the repository state an estimate was made from
type Context struct {
	IsRepo      bool   `json:"is_repo"`
	Branch      string `json:"branch,omitempty"`
	Commit      string `json:"commit,omitempty"`
	ShortCommit string `json:"short_commit,omitempty"`
	IsDirty     bool   `json:"is_dirty"`
	RemoteURL   string `json:"remote_url,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Repository  string `json:"repository,omitempty"`
}

// GetContext retrieves the current git context. Outside a repository it
// returns a Context with IsRepo false.
func (a *Adapter) GetContext(ctx context.Context) (*Context, error) {
	isRepo, err := a.isGitRepo(ctx)
	if err != nil {
		return nil, err
	}

	gitCtx := &Context{IsRepo: isRepo}
	if !isRepo {
		return gitCtx, nil
	}

	if branch, err := a.output(ctx, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		gitCtx.Branch = branch
	}
	if commit, err := a.output(ctx, "rev-parse", "HEAD"); err == nil {
		gitCtx.Commit = commit
		if len(commit) >= 7 {
			gitCtx.ShortCommit = commit[:7]
		}
	}
	if status, err := a.output(ctx, "status", "--porcelain"); err == nil {
		gitCtx.IsDirty = status != ""
	}
	if remoteURL, err := a.output(ctx, "remote", "get-url", "origin"); err == nil {
		gitCtx.RemoteURL = remoteURL
		gitCtx.Owner, gitCtx.Repository = parseRemoteURL(remoteURL)
	}

	return gitCtx, nil
}

// ChangedFiles returns files changed between two refs
func (a *Adapter) ChangedFiles(ctx context.Context, base, head string) ([]string, error) {
	if base == "" {
		base = "HEAD~1"
	}
	if head == "" {
		head = "HEAD"
	}

	out, err := a.output(ctx, "diff", "--name-only", base, head)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// HasTerraformChanges reports whether any .tf, .tfvars or .hcl file
// changed between base and head
func (a *Adapter) HasTerraformChanges(ctx context.Context, base, head string) (bool, error) {
	files, err := a.ChangedFiles(ctx, base, head)
	if err != nil {
		return false, err
	}
	for _, file := range files {
		if IsTerraformFile(file) {
			return true, nil
		}
	}
	return false, nil
}

// IsTerraformFile reports whether path holds Terraform configuration
func IsTerraformFile(path string) bool {
	switch filepath.Ext(path) {
	case ".tf", ".tfvars", ".hcl":
		return true
	}
	return false
}

func (a *Adapter) isGitRepo(ctx context.Context) (bool, error) {
	_, err := a.run(ctx, "rev-parse", "--git-dir")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, errors.Wrap(errors.TypeConfig, "git is not available", err)
	}
	return true, nil
}

func (a *Adapter) output(ctx context.Context, args ...string) (string, error) {
	out, err := a.run(ctx, args...)
	if err != nil {
		return "", errors.Newf(errors.TypeInput, "git %s failed: %v", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(out), nil
}

func (a *Adapter) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, a.gitPath, args...)
	cmd.Dir = a.repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

var (
	sshRemote   = regexp.MustCompile(`git@[^:]+:([^/]+)/(.+?)(?:\.git)?$`)
	httpsRemote = regexp.MustCompile(`https?://[^/]+/([^/]+)/(.+?)(?:\.git)?$`)
)

// parseRemoteURL parses owner/repo from git remote URL
func parseRemoteURL(url string) (owner, repo string) {
	if m := sshRemote.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2]
	}
	if m := httpsRemote.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2]
	}
	return "", ""
}
