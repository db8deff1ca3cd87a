package git

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		url   string
		owner string
		repo  string
	}{
		{"git@github.com:acme/infra.git", "acme", "infra"},
		{"https://github.com/acme/infra.git", "acme", "infra"},
		{"https://gitlab.example.com/acme/infra", "acme", "infra"},
		{"file:///tmp/repo", "", ""},
	}

	for _, tt := range tests {
		owner, repo := parseRemoteURL(tt.url)
		assert.Equal(t, tt.owner, owner, tt.url)
		assert.Equal(t, tt.repo, repo, tt.url)
	}
}

func TestIsTerraformFile(t *testing.T) {
	assert.True(t, IsTerraformFile("modules/net/main.tf"))
	assert.True(t, IsTerraformFile("prod.tfvars"))
	assert.True(t, IsTerraformFile("terragrunt.hcl"))
	assert.False(t, IsTerraformFile("README.md"))
	assert.False(t, IsTerraformFile("plan.json"))
}

func TestGetContextOutsideRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	a, err := New(Config{RepoPath: dir})
	require.NoError(t, err)

	got, err := a.GetContext(context.Background())
	require.NoError(t, err)
	assert.False(t, got.IsRepo)
}

func TestMissingGitBinary(t *testing.T) {
	a, err := New(Config{RepoPath: t.TempDir(), GitPath: "git-does-not-exist"})
	require.NoError(t, err)

	_, err = a.GetContext(context.Background())
	assert.Error(t, err)
}
