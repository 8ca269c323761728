package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// gitignoreContent keeps credentials and machine-local state of a project
// .ogdash/ directory out of version control. The config file itself is shared.
const gitignoreContent = `# ogdash project-local data (auto-generated)
token
cache/
logs/
*.log
`

// GitignoreContent returns the .gitignore written by EnsureGitignore.
func GitignoreContent() string {
	return gitignoreContent
}

// EnsureGitignore writes a .gitignore into dir unless one exists, creating dir
// as needed. It reports whether a file was written. An existing .gitignore is
// never modified.
func EnsureGitignore(dir string) (bool, error) {
	path := filepath.Join(dir, ".gitignore")

	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking .gitignore at %s: %w", path, err)
	}

	if err = os.MkdirAll(dir, 0o750); err != nil {
		return false, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	//nolint:gosec // .gitignore must be world-readable.
	if err = os.WriteFile(path, []byte(gitignoreContent), 0o644); err != nil {
		return false, fmt.Errorf("writing .gitignore at %s: %w", path, err)
	}
	return true, nil
}
