// Package git provides the version-control collaborator for newsmerge: the
// contributor list for the authors section, the post-merge commit and the
// HEAD revision recorded in the merge history. It uses the go-git library,
// so no git CLI installation is required.
package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Fallback identity used when the repository has no user configured.
const (
	DefaultAuthorName  = "newsmerge"
	DefaultAuthorEmail = "newsmerge@localhost"
)

// Repo is an opened git repository.
type Repo struct {
	repo *git.Repository
	root string
}

// openRepo opens a git repository at the specified path or current working directory.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// up the directory tree to find the repository root.
// If path is empty, the current working directory is used.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	logDebug("[git] repository opened successfully")
	return repo, nil
}

// Open opens the repository containing path (or the working directory when empty).
func Open(path string) (*Repo, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	return &Repo{repo: repo, root: worktree.Filesystem.Root()}, nil
}

// IsGitRepository checks if path (or the working directory) is within a git repository.
func IsGitRepository(path string) bool {
	_, err := openRepo(path)
	result := err == nil
	logDebug("[git] IsGitRepository: %v", result)
	return result
}

// Root returns the absolute path of the working tree.
func (r *Repo) Root() string {
	return r.root
}

// head returns the HEAD reference, or nil for a repository without commits.
func (r *Repo) head() (*plumbing.Reference, error) {
	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting HEAD reference: %w", err)
	}
	return head, nil
}

// HeadRevision returns the abbreviated HEAD commit hash.
// A repository without commits yields an empty string.
func (r *Repo) HeadRevision() (string, error) {
	head, err := r.head()
	if err != nil || head == nil {
		return "", err
	}
	return shortHash(head.Hash()), nil
}

// CurrentBranch returns the name of the current branch.
// Returns empty string if in detached HEAD state or before the first commit.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.head()
	if err != nil || head == nil {
		return "", err
	}

	if !head.Name().IsBranch() {
		logDebug("[git] CurrentBranch: detached HEAD state")
		return "", nil
	}

	branch := head.Name().Short()
	logDebug("[git] CurrentBranch: %s", branch)
	return branch, nil
}

// taggedCommits maps every tagged commit to its tag name.
// Annotated tags are resolved to the commit they point at.
func (r *Repo) taggedCommits() (map[plumbing.Hash]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	tagged := make(map[plumbing.Hash]string)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		if tag, err := r.repo.TagObject(hash); err == nil {
			commit, err := tag.Commit()
			if err != nil {
				logDebug("[git] skipping tag %s: %v", ref.Name().Short(), err)
				return nil
			}
			hash = commit.Hash
		}
		tagged[hash] = ref.Name().Short()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tagged, nil
}

// Authors returns the unique author names of the commits made since the
// newest tag reachable from HEAD, sorted case-insensitively. Without tags the
// whole history is used. The tagged commit itself belongs to the previous release.
func (r *Repo) Authors() ([]string, error) {
	head, err := r.head()
	if err != nil || head == nil {
		return nil, err
	}

	tagged, err := r.taggedCommits()
	if err != nil {
		return nil, err
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	defer iter.Close()

	seen := make(map[string]bool)
	var authors []string
	err = iter.ForEach(func(c *object.Commit) error {
		if tag, ok := tagged[c.Hash]; ok {
			logDebug("[git] Authors: stopping at tag %s (%s)", tag, shortHash(c.Hash))
			return storer.ErrStop
		}
		name := strings.TrimSpace(c.Author.Name)
		if name != "" && !seen[name] {
			seen[name] = true
			authors = append(authors, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking log: %w", err)
	}

	sort.Slice(authors, func(i, j int) bool {
		a, b := strings.ToLower(authors[i]), strings.ToLower(authors[j])
		if a != b {
			return a < b
		}
		return authors[i] < authors[j]
	})

	logDebug("[git] Authors: %d contributor(s)", len(authors))
	return authors, nil
}

// Commit stages paths (changed or deleted) and records them in one commit.
// It returns the abbreviated hash of the new commit, or "" when paths is empty.
func (r *Repo) Commit(paths []string, message string) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	for _, p := range paths {
		rel, err := r.relPath(p)
		if err != nil {
			return "", err
		}
		// Add also stages deletions; a path that was never tracked and is gone has nothing to stage.
		if _, err := worktree.Add(rel); err != nil && !errors.Is(err, index.ErrEntryNotFound) {
			return "", fmt.Errorf("staging %s: %w", rel, err)
		}
		logDebug("[git] Commit: staged %s", rel)
	}

	sig := r.signature()
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	if err != nil {
		return "", fmt.Errorf("creating commit: %w", err)
	}

	logDebug("[git] Commit: created %s", shortHash(hash))
	return shortHash(hash), nil
}

// signature returns the configured user identity, or the newsmerge fallback.
func (r *Repo) signature() *object.Signature {
	sig := &object.Signature{
		Name:  DefaultAuthorName,
		Email: DefaultAuthorEmail,
		When:  time.Now(),
	}

	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		logDebug("[git] reading config: %v", err)
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}

// IgnorePath adds p as a directory entry to the .gitignore at the root of the
// working tree unless the repository already ignores it. Paths outside the
// working tree are left alone. It reports whether .gitignore was changed.
func (r *Repo) IgnorePath(p string) (bool, error) {
	rel, err := r.relPath(p)
	if err != nil {
		logDebug("[git] not ignoring %s: %v", p, err)
		return false, nil
	}
	if rel == "." {
		return false, nil
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}
	patterns, err := gitignore.ReadPatterns(worktree.Filesystem, nil)
	if err != nil {
		return false, fmt.Errorf("reading ignore patterns: %w", err)
	}
	if gitignore.NewMatcher(patterns).Match(strings.Split(rel, "/"), true) {
		logDebug("[git] %s already ignored", rel)
		return false, nil
	}

	path := filepath.Join(r.root, ".gitignore")
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	entry := "/" + rel + "/\n"
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		entry = "\n" + entry
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("closing %s: %w", path, err)
	}

	logDebug("[git] added /%s/ to %s", rel, path)
	return true, nil
}

// relPath converts p to a slash separated path relative to the working tree root.
func (r *Repo) relPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}

	root := r.root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the repository %s", p, r.root)
	}
	return filepath.ToSlash(rel), nil
}

// shortHash abbreviates a commit hash to seven characters.
func shortHash(h plumbing.Hash) string {
	return h.String()[:7]
}
