package history

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/modname"
)

// FileStats is the tally for one file.
type FileStats struct {
	Churn   int `json:"churn"`
	Commits int `json:"commits"`
}

// Stats maps slash-separated repository paths to their tallies.
type Stats map[string]FileStats

// Churn opens the repository containing dir and tallies the history of HEAD.
func Churn(ctx context.Context, dir string) (Stats, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistory, err, "open repository at %s", dir)
	}
	return RepositoryChurn(ctx, repo)
}

// RepositoryRoot returns the work tree root of the repository containing
// dir. Paths in [Stats] are relative to it.
func RepositoryRoot(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeHistory, err, "open repository at %s", dir)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeHistory, err, "repository at %s has no work tree", dir)
	}
	return wt.Filesystem.Root(), nil
}

// RepositoryChurn tallies the history of HEAD in repo.
func RepositoryChurn(ctx context.Context, repo *git.Repository) (Stats, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistory, err, "resolve HEAD")
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistory, err, "read log")
	}
	var commits []*object.Commit
	if err := iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, c)
		return nil
	}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistory, err, "read log")
	}
	slices.Reverse(commits)

	stats := Stats{}
	for _, c := range commits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stats.apply(ctx, c); err != nil {
			return nil, errors.Wrap(errors.ErrCodeHistory, err, "commit %s", c.Hash)
		}
	}
	return stats, nil
}

func (s Stats) apply(ctx context.Context, c *object.Commit) error {
	if c.NumParents() > 1 {
		return nil
	}
	tree, err := c.Tree()
	if err != nil {
		return err
	}

	parentTree := &object.Tree{}
	if c.NumParents() == 1 {
		parent, err := c.Parent(0)
		if err != nil {
			return err
		}
		if parentTree, err = parent.Tree(); err != nil {
			return err
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return err
	}
	for _, ch := range changes {
		action, err := ch.Action()
		if err != nil {
			return err
		}
		switch action {
		case merkletrie.Insert:
			s[ch.To.Name] = FileStats{Commits: 1}
		case merkletrie.Delete:
			delete(s, ch.From.Name)
		case merkletrie.Modify:
			st := s[ch.From.Name]
			st.Commits++
			if ch.From.Name != ch.To.Name {
				// a rename moves the tally; edits made with it are not churn
				delete(s, ch.From.Name)
				s[ch.To.Name] = st
				continue
			}
			lines, err := changedLines(ctx, ch)
			if err != nil {
				return err
			}
			st.Churn += lines
			s[ch.To.Name] = st
		}
	}
	return nil
}

func changedLines(ctx context.Context, ch *object.Change) (int, error) {
	patch, err := ch.PatchContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("patch %s: %w", ch.To.Name, err)
	}
	n := 0
	for _, fs := range patch.Stats() {
		n += fs.Addition + fs.Deletion
	}
	return n, nil
}

// Paths returns the tallied paths sorted by churn, highest first, ties by
// path.
func (s Stats) Paths() []string {
	paths := slices.Collect(maps.Keys(s))
	slices.SortFunc(paths, func(a, b string) int {
		if c := cmp.Compare(s[b].Churn, s[a].Churn); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return paths
}

// ModuleChurn maps repository paths to module names. repoDir is the
// repository root the paths are relative to; r decides which files are
// modules. Files outside r.Root or without r.Extension are ignored.
func ModuleChurn(stats Stats, repoDir string, r modname.Resolver) map[string]FileStats {
	out := make(map[string]FileStats)
	for path, st := range stats {
		if r.Extension != "" && !strings.HasSuffix(path, r.Extension) {
			continue
		}
		name, err := r.FromPath(filepath.Join(repoDir, filepath.FromSlash(path)))
		if err != nil {
			continue
		}
		out[name] = st
	}
	return out
}

// ChurnValues extracts the churn figure from module stats.
func ChurnValues(stats map[string]FileStats) map[string]int {
	out := make(map[string]int, len(stats))
	for name, st := range stats {
		out[name] = st.Churn
	}
	return out
}
