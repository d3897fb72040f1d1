// Package source resolves a user-supplied locator into compile timestamps.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joescharf/codetime/internal/git"
	"github.com/joescharf/codetime/internal/tags"
)

// ErrSourceUnavailable is returned when tag data cannot be read at all.
var ErrSourceUnavailable = errors.New("source unavailable")

// Kind identifies where tag data came from.
type Kind string

const (
	KindFile   Kind = "file"
	KindRepo   Kind = "repo"
	KindRemote Kind = "remote"
)

// Options control locator resolution.
type Options struct {
	// Remote forces the locator to be listed with `git ls-remote --tags`.
	Remote bool
}

// Input is the parsed content of a source.
type Input struct {
	Kind    Kind
	Locator string
	// Root is the repository top level for KindRepo inputs.
	Root       string
	Timestamps []time.Time
}

// Loader reads tag data from files and git repositories.
type Loader struct {
	git git.Client
}

// NewLoader returns a Loader backed by the given git client.
func NewLoader(gc git.Client) *Loader {
	return &Loader{git: gc}
}

// Resolve decides which kind of source a locator refers to.
func (l *Loader) Resolve(locator string, opts Options) Kind {
	if opts.Remote || git.IsRemoteLocator(locator) {
		return KindRemote
	}
	if fi, err := os.Stat(locator); err == nil && fi.IsDir() {
		return KindRepo
	}
	return KindFile
}

// Name returns a short label for reports: the repository directory name for
// local repos, the file name for files, and the full locator for remotes.
func (in *Input) Name() string {
	switch in.Kind {
	case KindRemote:
		return in.Locator
	case KindRepo:
		return filepath.Base(in.Root)
	default:
		return filepath.Base(filepath.Clean(in.Locator))
	}
}

// Load reads and parses the tags behind locator.
func (l *Loader) Load(locator string, opts Options) (*Input, error) {
	kind := l.Resolve(locator, opts)
	in := &Input{Kind: kind, Locator: locator}

	var err error
	switch kind {
	case KindRemote:
		in.Timestamps, err = l.loadRemote(locator)
	case KindRepo:
		in.Root, in.Timestamps, err = l.loadRepo(locator)
	default:
		in.Timestamps, err = loadFile(locator)
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

func loadFile(path string) ([]time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't open file %s: %v", ErrSourceUnavailable, path, err)
	}
	defer f.Close()

	stamps, err := tags.ParseLines(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stamps, nil
}

func (l *Loader) loadRepo(path string) (string, []time.Time, error) {
	if !l.git.IsRepo(path) {
		return "", nil, fmt.Errorf("%w: %s is not a git repository", ErrSourceUnavailable, path)
	}
	root, err := l.git.RepoRoot(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	out, err := l.git.TagList(root)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	stamps, err := tags.ParseLines(strings.NewReader(out))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", root, err)
	}
	return root, stamps, nil
}

func (l *Loader) loadRemote(remote string) ([]time.Time, error) {
	out, err := l.git.LsRemoteTags(remote)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	stamps, err := tags.ParseRemoteListing(strings.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", remote, err)
	}
	return stamps, nil
}
