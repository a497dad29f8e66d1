// Package walk repeats a holder query over a path and, recursively, over the
// entries of a directory.
package walk

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/pranshuparmar/wholocked/internal/rm"
	"github.com/pranshuparmar/wholocked/internal/target"
	"github.com/pranshuparmar/wholocked/pkg/model"
	"github.com/rs/zerolog/log"
)

// Lister answers a holder query for one absolute path
type Lister interface {
	Holders(path string) (rm.Listing, error)
}

type Options struct {
	Recursive bool
	// NoExpand skips variable expansion and absolute path resolution
	NoExpand bool
	// KeepGoing yields errors and carries on instead of stopping at the first
	KeepGoing bool
}

type Walker struct {
	lister Lister
}

func New(lister Lister) *Walker {
	return &Walker{lister: lister}
}

// Walk yields the locks on path and, when recursive, on everything below it.
// Errors are yielded with a Lock carrying only the failing path.
//
// Paths are deduplicated by their symlink-resolved key. A symlink below path
// that resolves inside path is skipped, so its target is reported under its
// real name. Links leading outside path are followed and reported under the
// link name.
func (w *Walker) Walk(path string, opts Options, ignore IgnoreSet) iter.Seq2[model.Lock, error] {
	if ignore == nil {
		ignore = IgnoreSet{}
	}
	return func(yield func(model.Lock, error) bool) {
		w.walk(path, "", opts, ignore, yield)
	}
}

// walk returns false once the traversal must stop
func (w *Walker) walk(path, root string, opts Options, ignore IgnoreSet, yield func(model.Lock, error) bool) bool {
	if !opts.NoExpand {
		abs, err := target.ResolvePath(path)
		if err != nil {
			return yield(model.Lock{Path: path}, err) && opts.KeepGoing
		}
		path = abs
	}
	if root == "" {
		root = target.CanonicalKey(path)
	}
	if ignore.Contains(path) {
		return true
	}
	ignore.Add(path)

	log.Debug().Str("path", path).Msg("checking")
	listing, err := w.lister.Holders(path)
	if err != nil {
		if !yield(model.Lock{Path: path}, err) || !opts.KeepGoing {
			return false
		}
	}
	log.Trace().
		Str("path", path).
		Int("holders", len(listing.Holders)).
		Int("needed", listing.Needed).
		Int("allocated", listing.Allocated).
		Strs("reboot", listing.Reasons.Names()).
		Msg("checked")
	for _, h := range listing.Holders {
		if !yield(model.Lock{Path: path, Holder: h, Reasons: listing.Reasons}, nil) {
			return false
		}
	}

	if !opts.Recursive {
		return true
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return true
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return yield(model.Lock{Path: path}, err) && opts.KeepGoing
	}

	child := opts
	child.NoExpand = true
	for _, e := range entries {
		name := filepath.Join(path, e.Name())
		if e.Type()&fs.ModeSymlink != 0 && linksInto(name, root) {
			log.Debug().Str("path", name).Msg("skipping link into the walked tree")
			continue
		}
		if !w.walk(name, root, child, ignore, yield) {
			return false
		}
	}
	return true
}

// linksInto reports whether the link at name resolves to root or below it.
// Dangling links are not skipped.
func linksInto(name, root string) bool {
	if _, err := os.Stat(name); err != nil {
		return false
	}
	key := target.CanonicalKey(name)
	prefix := strings.TrimSuffix(root, string(filepath.Separator)) + string(filepath.Separator)
	return key == root || strings.HasPrefix(key, prefix)
}
