package walk

import "github.com/pranshuparmar/wholocked/internal/target"

// IgnoreSet holds canonical keys of paths that must not be queried. It is
// shared by every step of one walk and is not safe for concurrent use.
type IgnoreSet map[string]struct{}

// NewIgnoreSet seeds a set with user supplied paths
func NewIgnoreSet(paths ...string) IgnoreSet {
	s := make(IgnoreSet, len(paths))
	for _, p := range paths {
		abs, err := target.ResolvePath(p)
		if err != nil {
			continue
		}
		s.Add(abs)
	}
	return s
}

func (s IgnoreSet) Add(abs string) {
	s[target.CanonicalKey(abs)] = struct{}{}
}

func (s IgnoreSet) Contains(abs string) bool {
	_, ok := s[target.CanonicalKey(abs)]
	return ok
}
