package localstore

import "io/fs"

// Option configures a FileStore.
type Option func(*FileStore)

// WithFileMode sets the permissions of the state file.
func WithFileMode(perm fs.FileMode) Option {
	return func(s *FileStore) {
		s.perm = perm
	}
}
