package repository

import "time"

// CSVOption applies a configuration option to the CSVStore.
type CSVOption func(*CSVStore)

// WithLockRetry sets how often a blocked append retries the file lock.
func WithLockRetry(interval time.Duration) CSVOption {
	return func(s *CSVStore) {
		if interval > 0 {
			s.lockRetry = interval
		}
	}
}

// WithLockPath overrides the lock file path, which defaults to "<path>.lock".
func WithLockPath(path string) CSVOption {
	return func(s *CSVStore) {
		if path != "" {
			s.lockPath = path
		}
	}
}
