package gitutil

import "time"

// Fake is an in-memory DateProvider for tests. Dates maps file paths to
// their last-modified time; files absent from the map resolve to nil.
type Fake struct {
	Available bool
	Root      string
	RootErr   error
	Dates     map[string]time.Time

	// Queried records every file passed to LastModified, in call order.
	Queried []string
}

// IsAvailable reports the configured availability.
func (f *Fake) IsAvailable() bool { return f.Available }

// RepoRoot returns the configured root or error.
func (f *Fake) RepoRoot() (string, error) {
	if f.RootErr != nil {
		return "", f.RootErr
	}
	return f.Root, nil
}

// LastModified looks the file up in Dates.
func (f *Fake) LastModified(file string) *time.Time {
	f.Queried = append(f.Queried, file)
	if t, ok := f.Dates[file]; ok {
		utc := t.UTC()
		return &utc
	}
	return nil
}

// BatchLastModified resolves all files sequentially; the fake has no
// concurrency to bound.
func (f *Fake) BatchLastModified(files []string) map[string]*time.Time {
	out := make(map[string]*time.Time, len(files))
	for _, file := range files {
		out[file] = f.LastModified(file)
	}
	return out
}
