package storage

// Entry is one stored pair. Value holds the canonical JSON form produced by
// value.Marshal.
type Entry struct {
	Key   string
	Value []byte
}
