package storage

import (
	"os"
)

func NewTestMemoryLevelDBBackend() (*LevelDBBackend, error) {
	return NewStorage(&Config{Scheme: "memory"})
}

func CleanDB(path string) {
	os.RemoveAll(path)
}

func NewTestStorage() *LevelDBBackend {
	st, err := NewTestMemoryLevelDBBackend()
	if err != nil {
		panic(err)
	}

	return st
}
