package db

import "fmt"

// ErrNotFound is returned when the store holds no persisted state yet.
var ErrNotFound = fmt.Errorf("not found")
