package repository

import "errors"

// ErrDuplicate is returned by Create when a record with the same natural key
// already exists. Callers resolve it by reading the existing record.
var ErrDuplicate = errors.New("record already exists")
