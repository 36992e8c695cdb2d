package db

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Store implementations. Callers match them
// with errors.Is and never look at provider-specific error text.
var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrIndexNotFound = errors.New("index not found")
	ErrIndexExists   = errors.New("index already exists")
	ErrInvalidQuery  = errors.New("invalid query")
	ErrConnection    = errors.New("connection error")
)

// Op names the store operation that failed, for wrapped errors.
type Op string

const (
	OpPing        Op = "ping"
	OpHSet        Op = "hset"
	OpHGetAll     Op = "hgetall"
	OpDel         Op = "del"
	OpExists      Op = "exists"
	OpGet         Op = "get"
	OpSet         Op = "set"
	OpCreateIndex Op = "create_index"
	OpDropIndex   Op = "drop_index"
	OpIndexInfo   Op = "index_info"
	OpSearch      Op = "search"
)

// Error wraps a low-level store failure with the operation that produced it.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("db: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a wrapped store error.
func NewError(op Op, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
