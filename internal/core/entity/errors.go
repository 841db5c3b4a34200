package entity

import (
	"errors"
	"fmt"
)

// Lookup errors
var (
	ErrEntityDead       = errors.New("entity is dead or inaccessible")
	ErrComponentMissing = errors.New("component is not bound")
)

// DerefError means the entity's own backing handle could not be fetched,
// usually a lifecycle bug. The wrapped error is the objdb dead/locked error.
type DerefError struct {
	Err error
}

func (e *DerefError) Error() string {
	return fmt.Sprintf("entity is inaccessible: %v", e.Err)
}

func (e *DerefError) Unwrap() error { return e.Err }

func (e *DerefError) Is(target error) bool { return target == ErrEntityDead }

// MissingError means no component is bound under the requested key, which is
// often benign.
type MissingError struct {
	Key RawKey
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("no component bound under key %#x", uint64(e.Key))
}

func (e *MissingError) Unwrap() error { return ErrComponentMissing }

// ComponentError means the key resolved but the component's own handle could
// not be fetched. The wrapped error is the objdb dead/locked error.
type ComponentError struct {
	Key RawKey
	Err error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("component under key %#x is inaccessible: %v", uint64(e.Key), e.Err)
}

func (e *ComponentError) Unwrap() error { return e.Err }
