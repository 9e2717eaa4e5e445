// Package repository implements the relational store over database/sql.
// Sentinel errors declared here let the service layer distinguish failure
// scenarios without inspecting driver-specific error strings at every
// call site.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique
// email index.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a lookup matches no row.  Repositories
// translate sql.ErrNoRows into this so callers never import database/sql
// just to test for absence.
var ErrNotFound = errors.New("not found")
