// Package repository implements the MySQL persistence layer.  This file
// defines sentinel error values shared across the repositories.  Higher
// layers use errors.Is against these values to map persistence failures
// onto the domain error taxonomy instead of inspecting SQL errors.
package repository

import "errors"

// ErrShowNotFound is returned when a show lookup matches no row.
var ErrShowNotFound = errors.New("show not found")

// ErrSeatNotFound is returned when a show seat lookup matches no row.
var ErrSeatNotFound = errors.New("seat not found")

// ErrBookingNotFound is returned when a booking lookup matches no row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrMovieNotFound is returned when a movie lookup matches no row.
var ErrMovieNotFound = errors.New("movie not found")

// ErrScreenNotFound is returned when a screen lookup matches no row.
var ErrScreenNotFound = errors.New("screen not found")
