// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package pagination converts 1-based page requests to offsets and builds the
// page navigation shown under list views. All arithmetic is overflow checked
// or saturating; nothing here can panic on hostile input.
package pagination

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/config"
)

// ErrOverflow is returned when an offset or range does not fit in uint64.
var ErrOverflow = errors.New("numerical overflow")

// Page is a 1-based page request.
type Page struct {
	Page uint64 `json:"page"`
	Size uint64 `json:"size"`
}

// Offset is a zero-based item offset with a window size.
type Offset struct {
	Offset uint64 `json:"offset"`
	Size   uint64 `json:"size"`
}

// Range is the half-open item range [Start, End).
type Range struct {
	Start uint64
	End   uint64
}

// ToOffset computes (page-1)*size. Page 0 fails.
func (p Page) ToOffset() (Offset, error) {
	if p.Page == 0 {
		return Offset{}, ErrOverflow
	}
	hi, lo := bits.Mul64(p.Page-1, p.Size)
	if hi != 0 {
		return Offset{}, ErrOverflow
	}
	return Offset{Offset: lo, Size: p.Size}, nil
}

// ToRange computes [offset, offset+size).
func (o Offset) ToRange() (Range, error) {
	end, carry := bits.Add64(o.Offset, o.Size, 0)
	if carry != 0 {
		return Range{}, ErrOverflow
	}
	return Range{Start: o.Offset, End: end}, nil
}

// Rules bound what a client may request.
type Rules struct {
	// MaxPage is exclusive: legal pages are [1, MaxPage).
	MaxPage      uint64
	AllowedSizes []uint64
	DefaultSize  uint64
}

// RulesFromConfig builds Rules from the pagination section.
func RulesFromConfig(cfg *config.PaginationConfig) Rules {
	return Rules{
		MaxPage:      cfg.MaxPage,
		AllowedSizes: cfg.AllowedSizes,
		DefaultSize:  cfg.DefaultSize,
	}
}

// Resolve applies defaults (page 1, rules.DefaultSize) and validates the
// result. Violations are BadRequest errors.
func Resolve(page, size *uint64, rules Rules) (Page, error) {
	p := Page{Page: 1, Size: rules.DefaultSize}
	if page != nil {
		p.Page = *page
	}
	if size != nil {
		p.Size = *size
	}
	return p, Validate(p, rules)
}

// Validate checks p against rules.
func Validate(p Page, rules Rules) error {
	if p.Page < 1 || p.Page >= rules.MaxPage {
		return apperr.Newf(apperr.BadRequest, "invalid page %d (allowed: 1..%d)", p.Page, rules.MaxPage)
	}
	if !slices.Contains(rules.AllowedSizes, p.Size) {
		return apperr.Newf(apperr.BadRequest, "invalid page size %d (allowed: %v)", p.Size, rules.AllowedSizes)
	}
	return nil
}

// PageData is one page of results.
type PageData[T any] struct {
	Items []T    `json:"items"`
	Count uint64 `json:"count"`
	// Total is nil when the total count is unknown.
	Total *uint64 `json:"total,omitempty"`
}

// NewPageData wraps items, counting them.
func NewPageData[T any](items []T) PageData[T] {
	if items == nil {
		items = []T{}
	}
	return PageData[T]{Items: items, Count: uint64(len(items))}
}

// WithTotal returns a copy carrying total.
func (d PageData[T]) WithTotal(total uint64) PageData[T] {
	d.Total = &total
	return d
}

func (d PageData[T]) String() string {
	if d.Total == nil {
		return fmt.Sprintf("PageData(count=%d)", d.Count)
	}
	return fmt.Sprintf("PageData(count=%d, total=%d)", d.Count, *d.Total)
}
