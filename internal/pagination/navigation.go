// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package pagination

import "math"

// Navigation is the pager rendered under a list.
type Navigation struct {
	Head    uint64  `json:"head"`
	Prev    *uint64 `json:"prev"`
	Current uint64  `json:"current_page"`
	Next    *uint64 `json:"next"`
	// Tail is nil when the number of pages is unknown.
	Tail *uint64 `json:"tail"`
	// List is the window of page numbers, nil when navLen is 0.
	List []uint64 `json:"list"`
}

// NewNavigation builds the pager for page p of a result set whose total is
// total (nil if unknown). The window holds at most navLen pages and leans
// toward whichever end p is nearer. maxPage, when set, caps the page count.
func NewNavigation(total *uint64, p Page, navLen uint64, maxPage *uint64) Navigation {
	current := p.Page

	var pageN uint64
	if p.Size == 0 {
		pageN = math.MaxUint64
	} else {
		t := uint64(math.MaxUint64)
		if total != nil {
			t = *total
		}
		pageN = satAdd(satSub(t, 1)/p.Size, 1)
	}
	if maxPage != nil {
		pageN = min(pageN, *maxPage)
	}
	pageN = max(pageN, 1)

	nav := Navigation{Head: 1, Current: current}

	if navLen > 0 {
		c := min(max(current, 1), pageN)

		var s, e uint64
		if c-1 < pageN-c {
			s = max(satSub(c, navLen/2), 1)
			e = min(satAdd(satSub(s, 1), navLen), pageN)
		} else {
			e = min(satAdd(c, navLen/2), pageN)
			s = max(satAdd(satSub(e, navLen), 1), 1)
		}

		nav.List = make([]uint64, 0, e-s+1)
		for i := s; ; i++ {
			nav.List = append(nav.List, i)
			if i == e {
				break
			}
		}
	}

	if current >= 2 {
		prev := min(current-1, pageN)
		nav.Prev = &prev
	}
	if current <= pageN-1 {
		next := max(current+1, 1)
		nav.Next = &next
	}
	if maxPage != nil || (total != nil && p.Size != 0) {
		tail := pageN
		nav.Tail = &tail
	}
	return nav
}

func satAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func satSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
