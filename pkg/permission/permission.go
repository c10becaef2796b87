// Package permission answers "may the current employee do X in module Y" from
// the grant list the API returns.
package permission

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is an action that can be granted on a module.
type Kind string

const (
	View   Kind = "view"
	Create Kind = "create"
	Edit   Kind = "edit"
	Delete Kind = "delete"
)

// Kinds lists every Kind in display order.
var Kinds = []Kind{View, Create, Edit, Delete}

// ParseKind accepts a Kind name in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown permission kind %q (must be one of: view, create, edit, delete)", s)
}

// Grant is the set of actions allowed on one module.
type Grant struct {
	ModuleID   int    `json:"moduleId"`
	ModuleName string `json:"moduleName"`
	CanView    bool   `json:"canView"`
	CanCreate  bool   `json:"canCreate"`
	CanEdit    bool   `json:"canEdit"`
	CanDelete  bool   `json:"canDelete"`
}

// Allows reports whether k is granted.
func (g Grant) Allows(k Kind) bool {
	switch k {
	case View:
		return g.CanView
	case Create:
		return g.CanCreate
	case Edit:
		return g.CanEdit
	case Delete:
		return g.CanDelete
	}
	return false
}

// Set indexes grants by module id. The zero value denies everything.
type Set struct {
	byID   map[int]Grant
	byName map[string]int
}

// NewSet builds a Set. A later grant for the same module replaces an earlier one.
func NewSet(grants []Grant) Set {
	s := Set{
		byID:   make(map[int]Grant, len(grants)),
		byName: make(map[string]int, len(grants)),
	}
	for _, g := range grants {
		s.byID[g.ModuleID] = g
		if g.ModuleName != "" {
			s.byName[strings.ToLower(g.ModuleName)] = g.ModuleID
		}
	}
	return s
}

// Has reports whether k is granted on moduleID. Unknown modules are denied.
func (s Set) Has(moduleID int, k Kind) bool {
	g, ok := s.byID[moduleID]
	return ok && g.Allows(k)
}

// HasByName is Has keyed by module name, compared case-insensitively.
func (s Set) HasByName(name string, k Kind) bool {
	id, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	return ok && s.Has(id, k)
}

// Lookup returns the grant for moduleID.
func (s Set) Lookup(moduleID int) (Grant, bool) {
	g, ok := s.byID[moduleID]
	return g, ok
}

// Grants returns all grants ordered by module id.
func (s Set) Grants() []Grant {
	out := make([]Grant, 0, len(s.byID))
	for _, g := range s.byID {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModuleID < out[j].ModuleID })
	return out
}

// Len is the number of modules with a grant.
func (s Set) Len() int { return len(s.byID) }
