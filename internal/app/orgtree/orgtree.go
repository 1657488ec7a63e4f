// Package orgtree maintains the organization chart as a flat forest.
//
// Members live in a single slice indexed by id. Parent/child navigation goes
// through id lookups and a children-by-parent index built when needed, never
// through pointers between members. Level is derived from the parent chain
// and is recomputed for a whole subtree whenever a member changes parent.
// Order sequences members that share the same (ParentID, Level).
//
// A Tree is not safe for concurrent use. Callers load the chart, apply one
// operation and persist the result.
package orgtree

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("member not found")
	ErrParentNotFound = errors.New("parent member not found")
	ErrHasChildren    = errors.New("member has dependents; reassign or remove them first")
	ErrCycle          = errors.New("a member cannot be placed under itself or one of its descendants")
	ErrMissingField   = errors.New("name and position are required")
	ErrUnknownField   = errors.New("field cannot be edited directly")
)

// Direction is the way a member moves among its siblings.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Field names accepted by UpdateField. Structural fields (parent, level,
// order) are changed through Reparent and Move only.
type Field string

const (
	FieldName     Field = "name"
	FieldPosition Field = "position"
	FieldPhoto    Field = "photo"
)

// Attrs are the author-supplied fields of a new member.
type Attrs struct {
	Name     string
	Position string
	Photo    string
}

// Tree is an arena of org members.
type Tree struct {
	members []models.OrgMember
	index   map[string]int

	// newID is swappable so tests get deterministic ids.
	newID func() string
}

// New builds a Tree over a copy of members.
func New(members []models.OrgMember) *Tree {
	t := &Tree{
		members: append([]models.OrgMember(nil), members...),
		newID:   func() string { return uuid.NewString() },
	}
	t.reindex()
	return t
}

func (t *Tree) reindex() {
	t.index = make(map[string]int, len(t.members))
	for i, m := range t.members {
		t.index[m.ID] = i
	}
}

// Members returns a copy of the members in storage order.
func (t *Tree) Members() []models.OrgMember {
	return append([]models.OrgMember(nil), t.members...)
}

// Len returns the number of members.
func (t *Tree) Len() int {
	return len(t.members)
}

// Get returns the member with the given id.
func (t *Tree) Get(id string) (models.OrgMember, bool) {
	i, ok := t.index[id]
	if !ok {
		return models.OrgMember{}, false
	}
	return t.members[i], true
}

// Sorted returns the members ordered by level, then order. Ties keep storage order.
func (t *Tree) Sorted() []models.OrgMember {
	out := t.Members()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].Order < out[j].Order
	})
	return out
}

// HasChildren reports whether any member names id as its parent.
func (t *Tree) HasChildren(id string) bool {
	for _, m := range t.members {
		if m.ParentID == id {
			return true
		}
	}
	return false
}

// IsDescendant reports whether candidate sits somewhere below ancestor.
// It walks candidate's ancestor chain; a member is not its own descendant.
func (t *Tree) IsDescendant(ancestor, candidate string) bool {
	seen := make(map[string]bool, len(t.members))
	cur, ok := t.Get(candidate)
	for ok && cur.ParentID != "" {
		if cur.ParentID == ancestor {
			return true
		}
		// Stored data could already hold a loop; stop rather than spin.
		if seen[cur.ParentID] {
			return false
		}
		seen[cur.ParentID] = true
		cur, ok = t.Get(cur.ParentID)
	}
	return false
}

// Add inserts a new member below parentID (or at the top level when empty).
// Level comes from the parent; Order is one past the highest in the sibling
// group, which is the group size when it has no gaps.
func (t *Tree) Add(attrs Attrs, parentID string) (models.OrgMember, error) {
	attrs.Name = strings.TrimSpace(attrs.Name)
	attrs.Position = strings.TrimSpace(attrs.Position)
	if attrs.Name == "" || attrs.Position == "" {
		return models.OrgMember{}, ErrMissingField
	}

	level := 0
	if parentID != "" {
		parent, ok := t.Get(parentID)
		if !ok {
			return models.OrgMember{}, fmt.Errorf("%w: %s", ErrParentNotFound, parentID)
		}
		level = parent.Level + 1
	}

	m := models.OrgMember{
		ID:       t.newID(),
		Name:     attrs.Name,
		Position: attrs.Position,
		Photo:    strings.TrimSpace(attrs.Photo),
		ParentID: parentID,
		Level:    level,
		Order:    t.nextOrder(parentID, level),
	}
	t.members = append(t.members, m)
	t.index[m.ID] = len(t.members) - 1
	return m, nil
}

// Remove deletes a leaf member. Surviving siblings keep their Order values.
func (t *Tree) Remove(id string) error {
	i, ok := t.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if t.HasChildren(id) {
		return ErrHasChildren
	}
	t.members = append(t.members[:i], t.members[i+1:]...)
	t.reindex()
	return nil
}

// UpdateField replaces one non-structural field.
func (t *Tree) UpdateField(id string, field Field, value string) error {
	i, ok := t.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	value = strings.TrimSpace(value)
	switch field {
	case FieldName:
		if value == "" {
			return ErrMissingField
		}
		t.members[i].Name = value
	case FieldPosition:
		if value == "" {
			return ErrMissingField
		}
		t.members[i].Position = value
	case FieldPhoto:
		t.members[i].Photo = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Reparent moves id below newParentID (top level when empty) and recomputes
// the level of every descendant. The member is appended to the end of its new
// sibling group so orders stay distinct there.
func (t *Tree) Reparent(id, newParentID string) error {
	i, ok := t.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if newParentID == id || (newParentID != "" && t.IsDescendant(id, newParentID)) {
		return ErrCycle
	}

	level := 0
	if newParentID != "" {
		parent, ok := t.Get(newParentID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrParentNotFound, newParentID)
		}
		level = parent.Level + 1
	}

	if t.members[i].ParentID == newParentID {
		// Same parent: only repair the level in case stored data drifted.
		t.members[i].Level = level
		t.cascadeLevels(id)
		return nil
	}

	order := t.nextOrder(newParentID, level)
	t.members[i].ParentID = newParentID
	t.members[i].Level = level
	t.members[i].Order = order
	t.cascadeLevels(id)
	return nil
}

// cascadeLevels walks the subtree under rootID depth-first and sets each
// member's level to its parent's level plus one.
func (t *Tree) cascadeLevels(rootID string) {
	children := t.childIndex()
	var walk func(parentID string, parentLevel int)
	walk = func(parentID string, parentLevel int) {
		for _, ci := range children[parentID] {
			t.members[ci].Level = parentLevel + 1
			walk(t.members[ci].ID, parentLevel+1)
		}
	}
	root := t.members[t.index[rootID]]
	walk(root.ID, root.Level)
}

// childIndex maps a parent id to the storage indexes of its children.
func (t *Tree) childIndex() map[string][]int {
	out := make(map[string][]int)
	for i, m := range t.members {
		if m.ParentID != "" {
			out[m.ParentID] = append(out[m.ParentID], i)
		}
	}
	return out
}

// Move swaps id with its neighbour among siblings sorted by Order. It reports
// false without error when the member is already first (up) or last (down).
func (t *Tree) Move(id string, dir Direction) (bool, error) {
	i, ok := t.index[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if dir != Up && dir != Down {
		return false, fmt.Errorf("unknown direction %q", dir)
	}

	m := t.members[i]
	siblings := t.siblingIndexes(m.ParentID, m.Level)
	pos := -1
	for p, si := range siblings {
		if si == i {
			pos = p
			break
		}
	}

	var other int
	switch {
	case dir == Up && pos > 0:
		other = siblings[pos-1]
	case dir == Down && pos >= 0 && pos < len(siblings)-1:
		other = siblings[pos+1]
	default:
		return false, nil
	}

	t.members[i].Order, t.members[other].Order = t.members[other].Order, t.members[i].Order
	t.members[i], t.members[other] = t.members[other], t.members[i]
	t.index[t.members[i].ID] = i
	t.index[t.members[other].ID] = other
	return true, nil
}

// siblingIndexes returns storage indexes of the (parentID, level) group sorted
// by Order, ties broken by storage position.
func (t *Tree) siblingIndexes(parentID string, level int) []int {
	var out []int
	for i, m := range t.members {
		if m.ParentID == parentID && m.Level == level {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return t.members[out[a]].Order < t.members[out[b]].Order
	})
	return out
}

// nextOrder returns one past the highest Order in the group, so a member
// joining a group with gaps never collides with an existing sibling.
func (t *Tree) nextOrder(parentID string, level int) int {
	next := 0
	for _, i := range t.siblingIndexes(parentID, level) {
		if t.members[i].Order >= next {
			next = t.members[i].Order + 1
		}
	}
	return next
}

// Validate checks the stored invariants: known parents, no cycles, levels
// consistent with parents, and distinct orders inside each sibling group.
func (t *Tree) Validate() error {
	groups := make(map[string]map[int]string)
	for _, m := range t.members {
		want := 0
		if m.ParentID != "" {
			parent, ok := t.Get(m.ParentID)
			if !ok {
				return fmt.Errorf("%s: %w", m.ID, ErrParentNotFound)
			}
			if m.ParentID == m.ID || t.IsDescendant(m.ID, m.ParentID) {
				return fmt.Errorf("%s: %w", m.ID, ErrCycle)
			}
			want = parent.Level + 1
		}
		if m.Level != want {
			return fmt.Errorf("%s: level %d, want %d", m.ID, m.Level, want)
		}
		key := fmt.Sprintf("%s/%d", m.ParentID, m.Level)
		if groups[key] == nil {
			groups[key] = make(map[int]string)
		}
		if other, dup := groups[key][m.Order]; dup {
			return fmt.Errorf("%s and %s share order %d", other, m.ID, m.Order)
		}
		groups[key][m.Order] = m.ID
	}
	return nil
}
