// Package privilege holds the navigation privileges granted to the
// session's current role and projects them into the two-level menu tree
// the authenticated shell renders.
package privilege

import "sort"

// Privilege is a single navigation menu entry a role is permitted to
// see. Entries form a two-level forest: ParentID == nil marks a
// top-level entry; a non-nil ParentID references a top-level entry's ID.
//
// The JSON tags match the persisted storage format.
type Privilege struct {
	ID           int64  `json:"id"`
	ParentID     *int64 `json:"parent_id"`
	DisplayOrder int    `json:"display_order"`
	IsDisplay    bool   `json:"is_display"`
	Name         string `json:"privilege_name"`
	RoutePath    string `json:"route_name"`
	Icon         string `json:"icon,omitempty"`
}

// MenuEntry is a top-level menu entry with its ordered children.
type MenuEntry struct {
	Privilege
	Children []Privilege
}

// BuildMenuTree projects a flat privilege list into the ordered
// two-level menu tree. It is a pure function: the input is never
// mutated and repeated calls yield structurally identical trees.
//
// Entries with IsDisplay=false are excluded. Entries whose ParentID
// references a non-existent top-level entry are dropped — they would
// be unreachable in the rendered menu either way.
func BuildMenuTree(list []Privilege) []MenuEntry {
	var parents []Privilege
	children := make(map[int64][]Privilege)

	for _, p := range list {
		if !p.IsDisplay {
			continue
		}
		if p.ParentID == nil {
			parents = append(parents, p)
		} else {
			children[*p.ParentID] = append(children[*p.ParentID], p)
		}
	}

	sortByDisplayOrder(parents)

	tree := make([]MenuEntry, 0, len(parents))
	for _, parent := range parents {
		subs := children[parent.ID]
		sortByDisplayOrder(subs)
		entry := MenuEntry{Privilege: parent}
		if len(subs) > 0 {
			entry.Children = append([]Privilege(nil), subs...)
		}
		tree = append(tree, entry)
	}
	return tree
}

// sortByDisplayOrder orders entries by DisplayOrder, then by ID for a
// deterministic tie-break.
func sortByDisplayOrder(list []Privilege) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].DisplayOrder != list[j].DisplayOrder {
			return list[i].DisplayOrder < list[j].DisplayOrder
		}
		return list[i].ID < list[j].ID
	})
}
