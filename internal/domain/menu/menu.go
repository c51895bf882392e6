// Package menu renders the privilege tree into the navigation view:
// which entry is active for the current route and which top-level
// entries are expanded. Expansion is transient display state, never
// persisted.
package menu

import (
	"sync"

	"github.com/tvet-mis/console/internal/domain/privilege"
)

// Item is a rendered menu entry.
type Item struct {
	ID       int64
	Name     string
	Route    string
	Icon     string
	Active   bool
	Expanded bool
	Children []Item
}

// Renderer projects a privilege list into the rendered menu for a
// given current route. Active matching is exact on the full path.
type Renderer struct {
	mu       sync.Mutex
	expanded map[int64]bool
}

// NewRenderer creates a renderer with every section collapsed.
func NewRenderer() *Renderer {
	return &Renderer{expanded: make(map[int64]bool)}
}

// Toggle flips the expansion of the top-level entry with the given id.
func (r *Renderer) Toggle(parentID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expanded[parentID] = !r.expanded[parentID]
}

// Collapse resets all expansion state. Called on logout and role
// switch, when the menu contents are replaced wholesale.
func (r *Renderer) Collapse() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expanded = make(map[int64]bool)
}

// Render builds the menu view for the current route. A parent whose
// child matches the current route is rendered expanded even if it was
// not toggled open, so the active entry is always visible.
func (r *Renderer) Render(list []privilege.Privilege, currentRoute string) []Item {
	tree := privilege.BuildMenuTree(list)

	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]Item, 0, len(tree))
	for _, entry := range tree {
		item := Item{
			ID:     entry.ID,
			Name:   entry.Name,
			Route:  entry.RoutePath,
			Icon:   entry.Icon,
			Active: entry.RoutePath == currentRoute,
		}
		for _, child := range entry.Children {
			ci := Item{
				ID:     child.ID,
				Name:   child.Name,
				Route:  child.RoutePath,
				Icon:   child.Icon,
				Active: child.RoutePath == currentRoute,
			}
			if ci.Active {
				item.Expanded = true
			}
			item.Children = append(item.Children, ci)
		}
		if r.expanded[entry.ID] {
			item.Expanded = true
		}
		items = append(items, item)
	}
	return items
}
