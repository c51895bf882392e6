package menu

import (
	"testing"

	"github.com/tvet-mis/console/internal/domain/privilege"
)

func int64p(v int64) *int64 { return &v }

func sampleList() []privilege.Privilege {
	return []privilege.Privilege{
		{ID: 1, DisplayOrder: 1, IsDisplay: true, Name: "Tasks", RoutePath: "/my-task-index"},
		{ID: 2, DisplayOrder: 2, IsDisplay: true, Name: "Reports", RoutePath: "/report-index"},
		{ID: 10, ParentID: int64p(1), DisplayOrder: 1, IsDisplay: true, Name: "Group Tasks", RoutePath: "/group-task-index"},
	}
}

func TestRenderActiveExactMatch(t *testing.T) {
	r := NewRenderer()

	items := r.Render(sampleList(), "/report-index")
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Active {
		t.Error("Tasks marked active for /report-index")
	}
	if !items[1].Active {
		t.Error("Reports not marked active for /report-index")
	}

	t.Run("no prefix matching", func(t *testing.T) {
		items := r.Render(sampleList(), "/report-index/42")
		if items[1].Active {
			t.Error("Reports marked active for a sub-path, want exact match only")
		}
	})
}

func TestRenderActiveChildExpandsParent(t *testing.T) {
	r := NewRenderer()

	items := r.Render(sampleList(), "/group-task-index")
	if !items[0].Expanded {
		t.Error("parent of active child not expanded")
	}
	if !items[0].Children[0].Active {
		t.Error("active child not marked")
	}
}

func TestToggleAndCollapse(t *testing.T) {
	r := NewRenderer()

	r.Toggle(1)
	items := r.Render(sampleList(), "/")
	if !items[0].Expanded {
		t.Error("toggled entry not expanded")
	}

	r.Toggle(1)
	items = r.Render(sampleList(), "/")
	if items[0].Expanded {
		t.Error("re-toggled entry still expanded")
	}

	r.Toggle(1)
	r.Collapse()
	items = r.Render(sampleList(), "/")
	if items[0].Expanded {
		t.Error("Collapse left an entry expanded")
	}
}
