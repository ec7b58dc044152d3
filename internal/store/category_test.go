package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"toolhub/internal/models"
)

func TestCategoryCreateAndFind(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db)
	t.Cleanup(func() { cleanCategories(t, db, "ztest-find") })

	desc := "Integration test category"
	created, err := cs.Create(&models.ToolCategory{
		Name:        "ZTest Find",
		Slug:        "ztest-find",
		Description: &desc,
		SortOrder:   7,
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("created category has nil ID")
	}

	byID, err := cs.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID == nil || byID.Slug != "ztest-find" {
		t.Errorf("FindByID returned %+v, want slug ztest-find", byID)
	}
	if byID.Description == nil || *byID.Description != desc {
		t.Error("description not round-tripped")
	}

	bySlug, err := cs.FindBySlug("ztest-find")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if bySlug == nil || bySlug.ID != created.ID {
		t.Error("FindBySlug did not return the created category")
	}

	missing, err := cs.FindByID(uuid.New())
	if err != nil {
		t.Fatalf("FindByID missing: %v", err)
	}
	if missing != nil {
		t.Error("FindByID for unknown id should return nil, nil")
	}
}

func TestCategoryDuplicateSlug(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db)
	t.Cleanup(func() { cleanCategories(t, db, "ztest-dup", "ztest-dup-other") })

	createTestCategory(t, cs, "ZTest Dup", "ztest-dup", 0, true)

	_, err := cs.Create(&models.ToolCategory{Name: "Another", Slug: "ztest-dup", IsActive: true})
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("Create with taken slug: got %v, want ErrDuplicateSlug", err)
	}

	// Updating another category onto the taken slug must also fail.
	other := createTestCategory(t, cs, "ZTest Dup Other", "ztest-dup-other", 0, true)
	other.Slug = "ztest-dup"
	if err := cs.Update(other); !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("Update onto taken slug: got %v, want ErrDuplicateSlug", err)
	}

	// Keeping your own slug on update is fine.
	other.Slug = "ztest-dup-other"
	other.Name = "Renamed"
	if err := cs.Update(other); err != nil {
		t.Errorf("Update keeping own slug: %v", err)
	}
}

func TestCategoryOrdering(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db)
	t.Cleanup(func() { cleanCategories(t, db, "ztest-ord-design", "ztest-ord-analytics", "ztest-ord-first") })

	// Same sort_order resolves alphabetically by name.
	createTestCategory(t, cs, "ZZOrd Design", "ztest-ord-design", 900, true)
	createTestCategory(t, cs, "ZZOrd Analytics", "ztest-ord-analytics", 900, true)
	createTestCategory(t, cs, "ZZOrd First", "ztest-ord-first", 899, true)

	items, err := cs.ListActive()
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}

	var got []string
	for _, c := range items {
		switch c.Slug {
		case "ztest-ord-design", "ztest-ord-analytics", "ztest-ord-first":
			got = append(got, c.Slug)
		}
	}

	want := []string{"ztest-ord-first", "ztest-ord-analytics", "ztest-ord-design"}
	if len(got) != len(want) {
		t.Fatalf("found %d test categories, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCategoryListToolCounts(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db)
	ts := NewToolStore(db)
	t.Cleanup(func() { cleanCategories(t, db, "ztest-counts") })

	cat := createTestCategory(t, cs, "ZTest Counts", "ztest-counts", 0, true)
	createTestTool(t, ts, "ztest-counts-a", cat.ID, 0, true, false)
	createTestTool(t, ts, "ztest-counts-b", cat.ID, 1, false, false)

	items, _, err := cs.List(1, 1000)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	found := false
	for _, c := range items {
		if c.ID == cat.ID {
			found = true
			// Inactive tools count toward the admin-facing total.
			if c.ToolCount != 2 {
				t.Errorf("ToolCount = %d, want 2", c.ToolCount)
			}
		}
	}
	if !found {
		t.Error("created category missing from List")
	}
}

func TestCategoryDeleteRestrict(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db)
	ts := NewToolStore(db)
	t.Cleanup(func() { cleanCategories(t, db, "ztest-del") })

	cat := createTestCategory(t, cs, "ZTest Del", "ztest-del", 0, true)
	tool := createTestTool(t, ts, "ztest-del-tool", cat.ID, 0, true, false)

	if err := cs.Delete(cat.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Errorf("Delete with tools: got %v, want ErrCategoryInUse", err)
	}

	// Category must survive the refused delete.
	still, err := cs.FindByID(cat.ID)
	if err != nil || still == nil {
		t.Fatalf("category should still exist after refused delete (err=%v)", err)
	}

	if err := ts.Delete(tool.ID); err != nil {
		t.Fatalf("delete tool: %v", err)
	}
	if err := cs.Delete(cat.ID); err != nil {
		t.Errorf("Delete empty category: %v", err)
	}

	if err := cs.Delete(cat.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete already-gone category: got %v, want ErrNotFound", err)
	}
}

func TestCategoryUpdateMissing(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db)

	err := cs.Update(&models.ToolCategory{
		ID:   uuid.New(),
		Name: "Ghost",
		Slug: "ztest-ghost",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing category: got %v, want ErrNotFound", err)
	}
}

func TestCategoryListActiveWithTools(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db)
	ts := NewToolStore(db)
	t.Cleanup(func() { cleanCategories(t, db, "ztest-preview", "ztest-preview-empty", "ztest-preview-hidden") })

	cat := createTestCategory(t, cs, "ZTest Preview", "ztest-preview", 901, true)
	empty := createTestCategory(t, cs, "ZTest Preview Empty", "ztest-preview-empty", 902, true)
	hidden := createTestCategory(t, cs, "ZTest Preview Hidden", "ztest-preview-hidden", 903, false)

	// Three active tools plus one inactive; a preview limit of 2 keeps the
	// first two in display order.
	createTestTool(t, ts, "ztest-preview-c", cat.ID, 30, true, false)
	createTestTool(t, ts, "ztest-preview-a", cat.ID, 10, true, false)
	createTestTool(t, ts, "ztest-preview-b", cat.ID, 20, true, false)
	createTestTool(t, ts, "ztest-preview-x", cat.ID, 5, false, false)

	items, err := cs.ListActiveWithTools(2)
	if err != nil {
		t.Fatalf("ListActiveWithTools: %v", err)
	}

	var gotCat, gotEmpty *models.ToolCategory
	for i := range items {
		switch items[i].ID {
		case cat.ID:
			gotCat = &items[i]
		case empty.ID:
			gotEmpty = &items[i]
		case hidden.ID:
			t.Error("inactive category should not appear")
		}
	}

	if gotCat == nil {
		t.Fatal("active category missing from result")
	}
	if len(gotCat.Tools) != 2 {
		t.Fatalf("preview tools = %d, want 2", len(gotCat.Tools))
	}
	if gotCat.Tools[0].Name != "ztest-preview-a" || gotCat.Tools[1].Name != "ztest-preview-b" {
		t.Errorf("preview order = [%s %s], want [ztest-preview-a ztest-preview-b]",
			gotCat.Tools[0].Name, gotCat.Tools[1].Name)
	}

	if gotEmpty == nil {
		t.Fatal("empty active category missing from result")
	}
	if len(gotEmpty.Tools) != 0 {
		t.Errorf("empty category has %d tools, want 0", len(gotEmpty.Tools))
	}
}
