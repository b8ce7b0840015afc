package roster

import (
	"reflect"
	"testing"
)

func TestLocalStoreSeed(t *testing.T) {
	store := NewLocalStore(DefaultSeed())
	entries := store.Entries()
	if len(entries) != 6 {
		t.Fatalf("expected 6 seeded entries, got %d", len(entries))
	}
	first := entries[0]
	if first.Name != "Joe Hanily" || first.Position != "Manager" || first.Number != "20" {
		t.Fatalf("unexpected first entry %+v", first)
	}
	seen := map[string]bool{}
	for _, e := range entries {
		if e.ID == "" || seen[e.ID] {
			t.Fatalf("expected unique ids, got %+v", entries)
		}
		seen[e.ID] = true
	}
}

func TestLocalStoreAddValidation(t *testing.T) {
	store := NewLocalStore(DefaultSeed())
	for _, candidate := range []Entry{
		{Name: "", Position: "P", Number: "1"},
		{Name: "X", Position: "  ", Number: "1"},
		{Name: "X", Position: "P", Number: "\t"},
	} {
		if _, ok := store.Add(candidate); ok {
			t.Fatalf("expected %+v to be refused", candidate)
		}
	}
	if store.Len() != 6 {
		t.Fatalf("refused adds changed the list: %d", store.Len())
	}
}

func TestLocalStoreAddThenRemoveByNameRestoresOrder(t *testing.T) {
	store := NewLocalStore(DefaultSeed())
	original := store.Entries()

	added, ok := store.Add(Entry{Name: "New Guy", Position: "Outfield", Number: "99"})
	if !ok {
		t.Fatal("expected add to succeed")
	}
	entries := store.Entries()
	if len(entries) != 7 || entries[6].Name != "New Guy" || entries[6].ID != added.ID {
		t.Fatalf("expected New Guy appended last, got %+v", entries)
	}

	if !store.RemoveByName("New Guy") {
		t.Fatal("expected remove to succeed")
	}
	if !reflect.DeepEqual(store.Entries(), original) {
		t.Fatalf("expected original order restored, got %+v", store.Entries())
	}
}

func TestLocalStoreRemoveMissingIsNoop(t *testing.T) {
	store := NewLocalStore(DefaultSeed())
	before := store.Entries()
	if store.RemoveByName("Nonexistent") || store.Remove("local_missing") {
		t.Fatal("expected no-op removal to report false")
	}
	if !reflect.DeepEqual(store.Entries(), before) {
		t.Fatal("list changed on no-op removal")
	}
}

func TestLocalStoreUpdateInPlace(t *testing.T) {
	store := NewLocalStore(DefaultSeed())
	target := store.Entries()[2]

	if !store.Update(target.ID, Entry{Name: "Renamed", Position: "Catcher", Number: "9"}) {
		t.Fatal("expected update to succeed")
	}
	got := store.Entries()[2]
	if got.Name != "Renamed" || got.Number != "9" || got.ID != target.ID {
		t.Fatalf("expected in-place update keeping id, got %+v", got)
	}

	if store.Update(target.ID, Entry{Name: "Renamed", Position: "", Number: "9"}) {
		t.Fatal("expected incomplete update to be refused")
	}
	if store.Update("local_missing", Entry{Name: "A", Position: "B", Number: "1"}) {
		t.Fatal("expected update of missing id to be refused")
	}
	if store.UpdateByName("X", Entry{Name: "A", Position: "B", Number: "1"}) {
		t.Fatal("expected update of missing name to be refused")
	}
	if store.Len() != 6 {
		t.Fatalf("unexpected length %d", store.Len())
	}
}

func TestLocalStoreNameModeTouchesFirstMatchOnly(t *testing.T) {
	store := NewLocalStore([]Entry{
		{Name: "Twin", Position: "Pitcher", Number: "1"},
		{Name: "Twin", Position: "Catcher", Number: "2"},
	})
	if !store.UpdateByName("Twin", Entry{Name: "Twin", Position: "Outfield", Number: "3"}) {
		t.Fatal("expected update to succeed")
	}
	entries := store.Entries()
	if entries[0].Position != "Outfield" || entries[1].Position != "Catcher" {
		t.Fatalf("expected only first match updated, got %+v", entries)
	}

	// The id path can still address the second twin.
	if !store.Remove(entries[1].ID) {
		t.Fatal("expected id removal to succeed")
	}
	if got := store.Entries(); len(got) != 1 || got[0].Position != "Outfield" {
		t.Fatalf("unexpected list after id removal %+v", got)
	}
}
