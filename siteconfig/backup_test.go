package siteconfig

import (
	"path/filepath"
	"testing"

	"biolink_back/localdb"
)

func newTestSnapshotStore(t *testing.T) *SnapshotStore {
	t.Helper()
	db, err := localdb.OpenTest(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	store, err := NewSnapshotStore(db)
	if err != nil {
		t.Fatalf("create snapshot store: %v", err)
	}
	return store
}

func TestSnapshotAppendAndRecent(t *testing.T) {
	store := newTestSnapshotStore(t)

	for _, doc := range []string{`{"username":"a"}`, `{"username":"b"}`, `{"username":"c"}`} {
		if err := store.Append([]byte(doc)); err != nil {
			t.Fatalf("append snapshot: %v", err)
		}
	}

	snapshots, err := store.Recent(2)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snapshots))
	}
	if string(snapshots[0].Payload) != `{"username":"c"}` {
		t.Fatalf("most recent snapshot = %s, want the last appended", snapshots[0].Payload)
	}
}

func TestSnapshotStoreDisabled(t *testing.T) {
	var store *SnapshotStore

	if err := store.Append([]byte(`{}`)); err != nil {
		t.Fatalf("append on disabled store: %v", err)
	}
	snapshots, err := store.Recent(10)
	if err != nil {
		t.Fatalf("recent on disabled store: %v", err)
	}
	if snapshots != nil {
		t.Fatalf("expected no snapshots, got %v", snapshots)
	}
}
