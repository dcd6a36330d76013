package memory

import "testing"

func TestRoomRegistryLifecycle(t *testing.T) {
	registry := NewRoomRegistry()

	room := registry.Create("room-1")
	if room == nil {
		t.Fatalf("expected room")
	}
	if again := registry.Create("room-1"); again != room {
		t.Fatalf("expected Create to return the existing room")
	}
	if _, ok := registry.Get("room-1"); !ok {
		t.Fatalf("expected room present")
	}

	registry.DeleteIfEmpty("room-1")
	if _, ok := registry.Get("room-1"); ok {
		t.Fatalf("expected empty room removed")
	}
}
