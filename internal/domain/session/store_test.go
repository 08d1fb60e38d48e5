package session

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestStorePutGet(t *testing.T) {
	store := NewStore()
	s := NewWithSeed(CaseDescription{BP: "120/80", HeartRate: 80, SpO2: 98}, 1)
	store.Put(s)

	got, err := store.Get(s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != s.ID {
		t.Errorf("got session %s, want %s", got.ID, s.ID)
	}
	if store.Count() != 1 {
		t.Errorf("count = %d, want 1", store.Count())
	}
}

func TestStoreGetUnknown(t *testing.T) {
	store := NewStore()
	if _, err := store.Get(uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewStore()
	s := NewWithSeed(CaseDescription{BP: "120/80", HeartRate: 80, SpO2: 98}, 1)
	store.Put(s)

	if err := store.Delete(s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("deleted session still retrievable")
	}
	if err := store.Delete(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("second delete err = %v, want ErrSessionNotFound", err)
	}
}
