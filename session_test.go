// session_test.go
package stepscope

import (
	"testing"
	"time"
)

func Test_SessionManager_Create_Get_End(t *testing.T) {
	m := NewSessionManager(time.Minute)
	s, err := m.Create(`int a = 1;`)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID == "" || s.Interp == nil {
		t.Fatalf("incomplete session %#v", s)
	}

	got, err := m.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get: %v, %p vs %p", err, got, s)
	}
	if _, err := m.Get("nope"); err == nil {
		t.Fatal("Get of unknown id must error")
	}

	m.End(s.ID)
	if _, err := m.Get(s.ID); err == nil {
		t.Fatal("ended session must be gone")
	}
	m.End(s.ID) // idempotent
	if m.Len() != 0 {
		t.Fatalf("want 0 sessions, got %d", m.Len())
	}
}

func Test_SessionManager_Create_Rejects_Ineligible_Source(t *testing.T) {
	m := NewSessionManager(time.Minute)
	_, err := m.Create(`class C {};`)
	if _, ok := err.(*IneligibleError); !ok {
		t.Fatalf("want *IneligibleError, got %v", err)
	}
	if m.Len() != 0 {
		t.Fatal("failed Create must not register a session")
	}
}

func Test_SessionManager_Sweep_Reclaims_Idle_Sessions(t *testing.T) {
	m := NewSessionManager(time.Minute)
	clock := time.Unix(1000, 0)
	m.now = func() time.Time { return clock }

	stale, err := m.Create(`int a = 1;`)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	fresh, err := m.Create(`int b = 2;`)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if n := m.Sweep(); n != 1 {
		t.Fatalf("want 1 swept, got %d", n)
	}
	if _, err := m.Get(stale.ID); err == nil {
		t.Fatal("stale session must be reclaimed")
	}
	if _, err := m.Get(fresh.ID); err != nil {
		t.Fatalf("fresh session must survive: %v", err)
	}
}

func Test_SessionManager_Get_Refreshes_Idle_Clock(t *testing.T) {
	m := NewSessionManager(time.Minute)
	clock := time.Unix(1000, 0)
	m.now = func() time.Time { return clock }

	s, err := m.Create(`int a = 1;`)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	clock = clock.Add(45 * time.Second)
	if _, err := m.Get(s.ID); err != nil {
		t.Fatalf("Get: %v", err)
	}
	clock = clock.Add(45 * time.Second)
	// 90s since creation, but only 45s since last use.
	if n := m.Sweep(); n != 0 {
		t.Fatalf("refreshed session must survive the sweep, got %d reclaimed", n)
	}
}

func Test_SessionManager_Zero_TTL_Disables_Sweep(t *testing.T) {
	m := NewSessionManager(0)
	if _, err := m.Create(`int a = 1;`); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n := m.Sweep(); n != 0 {
		t.Fatalf("sweep must be a no-op without a TTL, got %d", n)
	}
}
