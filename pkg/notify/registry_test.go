package notify

import (
	"errors"
	"strings"
	"testing"
)

func TestCreateAssignsSequentialHandles(t *testing.T) {
	r := NewRegistry(DefaultConfig())

	a, err := r.Create("over", "device/over", "%s:%u:%s", 1, 0, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := r.Create("temp", "device/temp", "%s level %u value %s", 100, 2, true)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if a != 1 || b != 2 {
		t.Errorf("handles = %d, %d, want 1, 2", a, b)
	}
	if r.Count() != 2 {
		t.Errorf("Count() = %d, want 2", r.Count())
	}
	if r.Key(a) != "over" || r.EventName(b) != "device/temp" {
		t.Errorf("accessor mismatch: %q, %q", r.Key(a), r.EventName(b))
	}
}

func TestCreateDuplicateKey(t *testing.T) {
	r := NewRegistry(DefaultConfig())

	if _, err := r.Create("over", "device/over", "%s:%u:%s", 1, 0, false); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := r.CreateMapped("over", "device/over2", "%s:%u:%s", 1, 0, false, []string{"ok"})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate Create = %v, want ErrDuplicateKey", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count() after failed create = %d, want 1", r.Count())
	}
}

func TestCreateCapacityExhausted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxNotifications = 1
	r := NewRegistry(cfg)

	if _, err := r.Create("a", "e/a", "%s:%u:%s", 1, 0, false); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := r.Create("b", "e/b", "%s:%u:%s", 1, 0, false)
	if !errors.Is(err, ErrRegistryFull) {
		t.Errorf("Create over capacity = %v, want ErrRegistryFull", err)
	}
}

func TestCreateNameLimits(t *testing.T) {
	r := NewRegistry(DefaultConfig())

	long := strings.Repeat("x", DefaultMaxKeyLength+1)
	if _, err := r.Create(long, "e", "%s:%u:%s", 1, 0, false); !errors.Is(err, ErrKeyTooLong) {
		t.Errorf("long key = %v, want ErrKeyTooLong", err)
	}

	long = strings.Repeat("x", DefaultMaxEventLength+1)
	if _, err := r.Create("k", long, "%s:%u:%s", 1, 0, false); !errors.Is(err, ErrEventTooLong) {
		t.Errorf("long event = %v, want ErrEventTooLong", err)
	}

	long = strings.Repeat("x", DefaultMaxTemplateLength+1)
	if _, err := r.Create("k", "e", long, 1, 0, false); !errors.Is(err, ErrTemplateTooLong) {
		t.Errorf("long template = %v, want ErrTemplateTooLong", err)
	}

	if r.Count() != 0 {
		t.Errorf("Count() after failed creates = %d, want 0", r.Count())
	}
}

func TestInitialState(t *testing.T) {
	r := NewRegistry(DefaultConfig())

	id, err := r.Create("over", "device/over", "%s:%u:%s", 1, 0, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if v := r.Value(id); v != -1 {
		t.Errorf("initial Value() = %d, want -1", v)
	}
	if l := r.Level(id); l != 0 {
		t.Errorf("initial Level() = %d, want 0", l)
	}
	if got := r.stage(); len(got) != 0 {
		t.Errorf("fresh notification staged %d entries, want 0", len(got))
	}
}

func TestUpdateLevelChangeMarksChanged(t *testing.T) {
	r := NewRegistry(DefaultConfig())
	id, _ := r.Create("over", "device/over", "%s:%u:%s", 1, 0, false)

	// Equal-level update: a no-op on stored state, but the handle is
	// still reported valid.
	if !r.Update(id, 5, 0) {
		t.Fatal("Update on valid handle = false")
	}
	if v := r.Value(id); v != -1 {
		t.Errorf("Value() after equal-level update = %d, want untouched -1", v)
	}
	if got := r.stage(); len(got) != 0 {
		t.Errorf("equal-level update staged %d entries, want 0", len(got))
	}

	// Level change stores value and level together and marks it.
	if !r.Update(id, 5, 1) {
		t.Fatal("Update on valid handle = false")
	}
	if v := r.Value(id); v != 5 {
		t.Errorf("Value() = %d, want 5", v)
	}
	got := r.stage()
	if len(got) != 1 {
		t.Fatalf("staged %d entries, want 1", len(got))
	}
	if got[0].message != "over:1:5" {
		t.Errorf("message = %q, want %q", got[0].message, "over:1:5")
	}
}

func TestEqualLevelUpdateKeepsValue(t *testing.T) {
	r := NewRegistry(DefaultConfig())
	id, _ := r.Create("over", "device/over", "%s:%u:%s", 1, 0, false)

	r.Update(id, 5, 1)
	r.Update(id, 9, 1)

	if v := r.Value(id); v != 5 {
		t.Errorf("Value() = %d, want 5 from the level-changing update", v)
	}

	// The pending publication still renders the value stored with the
	// level change.
	got := r.stage()
	if len(got) != 1 {
		t.Fatalf("staged %d entries, want 1", len(got))
	}
	if got[0].message != "over:1:5" {
		t.Errorf("message = %q, want %q", got[0].message, "over:1:5")
	}
}

func TestUpdateInvalidHandle(t *testing.T) {
	r := NewRegistry(DefaultConfig())
	r.Create("over", "device/over", "%s:%u:%s", 1, 0, false)

	if r.Update(0, 1, 1) {
		t.Error("Update(0) = true, want false")
	}
	if r.Update(2, 1, 1) {
		t.Error("Update(out of range) = true, want false")
	}
}

func TestAccessorSentinels(t *testing.T) {
	r := NewRegistry(DefaultConfig())

	if got := r.Key(7); got != "" {
		t.Errorf("Key(invalid) = %q, want empty", got)
	}
	if got := r.EventName(7); got != "" {
		t.Errorf("EventName(invalid) = %q, want empty", got)
	}
	if got := r.Value(7); got != -1 {
		t.Errorf("Value(invalid) = %d, want -1", got)
	}
	if got := r.Level(7); got != -1 {
		t.Errorf("Level(invalid) = %d, want -1", got)
	}
}

func TestMappedValueMapIsCopied(t *testing.T) {
	r := NewRegistry(DefaultConfig())

	levels := []string{"ok", "warn"}
	id, err := r.CreateMapped("state", "device/state", "%s:%u:%s", 1, 0, false, levels)
	if err != nil {
		t.Fatalf("CreateMapped: %v", err)
	}
	levels[1] = "mutated"

	r.Update(id, 1, 1)
	got := r.stage()
	if len(got) != 1 {
		t.Fatalf("staged %d entries, want 1", len(got))
	}
	if got[0].message != `state:1:"warn"` {
		t.Errorf("message = %q, want mapped rendering from the copied map", got[0].message)
	}
}
