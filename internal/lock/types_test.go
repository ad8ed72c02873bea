package lock

import "testing"

func TestNormalizeIP(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"::ffff:192.168.1.10", "192.168.1.10"},
		{"192.168.1.10", "192.168.1.10"},
		{"::1", "::1"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeIP(tt.in); got != tt.want {
			t.Errorf("NormalizeIP(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLocked(t *testing.T) {
	l := &Lock{Status: StatusLocked}
	if !l.Locked() {
		t.Error("status 0 should report locked")
	}
	l.Status = StatusUnlocked
	if l.Locked() {
		t.Error("status 1 should report unlocked")
	}
}

func TestPageIDs(t *testing.T) {
	ids := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []int
	}{
		{"all", 0, -1, []int{1, 2, 3, 4, 5}},
		{"first two", 0, 2, []int{1, 2}},
		{"middle", 2, 2, []int{3, 4}},
		{"offset past end", 10, 5, nil},
		{"limit past end", 3, 10, []int{4, 5}},
		{"negative offset", -3, 2, []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pageIDs(ids, tt.offset, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("pageIDs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("pageIDs() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestLockFromHash(t *testing.T) {
	l := lockFromHash(7, map[string]string{
		"ip":     "10.0.0.5",
		"status": "1",
		"email":  "jane@example.com",
	})
	if l.ID != 7 || l.IP != "10.0.0.5" || l.Status != StatusUnlocked || l.OwnerEmail != "jane@example.com" {
		t.Errorf("lockFromHash() = %+v", l)
	}
}

func TestLockFromHash_MissingStatus(t *testing.T) {
	l := lockFromHash(3, map[string]string{"ip": "10.0.0.5"})
	if l.Status != StatusLocked {
		t.Errorf("missing status should default to locked, got %d", l.Status)
	}
}
