package slugarray

import (
	"crypto/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/typecodec/internal/codec/slugid"
)

func randomSlug(t *testing.T) string {
	t.Helper()
	raw := make([]byte, slugid.Size)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	slug, err := slugid.Encode(raw)
	if err != nil {
		t.Fatalf("slugid.Encode: %v", err)
	}
	return slug
}

// TestPushIndexRemovePop_S6 mirrors spec scenario S6.
func TestPushIndexRemovePop_S6(t *testing.T) {
	a := New()
	slugs := make([]string, 33)
	for i := range slugs {
		slugs[i] = randomSlug(t)
		if err := a.Push(slugs[i]); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}

	if a.Len() != 33 {
		t.Fatalf("Len() = %d, want 33", a.Len())
	}
	if a.Cap() != 64 {
		t.Fatalf("Cap() = %d, want 64 (one doubling from 32)", a.Cap())
	}

	idx, err := a.IndexOf(slugs[17])
	if err != nil || idx != 17 {
		t.Fatalf("IndexOf(slugs[17]) = (%d, %v), want (17, nil)", idx, err)
	}

	removed, err := a.Remove(slugs[0])
	if err != nil || !removed {
		t.Fatalf("Remove(slugs[0]) = (%v, %v), want (true, nil)", removed, err)
	}
	if a.Len() != 32 {
		t.Fatalf("Len() after remove = %d, want 32", a.Len())
	}
	idx, err = a.IndexOf(slugs[1])
	if err != nil || idx != 0 {
		t.Fatalf("IndexOf(slugs[1]) after removing slugs[0] = (%d, %v), want (0, nil)", idx, err)
	}

	for i := 0; i < 31; i++ {
		if _, err := a.Pop(); err != nil {
			t.Fatalf("Pop() iteration %d: %v", i, err)
		}
	}
	if a.Len() != 1 {
		t.Fatalf("Len() after 31 pops = %d, want 1", a.Len())
	}
	if a.Cap() < minCapacitySlots {
		t.Fatalf("Cap() = %d, must never shrink below %d", a.Cap(), minCapacitySlots)
	}

	remaining, err := a.ToArray()
	if err != nil {
		t.Fatalf("ToArray: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("ToArray() len = %d, want 1", len(remaining))
	}
}

func TestFromBufferRejectsMisalignedLength(t *testing.T) {
	if _, err := FromBuffer(make([]byte, 17)); err == nil {
		t.Fatal("expected error for non-multiple-of-16 buffer")
	}
}

func TestSliceNegativeIndices(t *testing.T) {
	a := New()
	var slugs []string
	for i := 0; i < 5; i++ {
		s := randomSlug(t)
		slugs = append(slugs, s)
		if err := a.Push(s); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	got, err := a.Slice(-2, -1)
	if err != nil {
		t.Fatalf("Slice(-2,-1): %v", err)
	}
	if len(got) != 1 || got[0] != slugs[3] {
		t.Fatalf("Slice(-2,-1) = %v, want [%s]", got, slugs[3])
	}

	got, err = a.Slice(0, 100)
	if err != nil {
		t.Fatalf("Slice(0,100): %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("Slice(0,100) len = %d, want 5 (end clamped)", len(got))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := New()
	s := randomSlug(t)
	if err := a.Push(s); err != nil {
		t.Fatalf("Push: %v", err)
	}
	clone := a.Clone()
	if !a.Equals(clone) {
		t.Fatal("clone must equal original immediately after Clone")
	}
	s2 := randomSlug(t)
	if err := clone.Push(s2); err != nil {
		t.Fatalf("Push on clone: %v", err)
	}
	if a.Len() != 1 {
		t.Fatalf("mutating clone affected original: Len() = %d, want 1", a.Len())
	}
}

// TestInvariants_Property drives spec §8 item 6: for any sequence of
// push/pop/shift/remove operations, the live view is exactly length*16
// bytes, length never goes negative, and the backing buffer never drops
// below 512 bytes.
func TestInvariants_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("live view is length*16 bytes and buffer floors at 512 bytes", prop.ForAll(
		func(ops []int) bool {
			a := New()
			var live []string
			for _, op := range ops {
				switch op % 4 {
				case 0:
					s := make([]byte, slugid.Size)
					_, _ = rand.Read(s)
					slug, _ := slugid.Encode(s)
					if err := a.Push(slug); err != nil {
						return false
					}
					live = append(live, slug)
				case 1:
					if a.Len() > 0 {
						if _, err := a.Pop(); err != nil {
							return false
						}
						live = live[:len(live)-1]
					}
				case 2:
					if a.Len() > 0 {
						if _, err := a.Shift(); err != nil {
							return false
						}
						live = live[1:]
					}
				case 3:
					if len(live) > 0 {
						target := live[0]
						if _, err := a.Remove(target); err != nil {
							return false
						}
						live = live[1:]
					}
				}

				if len(a.Bytes()) != a.Len()*slotSize {
					return false
				}
				if a.Len() < 0 {
					return false
				}
				if len(a.buf) < minCapacitySlots*slotSize {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
