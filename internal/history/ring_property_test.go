package history

import (
	"testing"

	"pgregory.net/rapid"
)

// survivors is the longest suffix of appended whose encoded size fits in
// capacity-1 bytes, which is what the ring must retain.
func survivors(appended []string, capacity int) []string {
	used := 0
	i := len(appended)
	for i > 0 && used+len(appended[i-1])+1 <= capacity-1 {
		used += len(appended[i-1]) + 1
		i--
	}
	return appended[i:]
}

func TestRing_PreservesOrderProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(2, 64).Draw(t, "capacity")
		record := rapid.StringOfN(rapid.RuneFrom([]rune("abcxyz\t ")), 0, capacity-2, -1)
		appended := rapid.SliceOfN(record, 0, 40).Draw(t, "records")

		r, err := NewRing(capacity)
		if err != nil {
			t.Fatalf("NewRing(%d): %v", capacity, err)
		}

		for n, rec := range appended {
			if _, err := r.AppendString(rec); err != nil {
				t.Fatalf("append %q: %v", rec, err)
			}

			got, err := r.Replay()
			if err != nil {
				t.Fatalf("replay: %v", err)
			}
			want := survivors(appended[:n+1], capacity)
			if len(got) != len(want) {
				t.Fatalf("after %d appends: got %q, want %q", n+1, got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("after %d appends: got %q, want %q", n+1, got, want)
				}
			}
			if r.Count() != len(want) {
				t.Fatalf("Count() = %d, want %d", r.Count(), len(want))
			}
			if r.Empty() {
				t.Fatalf("ring empty right after appending %q", rec)
			}
		}
	})
}
