package parallel

import (
	"fmt"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestChunks_CoversEveryIndexOnce(t *testing.T) {
	for _, items := range []int{0, 1, 7, 1000} {
		t.Run(fmt.Sprintf("items=%d", items), func(t *testing.T) {
			hits := make([]int32, items)
			Chunks(items, 0, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("index %d visited %d times", i, h)
				}
			}
		})
	}
}

func TestChunks_SmallInputRunsInline(t *testing.T) {
	var ranges [][2]int
	Chunks(5, 8, func(start, end int) {
		ranges = append(ranges, [2]int{start, end})
	})
	if len(ranges) != 1 || ranges[0] != [2]int{0, 5} {
		t.Errorf("ranges = %v, want one range [0,5)", ranges)
	}
}

func TestForEach(t *testing.T) {
	tests := []struct {
		name    string
		items   int
		failing map[int]bool
		wantErr string
	}{
		{name: "none", items: 0},
		{name: "all succeed", items: 10},
		{name: "lowest index wins", items: 50, failing: map[int]bool{31: true, 7: true}, wantErr: "failed at 7"},
		{name: "two targets, second fails", items: 2, failing: map[int]bool{1: true}, wantErr: "failed at 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ran int32
			err := ForEach(tt.items, func(i int) error {
				atomic.AddInt32(&ran, 1)
				if tt.failing[i] {
					return fmt.Errorf("failed at %d", i)
				}
				return nil
			})
			if int(ran) != tt.items {
				t.Errorf("ran %d of %d", ran, tt.items)
			}
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("unexpected error: %v", err)
			case tt.wantErr != "" && (err == nil || err.Error() != tt.wantErr):
				t.Errorf("ForEach() error = %v, want %s", err, tt.wantErr)
			}
		})
	}
}
