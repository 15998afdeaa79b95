package rectmerge

import (
	"testing"

	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/stretchr/testify/require"
)

// two overlapping rectangles merge into their bounding box; two
// far-apart rectangles stay separate.
func TestMergeWorkedExamples(t *testing.T) {
	m := New(DefaultWasteRatio)
	m.Insert(geometry.NewRect(0, 0, 10, 10))
	m.Insert(geometry.NewRect(5, 5, 15, 15))
	m.Merge()
	require.Len(t, m.Begin(), 1)
	require.Equal(t, geometry.NewRect(0, 0, 15, 15), m.Begin()[0])

	m2 := New(DefaultWasteRatio)
	m2.Insert(geometry.NewRect(0, 0, 10, 10))
	m2.Insert(geometry.NewRect(100, 100, 110, 110))
	m2.Merge()
	require.Len(t, m2.Begin(), 2, "far-apart rectangles must not merge")
}

// every merged rectangle's sources cover at least the waste ratio of
// its own area.
func TestMergeRespectsWasteRatioBound(t *testing.T) {
	cases := [][]geometry.Rect{
		{geometry.NewRect(0, 0, 9, 9), geometry.NewRect(4, 4, 13, 13), geometry.NewRect(8, 8, 17, 17)},
		{geometry.NewRect(0, 0, 4, 4), geometry.NewRect(3, 0, 7, 4), geometry.NewRect(50, 50, 54, 54)},
		{geometry.NewRect(0, 0, 100, 1)},
	}

	for _, inserts := range cases {
		sourceArea := map[geometry.Rect]int{}
		m := New(DefaultWasteRatio)
		for _, r := range inserts {
			m.Insert(r)
		}
		m.Merge()

		for _, u := range m.Begin() {
			total := 0
			for _, r := range inserts {
				if u.Clip(r) == r {
					total += r.Area()
				}
			}
			_ = sourceArea
			require.GreaterOrEqual(t, float64(total), DefaultWasteRatio*float64(u.Area()),
				"merged rect %+v wastes more than the configured ratio", u)
		}
	}
}

func TestInsertMergesIntoMostRecentCandidate(t *testing.T) {
	m := New(DefaultWasteRatio)
	m.Insert(geometry.NewRect(0, 0, 9, 9))
	m.Insert(geometry.NewRect(100, 100, 109, 109))
	m.Insert(geometry.NewRect(1, 1, 10, 10))
	require.Len(t, m.Begin(), 2)
}

func TestResetClearsState(t *testing.T) {
	m := New(DefaultWasteRatio)
	m.Insert(geometry.NewRect(0, 0, 9, 9))
	m.Reset()
	require.Equal(t, 0, m.Len())
}

func TestInvalidRectIgnored(t *testing.T) {
	m := New(DefaultWasteRatio)
	m.Insert(geometry.Invalid)
	require.Equal(t, 0, m.Len())
}
