package board

import (
	"fmt"
	"image"
	"sort"
)

// Region is a rectangular slot on the base board image. Corners may be given
// in either order; rendering normalizes them.
type Region struct {
	X0, Y0, X1, Y1 int
}

func (r Region) normalized() Region {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

func (r Region) rect() image.Rectangle {
	n := r.normalized()
	return image.Rect(n.X0, n.Y0, n.X1, n.Y1)
}

// Layout maps each configured quest name to its board region. Layout keys
// are the authoritative quest name set.
type Layout map[string]Region

// Names returns the layout keys in sorted order.
func (l Layout) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate rejects layouts that cannot back a board: no quests, or a region
// with no area.
func (l Layout) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("board layout has no quests")
	}
	for name, region := range l {
		if r := region.rect(); r.Dx() == 0 || r.Dy() == 0 {
			return fmt.Errorf("quest %q has an empty region", name)
		}
	}
	return nil
}
