package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// heading is a walking direction relative to the entrance, which faces
// into the store along +Y.
type heading string

const (
	headingRight   heading = "right"
	headingLeft    heading = "left"
	headingForward heading = "forward"
	headingBack    heading = "back"
)

func headingOf(from, to domain.Point) heading {
	dx, dy := to.X-from.X, to.Y-from.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return headingRight
		}
		return headingLeft
	}
	if dy > 0 {
		return headingForward
	}
	return headingBack
}

// describeLeg renders a leg as step-by-step directions, merging
// consecutive moves in the same heading.
func describeLeg(wps []domain.Waypoint, product domain.Product, aisle domain.Aisle) string {
	where := fmt.Sprintf("%s is in %s.", product.Name, product.LocationLabel(aisle))

	var steps []string
	var cur heading
	run := 0.0
	flush := func() {
		if run > 0 {
			steps = append(steps, fmt.Sprintf("go %s %s m", cur, formatMetres(run)))
		}
	}
	for i := 1; i < len(wps); i++ {
		d := wps[i-1].DistanceTo(wps[i].Point)
		if d == 0 {
			continue
		}
		h := headingOf(wps[i-1].Point, wps[i].Point)
		if h != cur {
			flush()
			cur, run = h, 0
		}
		run += d
	}
	flush()

	if len(steps) == 0 {
		return "You're already there! " + where
	}
	steps[0] = strings.ToUpper(steps[0][:1]) + steps[0][1:]
	return strings.Join(steps, ", then ") + ". " + where
}

func formatMetres(d float64) string {
	return strconv.FormatFloat(round1(d), 'f', -1, 64)
}
