package popstage

import (
	"fmt"
	"sort"

	"github.com/tanema/gween/ease"
)

// easings maps configuration names to easing functions. The power*.out
// names follow the GSAP naming used by the scene's designers.
var easings = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"inQuad":     ease.InQuad,
	"outQuad":    ease.OutQuad,
	"inOutQuad":  ease.InOutQuad,
	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"inQuart":    ease.InQuart,
	"outQuart":   ease.OutQuart,
	"inOutQuart": ease.InOutQuart,
	"inQuint":    ease.InQuint,
	"outQuint":   ease.OutQuint,
	"inOutQuint": ease.InOutQuint,
	"inSine":     ease.InSine,
	"outSine":    ease.OutSine,
	"inOutSine":  ease.InOutSine,
	"inExpo":     ease.InExpo,
	"outExpo":    ease.OutExpo,
	"inOutExpo":  ease.InOutExpo,
	"inBack":     ease.InBack,
	"outBack":    ease.OutBack,
	"outBounce":  ease.OutBounce,

	"power1.out": ease.OutQuad,
	"power2.out": ease.OutCubic,
	"power3.out": ease.OutQuart,
	"power4.out": ease.OutQuint,
	"power4":     ease.OutQuint,
}

// LookupEasing returns the easing function registered under name.
func LookupEasing(name string) (ease.TweenFunc, error) {
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return fn, nil
}

// EasingNames returns every registered easing name, sorted.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
