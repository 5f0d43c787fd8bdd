package filter

import (
	"fmt"
	"regexp"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/slices"

	"github.com/Feresey/dumptrim/dump"
)

// Rules decides which tables lose their data blocks. Exact names win over
// patterns, patterns win over the optional script policy.
type Rules struct {
	exact    mapset.Set[string]
	patterns []*regexp.Regexp
	policy   *Policy
}

func NewRules(names []string, patterns []string, policy *Policy) (*Rules, error) {
	r := &Rules{
		exact:  mapset.NewThreadUnsafeSet(names...),
		policy: policy,
	}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile exclude pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// Excluded reports whether the table's data block must be dropped. An error
// can only come from the script policy; the caller decides how to degrade.
func (r *Rules) Excluded(id dump.Identifier) (bool, error) {
	name := id.String()
	if r.exact.Contains(name) {
		return true, nil
	}
	for _, re := range r.patterns {
		if re.MatchString(name) {
			return true, nil
		}
	}
	if r.policy != nil {
		return r.policy.Exclude(id.Schema, id.Name)
	}
	return false, nil
}

// Names returns the exact exclusion names in sorted order.
func (r *Rules) Names() []string {
	names := r.exact.ToSlice()
	slices.Sort(names)
	return names
}
