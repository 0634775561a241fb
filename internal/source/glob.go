package source

import (
	"regexp"
	"strings"
)

// Filter selects repository paths by include and exclude globs. "**/"
// matches any number of directories, "**" anything and "*" anything but a
// slash.
type Filter struct {
	Include  []string
	Exclude  []string
	MaxFiles int
}

func (f Filter) Apply(files []string) []string {
	return filterFiles(files, globsToRegexp(f.Include), globsToRegexp(f.Exclude), f.MaxFiles)
}

func globsToRegexp(globs []string) *regexp.Regexp {
	var parts []string
	for _, g := range globs {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		r := regexp.QuoteMeta(g)
		// **/ must be handled before **
		r = strings.ReplaceAll(r, `\*\*/`, "(.*/)?")
		r = strings.ReplaceAll(r, `\*\*`, ".*")
		r = strings.ReplaceAll(r, `\*`, "[^/]*")
		parts = append(parts, "^"+r+"$")
	}
	if len(parts) == 0 {
		return nil
	}
	return regexp.MustCompile(strings.Join(parts, "|"))
}

func filterFiles(files []string, include, exclude *regexp.Regexp, max int) []string {
	var out []string
	for _, f := range files {
		if include != nil && !include.MatchString(f) {
			continue
		}
		if exclude != nil && exclude.MatchString(f) {
			continue
		}
		out = append(out, f)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}
