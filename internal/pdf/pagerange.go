package pdf

import (
	"fmt"
	"strconv"
	"strings"
)

// parsePageRange parses "1,3-5,8" into a sorted-as-given page list. An
// empty range means all pages and returns nil.
func parsePageRange(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if from, to, ok := strings.Cut(part, "-"); ok {
			start, err := parsePageNumber(from)
			if err != nil {
				return nil, err
			}
			end, err := parsePageNumber(to)
			if err != nil {
				return nil, err
			}
			if end < start {
				return nil, fmt.Errorf("range %q runs backwards", part)
			}
			for p := start; p <= end; p++ {
				pages = append(pages, p)
			}
			continue
		}
		p, err := parsePageNumber(part)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func parsePageNumber(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 1 {
		return 0, fmt.Errorf("invalid page number %q", s)
	}
	return p, nil
}
