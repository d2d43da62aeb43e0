package extract

import "strings"

// Page is the text of one PDF page. Number is 1-based.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// PageGroup is a run of consecutive pages belonging to one invoice.
type PageGroup struct {
	Key   string `json:"key"`
	Pages []Page `json:"pages"`
}

// Numbers returns the page numbers of the group in order.
func (g PageGroup) Numbers() []int {
	out := make([]int, len(g.Pages))
	for i, p := range g.Pages {
		out[i] = p.Number
	}
	return out
}

// Text joins the page texts of the group.
func (g PageGroup) Text() string {
	return JoinPages(g.Pages)
}

// TargetPages returns the pages whose text matches pattern, in input order.
// Each page is tested on its own. The boolean is false when no page matched.
func TargetPages(pages []Page, pattern string) ([]Page, bool) {
	re := compileOrLog("TargetPages", pattern)
	if re == nil {
		return nil, false
	}

	var out []Page
	for _, p := range pages {
		if re.MatchString(p.Text) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		log := componentLog()
		log.Warn().Str("pattern", pattern).Msg("No pages found matching pattern")
		return nil, false
	}
	return out, true
}

// GroupPages splits a batch into per-invoice groups. A new group starts at
// every page whose capture of keyPattern differs from the current key; pages
// without a capture stay with the current group.
func GroupPages(pages []Page, keyPattern string) []PageGroup {
	if len(pages) == 0 {
		return nil
	}
	if keyPattern == "" {
		return []PageGroup{{Pages: append([]Page(nil), pages...)}}
	}

	var groups []PageGroup
	for _, p := range pages {
		key, ok := Field(p.Text, keyPattern, nil)
		switch {
		case len(groups) == 0:
			groups = append(groups, PageGroup{Key: key})
		case ok && key != groups[len(groups)-1].Key:
			groups = append(groups, PageGroup{Key: key})
		}
		last := &groups[len(groups)-1]
		last.Pages = append(last.Pages, p)
	}
	return groups
}

// JoinPages concatenates page texts separated by newlines.
func JoinPages(pages []Page) string {
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n")
}
