package analytics

import (
	"sort"

	"github.com/brandlens/brandlens-cli/internal/mention"
	"github.com/brandlens/brandlens-cli/internal/model"
)

// TopSources ranks the domains cited by records where the brand was
// mentioned. Each citation increments its domain's count; ties keep the
// input order, which callers conventionally supply most-recent-first.
// Citations whose URL does not parse are skipped.
func TopSources(records []model.SearchRecord, limit int) []model.DomainStat {
	stats := make(map[string]*model.DomainStat)
	var order []string

	for _, rec := range records {
		norm, det := derive(rec)
		if !det.Mentioned {
			continue
		}
		query := trimQuery(rec.Query)

		for _, c := range norm.Citations {
			host, ok := mention.Hostname(c.URL)
			if !ok {
				continue
			}
			st, seen := stats[host]
			if !seen {
				st = &model.DomainStat{Domain: host, RepresentativeURL: c.URL}
				stats[host] = st
				order = append(order, host)
			}
			st.MentionCount++
			if query != "" && !containsString(st.Queries, query) {
				st.Queries = append(st.Queries, query)
			}
		}
	}

	out := make([]model.DomainStat, 0, len(order))
	for _, host := range order {
		out = append(out, *stats[host])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MentionCount > out[j].MentionCount
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
