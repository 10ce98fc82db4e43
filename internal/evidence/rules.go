package evidence

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// A rule deletes every sentence matching its pattern. Rules are applied in
// order, so earlier rules see the original text and later rules see the
// remainder.
type rule struct {
	name    string
	pattern *regexp.Regexp
}

// Removal is clause-scoped, not sentence-scoped: disclaimers often lead
// into real content ("I can't browse the web, but Acme is ..."), so the
// match stops at the first clause boundary and swallows a following
// conjunction.
const (
	clauseLead = `[^,.!?\n]*`
	clauseTail = `[^,.!?\n]*[,.!?]?\s*(?:but\s+|however,?\s+|yet\s+)?`
)

func disclaimerRule(name, core string) rule {
	return rule{
		name:    name,
		pattern: regexp.MustCompile(`(?i)` + clauseLead + core + clauseTail),
	}
}

// disclaimerRules removes the boilerplate sentences engines emit when they
// could not (or chose not to) consult live sources. Order matters only for
// overlapping patterns; each rule is independent of the others.
var disclaimerRules = []rule{
	disclaimerRule("no_browsing", `(?:unable to|can(?:not|'t| not))\s[^,.!?\n]*browse`),
	disclaimerRule("no_realtime", `(?:no|don't have|do not have|lack)\s[^,.!?\n]*(?:real[- ]time|live)\s+(?:access|information)`),
	disclaimerRule("no_internet", `can(?:not|'t| not)\s[^,.!?\n]*(?:access|connect to)\s[^,.!?\n]*internet`),
	disclaimerRule("training_data", `based on my (?:training|knowledge)`),
	disclaimerRule("knowledge_cutoff", `knowledge\s+cut[- ]?off`),
	disclaimerRule("as_of_training", `as of my (?:last\s+)?(?:training|update)`),
	disclaimerRule("ai_model", `as an ai(?:\s+language)?\s+model`),
	// These two may span a clause boundary ("for the most accurate X,
	// check Y"), so their cores are sentence-scoped.
	disclaimerRule("check_elsewhere", `for the most (?:accurate|up[- ]to[- ]date|current)\s[^.!?\n]*(?:check|visit|refer|consult)`),
	disclaimerRule("recommend_checking", `i (?:recommend|suggest)\s[^.!?\n]*(?:checking|visiting|consulting)`),
}

// ruleFile is the YAML shape for operator-supplied extra rules.
type ruleFile struct {
	Disclaimers []struct {
		Name    string `yaml:"name"`
		Pattern string `yaml:"pattern"`
	} `yaml:"disclaimers"`
}

// LoadRules reads additional disclaimer patterns from a YAML file and
// returns a Summarizer that applies the built-in rules plus the extras.
func LoadRules(path string) (*Summarizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "evidence: read rules %s", path)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, eris.Wrap(err, "evidence: parse rules")
	}

	rules := make([]rule, 0, len(disclaimerRules)+len(rf.Disclaimers))
	rules = append(rules, disclaimerRules...)
	for _, d := range rf.Disclaimers {
		// Validate the pattern on its own first; embedding it in the
		// clause template can mask syntax errors (a lone "[" becomes a
		// character class against the template's tail).
		if _, err := regexp.Compile(d.Pattern); err != nil {
			return nil, eris.Wrapf(err, "evidence: invalid rule pattern %s", d.Name)
		}
		re, err := regexp.Compile(`(?i)` + clauseLead + d.Pattern + clauseTail)
		if err != nil {
			return nil, eris.Wrapf(err, "evidence: compile rule %s", d.Name)
		}
		rules = append(rules, rule{name: d.Name, pattern: re})
	}

	return &Summarizer{rules: rules}, nil
}
