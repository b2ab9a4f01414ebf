package config

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Redirect maps a regular expression to a destination. The pattern is
// unanchored: it matches when it occurs anywhere in the URI.
type Redirect struct {
	Pattern string `yaml:"pattern"`
	Target  string `yaml:"target"`

	re *regexp.Regexp
}

// Matches reports whether uri matches the redirect pattern. A pattern that
// does not compile never matches. Tables shared between goroutines should be
// compiled first (see Redirects.Compile) so patterns are not recompiled on
// every call.
func (r *Redirect) Matches(uri string) bool {
	re := r.re
	if re == nil {
		var err error
		if re, err = regexp.Compile(r.Pattern); err != nil {
			return false
		}
	}
	return re.MatchString(uri)
}

// Redirects is the ordered redirect table. The first matching entry wins.
//
// In YAML it is written either as a mapping, whose key order is kept:
//
//	redirects:
//	  "^/old-blog": "/blog"
//	  "^/legacy/": "https://legacy.example.com"
//
// or as a sequence of pattern/target pairs:
//
//	redirects:
//	  - pattern: "^/old-blog"
//	    target: "/blog"
type Redirects []Redirect

// UnmarshalYAML decodes both table forms without losing entry order
func (r *Redirects) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		table := make(Redirects, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var pattern, target string
			if err := node.Content[i].Decode(&pattern); err != nil {
				return fmt.Errorf("redirect pattern at line %d: %w", node.Content[i].Line, err)
			}
			if err := node.Content[i+1].Decode(&target); err != nil {
				return fmt.Errorf("redirect target for %q: %w", pattern, err)
			}
			table = append(table, Redirect{Pattern: pattern, Target: target})
		}
		*r = table
		return nil

	case yaml.SequenceNode:
		var entries []Redirect
		if err := node.Decode(&entries); err != nil {
			return err
		}
		*r = entries
		return nil

	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*r = nil
			return nil
		}
	}
	return fmt.Errorf("redirects must be a mapping or a sequence, line %d", node.Line)
}

// Compile compiles every pattern, reporting the first invalid one
func (r Redirects) Compile() error {
	for i := range r {
		re, err := regexp.Compile(r[i].Pattern)
		if err != nil {
			return fmt.Errorf("invalid redirect pattern %q: %w", r[i].Pattern, err)
		}
		r[i].re = re
	}
	return nil
}

// Lookup returns the target of the first entry matching uri
func (r Redirects) Lookup(uri string) (string, bool) {
	for i := range r {
		if r[i].Matches(uri) {
			return r[i].Target, true
		}
	}
	return "", false
}
