// Package registry holds the table of known banks used to identify the
// issuer of a statement.
package registry

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAccountPattern finds an account number following "Account No",
// "A/C No", "AC Number" and similar labels. Masked prefixes such as
// "XXXXXX1234" are skipped so the digit run is captured.
var DefaultAccountPattern = regexp.MustCompile(
	`(?i)\b(?:account|a/c|ac)\s*(?:no\.?|number|num|#)?\s*[:\-]?\s*[xX*]*(\d{4,})`,
)

// Entry is one bank in the registry.
type Entry struct {
	Name           string
	Keywords       []string // lowercase substrings
	AccountPattern *regexp.Regexp
}

// Registry is an ordered, read-only list of banks. Order is the tie-break:
// the first entry with a matching keyword wins.
type Registry struct {
	entries []Entry
}

// New builds a registry from entries, lowercasing keywords and filling in
// the default account pattern where none is given.
func New(entries []Entry) *Registry {
	r := &Registry{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		kws := make([]string, 0, len(e.Keywords))
		for _, kw := range e.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		if e.AccountPattern == nil {
			e.AccountPattern = DefaultAccountPattern
		}
		e.Keywords = kws
		r.entries = append(r.entries, e)
	}
	return r
}

// Default returns the built-in registry.
func Default() *Registry {
	return New([]Entry{
		{Name: "HDFC Bank", Keywords: []string{"hdfc", "hdfc bank"}},
		{Name: "ICICI Bank", Keywords: []string{"icici", "icici bank"}},
		{Name: "State Bank of India", Keywords: []string{"sbi", "state bank", "state bank of india"}},
		{Name: "Axis Bank", Keywords: []string{"axis", "axis bank"}},
		{Name: "Kotak Mahindra Bank", Keywords: []string{"kotak", "kotak mahindra"}},
		{Name: "Punjab National Bank", Keywords: []string{"pnb", "punjab national"}},
		{Name: "Bank of Baroda", Keywords: []string{"bob", "bank of baroda", "baroda"}},
		{Name: "Canara Bank", Keywords: []string{"canara", "canara bank"}},
		{Name: "Union Bank", Keywords: []string{"union", "union bank"}},
		{Name: "IDFC First Bank", Keywords: []string{"idfc", "idfc first"}},
		{Name: "Metro Bank", Keywords: []string{"metro bank", "metrobankonline"}},
		{Name: "HSBC", Keywords: []string{"hsbc", "hsbc.co.uk"}},
		{Name: "Barclays", Keywords: []string{"barclays", "barclays.co.uk"}},
	})
}

// Lookup returns the first entry with a keyword contained in lower, which
// must already be lowercased.
func (r *Registry) Lookup(lower string) (Entry, bool) {
	for _, e := range r.entries {
		for _, kw := range e.Keywords {
			if strings.Contains(lower, kw) {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// Entries returns a copy of the registry contents in precedence order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of banks.
func (r *Registry) Len() int { return len(r.entries) }

type fileYAML struct {
	Banks []struct {
		Name           string   `yaml:"name"`
		Keywords       []string `yaml:"keywords"`
		AccountPattern string   `yaml:"account_pattern,omitempty"`
	} `yaml:"banks"`
}

// ErrEmptyRegistry is returned when a registry file lists no banks.
var ErrEmptyRegistry = errors.New("registry has no banks")

// Load reads a YAML registry:
//
//	banks:
//	  - name: HDFC Bank
//	    keywords: [hdfc]
//	    account_pattern: '(?i)account\s*no\s*:?\s*(\d{4,})'
func Load(r io.Reader) (*Registry, error) {
	var f fileYAML
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}
	if len(f.Banks) == 0 {
		return nil, ErrEmptyRegistry
	}

	entries := make([]Entry, 0, len(f.Banks))
	for _, b := range f.Banks {
		if b.Name == "" {
			return nil, fmt.Errorf("registry entry without a name")
		}
		e := Entry{Name: b.Name, Keywords: b.Keywords}
		if b.AccountPattern != "" {
			re, err := regexp.Compile(b.AccountPattern)
			if err != nil {
				return nil, fmt.Errorf("bank %q: compiling account pattern: %w", b.Name, err)
			}
			if re.NumSubexp() < 1 {
				return nil, fmt.Errorf("bank %q: account pattern needs a capture group", b.Name)
			}
			e.AccountPattern = re
		}
		entries = append(entries, e)
	}
	return New(entries), nil
}
