// Package bake runs CSS-driven collation rulesets over a single-page book.
// A ruleset is ordinary CSS whose declarations move content around instead
// of styling it: move-to/copy-to collect elements into named buckets,
// content: pending(...) flushes a bucket back into the tree, and
// ::before/::after selectors grow container elements to flush into.
package bake

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declaration properties the engine understands.
const (
	propMoveTo   = "move-to"
	propCopyTo   = "copy-to"
	propContent  = "content"
	propClass    = "class"
	propDataType = "data-type"
	propID       = "id"
)

// Decl is one declaration inside a rule, value kept as written.
type Decl struct {
	Property string
	Value    string
}

// Rule is one parsed ruleset entry: a compiled selector, the pseudo element
// it targets (empty for the element itself), and its declarations in source
// order.
type Rule struct {
	Selector string
	Pseudo   string
	Decls    []Decl

	matcher cascadia.Selector
}

// collects reports whether the rule gathers elements into buckets.
func (r *Rule) collects() bool {
	for _, d := range r.Decls {
		if d.Property == propMoveTo || d.Property == propCopyTo {
			return true
		}
	}
	return false
}

// ParseRuleset parses CSS into rules. Selectors must compile; at-rules and
// comments are skipped. Only ::before and ::after pseudo elements are
// allowed.
func ParseRuleset(data []byte) ([]*Rule, error) {
	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	var rules []*Rule
	var current *Rule
	for {
		gt, _, raw := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != io.EOF {
				return nil, fmt.Errorf("bake: parse ruleset: %w", err)
			}
			return rules, nil
		case css.BeginRulesetGrammar:
			rule, err := newRule(tokensText(parser.Values()))
			if err != nil {
				return nil, err
			}
			current = rule
			rules = append(rules, rule)
		case css.DeclarationGrammar:
			if current == nil {
				continue
			}
			current.Decls = append(current.Decls, Decl{
				Property: strings.ToLower(string(raw)),
				Value:    strings.TrimSpace(tokensText(parser.Values())),
			})
		case css.EndRulesetGrammar:
			current = nil
		}
	}
}

func newRule(selector string) (*Rule, error) {
	base, pseudo, found := strings.Cut(selector, "::")
	if found && pseudo != "before" && pseudo != "after" {
		return nil, fmt.Errorf("bake: unsupported pseudo element in %q", selector)
	}
	matcher, err := cascadia.Compile(strings.TrimSpace(base))
	if err != nil {
		return nil, fmt.Errorf("bake: selector %q: %w", selector, err)
	}
	return &Rule{Selector: selector, Pseudo: pseudo, matcher: matcher}, nil
}

func tokensText(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String())
}

// pendingBucket picks the bucket name out of a pending(<bucket>) value.
func pendingBucket(value string) (string, bool) {
	inner, ok := strings.CutPrefix(value, "pending(")
	if !ok {
		return "", false
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return "", false
	}
	return cssUnquote(strings.TrimSpace(inner)), true
}

// cssUnquote strips one layer of CSS string quoting. Bare values pass
// through unchanged.
func cssUnquote(value string) string {
	if len(value) < 2 {
		return value
	}
	quote := value[0]
	if quote != '"' && quote != '\'' || value[len(value)-1] != quote {
		return value
	}
	inner := value[1 : len(value)-1]
	if !strings.ContainsRune(inner, '\\') {
		return inner
	}
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}
