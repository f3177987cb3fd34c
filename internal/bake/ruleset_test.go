package bake

import (
	"strings"
	"testing"
)

func TestParseRuleset(t *testing.T) {
	ruleset := `
/* gather notes, then grow a composite page for them */
aside[data-type="note"] { move-to: chapter-notes; }
@media print { p { color: red; } }
div[data-type="chapter"]::after {
  data-type: "composite-page";
  class: "os-notes";
  content: pending(chapter-notes);
}
`
	rules, err := ParseRuleset([]byte(ruleset))
	if err != nil {
		t.Fatalf("ParseRuleset: %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("parsed %d rules, want 3", len(rules))
	}

	first := rules[0]
	if first.Selector != `aside[data-type="note"]` || first.Pseudo != "" {
		t.Errorf("first rule = %q pseudo %q", first.Selector, first.Pseudo)
	}
	if len(first.Decls) != 1 || first.Decls[0] != (Decl{Property: "move-to", Value: "chapter-notes"}) {
		t.Errorf("first rule decls = %+v", first.Decls)
	}
	if !first.collects() {
		t.Error("move-to rule should collect")
	}

	last := rules[2]
	if last.Pseudo != "after" {
		t.Errorf("pseudo = %q, want after", last.Pseudo)
	}
	if len(last.Decls) != 3 {
		t.Fatalf("last rule has %d decls, want 3", len(last.Decls))
	}
	if last.Decls[2] != (Decl{Property: "content", Value: "pending(chapter-notes)"}) {
		t.Errorf("content decl = %+v", last.Decls[2])
	}
	if last.collects() {
		t.Error("pending rule should not collect")
	}
}

func TestParseRulesetRejectsBadSelectors(t *testing.T) {
	cases := map[string]string{
		"malformed selector":     `..bad { move-to: x; }`,
		"unknown pseudo element": `p::first-line { content: ""; }`,
	}
	for name, ruleset := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseRuleset([]byte(ruleset)); err == nil {
				t.Fatal("ParseRuleset accepted a bad selector")
			}
		})
	}
}

func TestPendingBucket(t *testing.T) {
	cases := []struct {
		value  string
		bucket string
		ok     bool
	}{
		{"pending(notes)", "notes", true},
		{`pending("chapter notes")`, "chapter notes", true},
		{"pending( notes )", "notes", true},
		{`"notes"`, "", false},
		{"pending(notes", "", false},
	}
	for _, tc := range cases {
		bucket, ok := pendingBucket(tc.value)
		if bucket != tc.bucket || ok != tc.ok {
			t.Errorf("pendingBucket(%q) = %q %v, want %q %v", tc.value, bucket, ok, tc.bucket, tc.ok)
		}
	}
}

func TestCSSUnquote(t *testing.T) {
	cases := []struct{ in, want string }{
		{`"os-notes"`, "os-notes"},
		{`'os-notes'`, "os-notes"},
		{`"say \"hi\""`, `say "hi"`},
		{"bare", "bare"},
		{`"`, `"`},
		{`""`, ""},
	}
	for _, tc := range cases {
		if got := cssUnquote(tc.in); got != tc.want {
			t.Errorf("cssUnquote(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := cssUnquote(`"mismatched'`); !strings.HasPrefix(got, `"`) {
		t.Errorf("mismatched quotes should pass through, got %q", got)
	}
}
