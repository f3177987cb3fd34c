package collation

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/goliatone/go-epub/internal/bake"
)

// Baker mutates a parsed single-page book according to a ruleset. The
// collation pipeline does not care how: the default engine interprets CSS,
// tests swap in stand-ins.
type Baker interface {
	Bake(ctx context.Context, doc *goquery.Document, ruleset []byte) error
}

// RulesetBaker bakes with the CSS ruleset engine.
type RulesetBaker struct {
	engine *bake.Engine
}

// NewRulesetBaker returns the default baker.
func NewRulesetBaker(opts ...bake.Option) *RulesetBaker {
	return &RulesetBaker{engine: bake.New(opts...)}
}

// Bake implements Baker.
func (b *RulesetBaker) Bake(ctx context.Context, doc *goquery.Document, ruleset []byte) error {
	return b.engine.Bake(ctx, doc, ruleset)
}

// NoopBaker leaves the document alone. Collating with it reduces to a
// render/adapt round trip.
type NoopBaker struct{}

// Bake implements Baker.
func (NoopBaker) Bake(context.Context, *goquery.Document, []byte) error { return nil }
