package cache

import (
	"context"

	"github.com/Sumatoshi-tech/tsedit/pkg/tsast"
)

// Parser parses through a ParseCache.
type Parser struct {
	parser *tsast.Parser
	cache  *ParseCache
}

// NewParser wraps parser with cache. A nil cache disables caching.
func NewParser(parser *tsast.Parser, cache *ParseCache) *Parser {
	if parser == nil {
		parser = tsast.NewParser()
	}

	return &Parser{parser: parser, cache: cache}
}

// Parse detects the language of fileName and parses content.
func (p *Parser) Parse(ctx context.Context, fileName string, content []byte) (*tsast.SourceFile, error) {
	lang, err := tsast.DetectLanguage(fileName, content)
	if err != nil {
		return nil, err
	}

	return p.ParseLanguage(ctx, lang, fileName, content)
}

// ParseLanguage parses content as lang, reusing an earlier identical parse.
func (p *Parser) ParseLanguage(ctx context.Context, lang, fileName string, content []byte) (*tsast.SourceFile, error) {
	if p.cache == nil {
		return p.parser.ParseLanguage(ctx, lang, fileName, content)
	}

	key := KeyOf(lang, fileName, content)
	if sf := p.cache.Get(key); sf != nil {
		return sf, nil
	}

	sf, err := p.parser.ParseLanguage(ctx, lang, fileName, content)
	if err != nil {
		return nil, err
	}

	p.cache.Put(key, sf)

	return sf, nil
}

// Stats returns the cache counters, zero when caching is disabled.
func (p *Parser) Stats() Stats {
	if p.cache == nil {
		return Stats{}
	}

	return p.cache.Stats()
}
