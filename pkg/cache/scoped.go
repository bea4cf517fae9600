package cache

import "strings"

// ScopedKeyer namespaces another Keyer so that several deployments can share
// one Redis instance. It backs the cache.prefix config setting.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer prefixes every key of inner (DefaultKeyer when nil) with
// scope. A trailing colon is added when missing, so "staging" and
// "staging:" give the same keys. An empty scope returns inner unchanged.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return inner
	}
	if !strings.HasSuffix(scope, ":") {
		scope += ":"
	}
	return &ScopedKeyer{inner: inner, prefix: scope}
}

func (k *ScopedKeyer) DungeonKey(opts DungeonKeyOpts) string {
	return k.prefix + k.inner.DungeonKey(opts)
}

func (k *ScopedKeyer) LayoutKey(dungeonHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(dungeonHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

var _ Keyer = (*ScopedKeyer)(nil)
