package urlmanager

import (
	"github.com/genaku/urlmanager/cache"
	"github.com/genaku/urlmanager/parser"
)

// =============================================================================
// MANAGER DEFAULTS
// =============================================================================

const (
	// DefaultCacheSize is the capacity of the rewritten prefix cache.
	DefaultCacheSize = cache.DefaultSize

	// DefaultSchemePolicy takes the scheme of the replacement base.
	DefaultSchemePolicy = parser.SchemeFromReplacement
)

// =============================================================================
// CONFIG VALUES
// =============================================================================

const (
	SchemePolicyReplacement = "replacement"
	SchemePolicyOriginal    = "original"
)
