package shadowvol

import (
	"github.com/gogpu/q3/gpubuf"
	"github.com/gogpu/q3/gpusharing"
)

// TagShadowVolumes is the sharing-group tag of the shadow volume cache.
var TagShadowVolumes = gpusharing.MakeTag('s', 'v', 'c', 'k')

// Option configures a Manager during creation.
//
// WithLightTolerance and WithLedger configure the cache, and a sharing
// group holds one cache per tag, created by the first Manager that uses
// the group. Later managers with the same tag use that cache as it is,
// whatever their own tolerance and ledger. Give managers that need
// different settings their own tag with WithTag.
//
// Example:
//
//	// Defaults: group ledger, 7e-6 light tolerance
//	m := shadowvol.NewManager()
//
//	// Process-wide ledger for memory diagnostics
//	m := shadowvol.NewManager(shadowvol.WithLedger(ledger))
type Option func(*options)

type options struct {
	tag            gpusharing.Tag
	lightTolerance float32
	ledger         *gpubuf.Ledger
}

func defaultOptions() options {
	return options{
		tag:            TagShadowVolumes,
		lightTolerance: DefaultLightTolerance,
		ledger:         nil, // group ledger
	}
}

// WithLightTolerance sets the squared distance below which a cached
// volume's light position still matches the requested one.
// Non-positive values are ignored.
func WithLightTolerance(distSq float32) Option {
	return func(o *options) {
		if distSq > 0 {
			o.lightTolerance = distSq
		}
	}
}

// WithLedger records buffer allocations into l instead of the sharing
// group's ledger.
func WithLedger(l *gpubuf.Ledger) Option {
	return func(o *options) {
		o.ledger = l
	}
}

// WithTag stores the cache under a different sharing-group tag, so that
// two independent managers can coexist in one group.
func WithTag(tag gpusharing.Tag) Option {
	return func(o *options) {
		o.tag = tag
	}
}
