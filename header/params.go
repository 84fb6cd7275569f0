package header

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Params is an ordered mapping from parameter name to Value. Iteration
// order follows insertion order of the producer, as required by the
// grammar's serialization rule. It is built on go-ordered-map rather than a
// bare Go map plus a separate key slice, since that is exactly the shape
// this data needs: fast lookup, stable iteration order, no separate
// bookkeeping for "which keys have I seen".
type Params struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewParams returns an empty Params ready for use.
func NewParams() Params {
	return Params{m: orderedmap.New[string, Value]()}
}

func (p *Params) ensure() {
	if p.m == nil {
		p.m = orderedmap.New[string, Value]()
	}
}

// Set assigns v to key, overwriting any prior value without collapsing
// duplicates. Use Add during parsing when duplicate-key collapsing is
// required.
func (p *Params) Set(key string, v Value) {
	p.ensure()
	p.m.Set(key, v)
}

// Add records an occurrence of key with value v, collapsing into a Multi
// value if key has already been seen. This is the operation the parser
// uses; callers building Params by hand for a session's GenerateOffer /
// GenerateResponse normally want Set instead.
func (p *Params) Add(key string, v Value) {
	p.ensure()
	if existing, ok := p.m.Get(key); ok {
		p.m.Set(key, appendValue(existing, v))
		return
	}
	p.m.Set(key, v)
}

// Get returns the value for key and whether it was present.
func (p Params) Get(key string) (Value, bool) {
	if p.m == nil {
		return Value{}, false
	}
	return p.m.Get(key)
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Len returns the number of distinct keys.
func (p Params) Len() int {
	if p.m == nil {
		return 0
	}
	return p.m.Len()
}

// Keys returns the distinct keys in insertion order.
func (p Params) Keys() []string {
	if p.m == nil {
		return nil
	}
	keys := make([]string, 0, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Equal reports whether p and o carry the same keys, in the same order,
// with structurally equal values.
func (p Params) Equal(o Params) bool {
	if p.Len() != o.Len() {
		return false
	}
	ak, bk := p.Keys(), o.Keys()
	for i := range ak {
		if ak[i] != bk[i] {
			return false
		}
		av, _ := p.Get(ak[i])
		bv, _ := o.Get(bk[i])
		if !av.Equal(bv) {
			return false
		}
	}
	return true
}
