package header

// Offer is one decoded `name[; key[=value]]*` fragment of a header.
type Offer struct {
	Name   string
	Params Params
}

// Offers is the ordered, duplicate-preserving decoded form of a header:
// every comma-separated offer, in the order it appeared, including
// repeated names.
type Offers struct {
	entries []Offer
	byName  map[string][]Params
}

// Len returns the number of offers, including duplicate names.
func (o Offers) Len() int { return len(o.entries) }

// Entries returns the offers in header order. The returned slice must not
// be mutated by the caller.
func (o Offers) Entries() []Offer { return o.entries }

// ByName returns the Params of every offer with the given name, in the
// order they appeared, or an empty (non-nil) slice if there were none.
func (o *Offers) ByName(name string) []Params {
	if o.byName == nil {
		o.byName = make(map[string][]Params, len(o.entries))
		for _, e := range o.entries {
			o.byName[e.Name] = append(o.byName[e.Name], e.Params)
		}
	}
	if ps, ok := o.byName[name]; ok {
		return ps
	}
	return []Params{}
}

func (o *Offers) add(e Offer) {
	o.entries = append(o.entries, e)
	o.byName = nil // invalidate memoized index
}
