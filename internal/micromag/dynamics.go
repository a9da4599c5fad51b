package micromag

import "go.trai.ch/zerr"

// TermKind tags a dynamics term.
type TermKind int

const (
	DampingKind TermKind = iota
	PrecessionKind
	ZhangLiKind
	SlonczewskiKind
)

func (k TermKind) String() string {
	switch k {
	case DampingKind:
		return "damping"
	case PrecessionKind:
		return "precession"
	case ZhangLiKind:
		return "zhang_li"
	case SlonczewskiKind:
		return "slonczewski"
	}
	return "unknown"
}

// Term is one contribution to the equation of motion.
type Term interface {
	Kind() TermKind
}

// Damping is Gilbert damping.
type Damping struct {
	Alpha float64
}

// Precession is Larmor precession with gyromagnetic ratio Gamma0 in m/(A s).
type Precession struct {
	Gamma0 float64
}

// ZhangLi is the Zhang-Li spin-transfer torque. U is a Scalar, *PerRegion
// of scalars, or SpatialField of velocity vectors.
type ZhangLi struct {
	U    Quantity
	Beta float64
}

// Slonczewski is the Slonczewski spin-transfer torque.
type Slonczewski struct {
	Mp       Quantity
	Lambda   Quantity
	P        Quantity
	EpsPrime Quantity
	J        Quantity
}

func (Damping) Kind() TermKind     { return DampingKind }
func (Precession) Kind() TermKind  { return PrecessionKind }
func (ZhangLi) Kind() TermKind     { return ZhangLiKind }
func (Slonczewski) Kind() TermKind { return SlonczewskiKind }

// Dynamics holds at most one term per kind.
type Dynamics struct {
	terms []Term
}

// NewDynamics builds a collection from terms, failing on duplicates.
func NewDynamics(terms ...Term) (*Dynamics, error) {
	d := &Dynamics{}
	for _, t := range terms {
		if err := d.Add(t); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Add inserts t. A second term of the same kind is rejected.
func (d *Dynamics) Add(t Term) error {
	if _, ok := d.get(t.Kind()); ok {
		return zerr.With(zerr.Wrap(ErrDuplicateTerm, "cannot add term"), "term", t.Kind().String())
	}
	d.terms = append(d.terms, t)
	return nil
}

// Terms returns the terms in insertion order.
func (d *Dynamics) Terms() []Term {
	if d == nil {
		return nil
	}
	out := make([]Term, len(d.terms))
	copy(out, d.terms)
	return out
}

func (d *Dynamics) get(k TermKind) (Term, bool) {
	if d == nil {
		return nil, false
	}
	for _, t := range d.terms {
		if t.Kind() == k {
			return t, true
		}
	}
	return nil, false
}

func (d *Dynamics) Damping() (Damping, bool) {
	t, _ := d.get(DampingKind)
	switch v := t.(type) {
	case Damping:
		return v, true
	case *Damping:
		return *v, true
	}
	return Damping{}, false
}

func (d *Dynamics) Precession() (Precession, bool) {
	t, _ := d.get(PrecessionKind)
	switch v := t.(type) {
	case Precession:
		return v, true
	case *Precession:
		return *v, true
	}
	return Precession{}, false
}

func (d *Dynamics) ZhangLi() (ZhangLi, bool) {
	t, _ := d.get(ZhangLiKind)
	switch v := t.(type) {
	case ZhangLi:
		return v, true
	case *ZhangLi:
		return *v, true
	}
	return ZhangLi{}, false
}

func (d *Dynamics) Slonczewski() (Slonczewski, bool) {
	t, _ := d.get(SlonczewskiKind)
	switch v := t.(type) {
	case Slonczewski:
		return v, true
	case *Slonczewski:
		return *v, true
	}
	return Slonczewski{}, false
}
