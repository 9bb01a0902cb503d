package metric

// Declaration is one entry of a service's method catalog.
type Declaration struct {
	Kind        Kind
	Name        string
	Description string
}

// ID returns the method identifier of the declaration.
func (d Declaration) ID() string {
	return MethodID(d.Kind, d.Name)
}

// Catalog collects declarations in source order.
//
//	decls := metric.NewCatalog().
//		Increment("NetaxeptRegistration_failed", "When Netaxept registration fails").
//		Timing("SubscribeFailed", "When email subscription fails").
//		Declarations()
type Catalog struct {
	decls []Declaration
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Declare adds a declaration of an arbitrary kind.
func (c *Catalog) Declare(kind Kind, name, description string) *Catalog {
	c.decls = append(c.decls, Declaration{Kind: kind, Name: name, Description: description})
	return c
}

func (c *Catalog) Increment(name, description string) *Catalog {
	return c.Declare(KindIncrement, name, description)
}

func (c *Catalog) Decrement(name, description string) *Catalog {
	return c.Declare(KindDecrement, name, description)
}

func (c *Catalog) Timing(name, description string) *Catalog {
	return c.Declare(KindTiming, name, description)
}

func (c *Catalog) Microtiming(name, description string) *Catalog {
	return c.Declare(KindMicrotiming, name, description)
}

func (c *Catalog) Gauge(name, description string) *Catalog {
	return c.Declare(KindGauge, name, description)
}

func (c *Catalog) Histogram(name, description string) *Catalog {
	return c.Declare(KindHistogram, name, description)
}

func (c *Catalog) Distribution(name, description string) *Catalog {
	return c.Declare(KindDistribution, name, description)
}

func (c *Catalog) Set(name, description string) *Catalog {
	return c.Declare(KindSet, name, description)
}

func (c *Catalog) UpdateDelta(name, description string) *Catalog {
	return c.Declare(KindUpdateDelta, name, description)
}

// Declarations returns a copy of the collected declarations.
func (c *Catalog) Declarations() []Declaration {
	out := make([]Declaration, len(c.decls))
	copy(out, c.decls)
	return out
}
