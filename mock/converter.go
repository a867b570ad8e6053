package mock

import "github.com/fwojciec/aptnotice"

var _ aptnotice.Converter = (*Converter)(nil)

// Converter is a mock implementation of aptnotice.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ aptnotice.TableNormalizer = (*TableNormalizer)(nil)

// TableNormalizer is a mock implementation of aptnotice.TableNormalizer.
type TableNormalizer struct {
	NormalizeFn func(markup string) ([][]string, error)
}

func (n *TableNormalizer) Normalize(markup string) ([][]string, error) {
	return n.NormalizeFn(markup)
}
