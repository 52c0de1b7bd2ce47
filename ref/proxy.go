package ref

// Proxy is the opaque value scripts hold for a native object.
type Proxy struct {
	target any
	handle *Counted
}

// Target returns the native object, or ErrDestroyed once it has been cleaned up.
func (p *Proxy) Target() (any, error) {
	if p == nil || p.handle == nil {
		return nil, ErrNotBound
	}
	if p.handle.cleaned {
		return nil, ErrDestroyed
	}
	return p.target, nil
}

func (p *Proxy) Handle() *Counted {
	if p == nil {
		return nil
	}
	return p.handle
}

func (p *Proxy) Alive() bool {
	return p != nil && p.handle != nil && !p.handle.cleaned
}
