package main

import "github.com/gsplat/spz"

// options is populated from flags only — never from the environment, per
// the codec's external-interface contract (§6).
type options struct {
	frame     string
	histogram bool
}

// Validate follows the validated-options-struct convention: a small struct
// with a single error-returning check, called once before use rather than
// scattering validation across flag callbacks.
func (o options) Validate() error {
	_, err := spz.ParseCoordinateSystem(o.frame)
	return err
}
