package micromag

import "go.trai.ch/zerr"

// Domain errors for model construction and compilation. Callers match with
// errors.Is; the offending term, quantity or region is attached as metadata.
var (
	// ErrMissingTerm indicates a driver that needs a dynamics term the system does not have.
	ErrMissingTerm = zerr.New("micromag: required dynamics term missing")

	// ErrUnsupportedSpatialVaryingParameter indicates a spatially varying field
	// where only uniform or per-region values can be lowered.
	ErrUnsupportedSpatialVaryingParameter = zerr.New("micromag: spatially varying parameter not supported")

	// ErrDuplicateTerm indicates a second dynamics term of a kind already present.
	ErrDuplicateTerm = zerr.New("micromag: dynamics term already present")

	// ErrUnknownRegion indicates a region name the region relator cannot index.
	ErrUnknownRegion = zerr.New("micromag: unknown region")

	// ErrInvalidRunParameters indicates a non-positive or non-finite time or step count.
	ErrInvalidRunParameters = zerr.New("micromag: invalid run parameters")

	// ErrInvalidQuantity indicates a quantity shape that cannot be used where it was given.
	ErrInvalidQuantity = zerr.New("micromag: invalid quantity")

	// ErrUnknownDriver indicates a driver kind outside min, relax and time.
	ErrUnknownDriver = zerr.New("micromag: unknown driver kind")
)
