package round

import (
	"fmt"

	"github.com/parkside/discscore/internal/config"
)

// Input is the raw per-hole entry. Throws is required; Approaches and Putts
// are optional sub-values. Par and Distance are only read while the session
// is configuring a new course (hole metadata editable).
type Input struct {
	Throws     int
	Approaches *int
	Putts      *int

	Par      *int
	Distance *int
}

// Validate runs the entry validation protocol. It is a pure function of the
// three input values and the configured bounds, independent of any UI.
//
// All applicable field errors are collected and returned together. The
// consistency rule only runs once the three individual fields are valid and
// both sub-values are present: a hole needs at least one throw that is
// neither an approach nor a putt, so approaches+putts must be at most
// throws-1.
func Validate(in Input, b config.Bounds) ValidationErrors {
	var errs ValidationErrors

	switch {
	case in.Throws < b.ThrowsMin:
		errs = append(errs, FieldError{FieldThrows, fmt.Sprintf("must be at least %d", b.ThrowsMin)})
	case in.Throws > b.ThrowsMax:
		errs = append(errs, FieldError{FieldThrows, fmt.Sprintf("cannot exceed %d", b.ThrowsMax)})
	}

	errs = append(errs, validateSubValue(FieldApproaches, in.Approaches, b)...)
	errs = append(errs, validateSubValue(FieldPutts, in.Putts, b)...)

	if len(errs) == 0 && in.Approaches != nil && in.Putts != nil {
		if *in.Approaches+*in.Putts > in.Throws-1 {
			errs = append(errs, FieldError{
				FieldConsistency,
				fmt.Sprintf("approaches (%d) plus putts (%d) must leave at least one other throw of %d",
					*in.Approaches, *in.Putts, in.Throws),
			})
		}
	}

	return errs
}

func validateSubValue(f Field, v *int, b config.Bounds) ValidationErrors {
	if v == nil {
		return nil
	}
	switch {
	case *v < b.SubValueMin:
		return ValidationErrors{{f, fmt.Sprintf("must be at least %d", b.SubValueMin)}}
	case *v > b.SubValueMax:
		return ValidationErrors{{f, fmt.Sprintf("cannot exceed %d", b.SubValueMax)}}
	}
	return nil
}

// validateHoleSetup checks the editable hole metadata while configuring.
func validateHoleSetup(par int, b config.Bounds) error {
	if par < b.ParMin || par > b.ParMax {
		return fmt.Errorf("par %d out of range [%d, %d]", par, b.ParMin, b.ParMax)
	}
	return nil
}
