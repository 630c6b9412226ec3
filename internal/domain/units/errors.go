package units

import "errors"

var (
	ErrUnitNotFound         = errors.New("unit not found")
	ErrUnitCodeNotFound     = errors.New("unit code not found")
	ErrAlreadyMember        = errors.New("already a member of the unit")
	ErrNotMember            = errors.New("not a member of the unit")
	ErrNameRequired         = errors.New("unit name is required")
	ErrCodeRequired         = errors.New("unit code is required")
	ErrCodeGenerationFailed = errors.New("unit code generation failed")
)
