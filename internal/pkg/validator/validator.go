package validator

// Validator checks structs against their declared validation rules.
type Validator interface {
	// Validate returns an error describing every failed rule, or nil.
	Validate(data any) error
}
