package schema

// Schema maps payload field names to their expected types.
type Schema map[string]Type

// Validate checks data against the schema and aggregates every failure.
// Fields wrapped with Optional may be absent; everything else is required.
// Fields present in data but not in the schema are ignored: collaborators
// are free to return more than we consume.
func Validate(s Schema, data map[string]any) error {
	if len(s) == 0 {
		return nil
	}

	var errs []error
	for field, typ := range s {
		value, present := data[field]
		if !present {
			if _, optional := typ.(optionalType); optional {
				continue
			}
			errs = append(errs, &FieldError{Field: field, Reason: "required"})
			continue
		}
		if err := typ.Validate(value); err != nil {
			errs = append(errs, &FieldError{Field: field, Reason: err.Error(), Value: value})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateEach applies the schema to every element of a payload array, as
// returned by the extraction collaborator. Element errors carry the index.
func ValidateEach(s Schema, items []map[string]any) error {
	var errs []error
	for i, item := range items {
		if err := Validate(s, item); err != nil {
			errs = append(errs, &ItemError{Index: i, Err: err})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
