package domain

// ValidateArticle checks that every required key maps to a non-empty value.
// A nil or empty required list accepts everything.
func ValidateArticle(a ParsedArticle, required []string) error {
	fields := a.Fields()
	for _, key := range required {
		if fields[key] == "" {
			return &ValidationError{Field: key, Wrapped: ErrMissingField}
		}
	}
	return nil
}
