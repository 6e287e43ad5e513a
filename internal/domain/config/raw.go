package config

import "fmt"

// Raw-section accessors. Provider sections are untyped YAML maps; each
// provider pulls out the keys it understands with these helpers and
// rejects anything malformed with a SECTION_INVALID error.

// StringsFromSection reads a list-of-strings key from a raw section.
// A missing key yields an empty list.
func StringsFromSection(section map[string]interface{}, key string) ([]string, error) {
	raw, ok := section[key]
	if !ok {
		return nil, nil
	}

	list, ok := raw.([]interface{})
	if !ok {
		return nil, &UserError{
			Code:    ErrCodeSectionInvalid,
			Message: fmt.Sprintf("'%s' must be a list of strings", key),
			Context: key,
		}
	}

	result := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, &UserError{
				Code:    ErrCodeSectionInvalid,
				Message: fmt.Sprintf("'%s' contains a non-string entry: %v", key, item),
				Context: key,
			}
		}
		result = append(result, s)
	}
	return result, nil
}

// StringFromSection reads a string key from a raw section, returning
// fallback when absent.
func StringFromSection(section map[string]interface{}, key, fallback string) (string, error) {
	raw, ok := section[key]
	if !ok {
		return fallback, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", &UserError{
			Code:    ErrCodeSectionInvalid,
			Message: fmt.Sprintf("'%s' must be a string", key),
			Context: key,
		}
	}
	return s, nil
}

// IntFromSection reads an integer key from a raw section, returning
// fallback when absent.
func IntFromSection(section map[string]interface{}, key string, fallback int) (int, error) {
	raw, ok := section[key]
	if !ok {
		return fallback, nil
	}
	n, ok := raw.(int)
	if !ok {
		return 0, &UserError{
			Code:    ErrCodeSectionInvalid,
			Message: fmt.Sprintf("'%s' must be an integer", key),
			Context: key,
		}
	}
	return n, nil
}

// BoolFromSection reads a boolean key from a raw section, returning
// fallback when absent.
func BoolFromSection(section map[string]interface{}, key string, fallback bool) (bool, error) {
	raw, ok := section[key]
	if !ok {
		return fallback, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, &UserError{
			Code:    ErrCodeSectionInvalid,
			Message: fmt.Sprintf("'%s' must be a boolean", key),
			Context: key,
		}
	}
	return b, nil
}
