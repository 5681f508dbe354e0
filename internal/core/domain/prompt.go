package domain

import "fmt"

// CheckPromptTemplate reports whether tmpl takes exactly args %s verbs.
// %% is a literal percent sign; any other verb is rejected.
func CheckPromptTemplate(tmpl string, args int) error {
	found := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		if i+1 == len(tmpl) {
			return fmt.Errorf("%w: prompt ends with a lone %%", ErrInvalidInput)
		}
		switch tmpl[i+1] {
		case '%':
		case 's':
			found++
		default:
			return fmt.Errorf("%w: prompt has unsupported verb %q at offset %d (write %%%% for a literal percent)",
				ErrInvalidInput, tmpl[i:i+2], i)
		}
		i++
	}
	if found != args {
		return fmt.Errorf("%w: prompt has %d %%s placeholders, expected %d", ErrInvalidInput, found, args)
	}
	return nil
}
