package validate

import (
	"regexp"
	"strconv"
	"strings"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func LenRange(field, value string, min, max int) *ErrField {
	if len(value) < min || len(value) > max {
		return &ErrField{Field: field, Msg: "length must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max)}
	}
	return nil
}

func MaxLen(field, value string, max int) *ErrField {
	if len(value) > max {
		return &ErrField{Field: field, Msg: "must be at most " + strconv.Itoa(max) + " characters"}
	}
	return nil
}

func Pattern(field, value string, re *regexp.Regexp, msg string) *ErrField {
	if !re.MatchString(value) {
		return &ErrField{Field: field, Msg: msg}
	}
	return nil
}
