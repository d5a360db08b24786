package sheet

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType represents the expected type of a field
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
)

// DateFormats lists the accepted spreadsheet date layouts, tried in order.
var DateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
}

// ParseDate parses a date in any of the accepted layouts.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range DateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %s", value)
}

// FieldRule defines validation rules for one column of a row kind.
type FieldRule struct {
	Column   string
	Type     FieldType
	Required bool
	MinValue *decimal.Decimal
	MaxValue *decimal.Decimal
	MaxLen   int
}

// FieldRuleBuilder builds field rules fluently.
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field creates a new field rule builder for a column.
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column, Type: TypeString}}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// String sets the field type to string
func (b *FieldRuleBuilder) String() *FieldRuleBuilder {
	b.rule.Type = TypeString
	return b
}

// Int sets the field type to integer
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Decimal sets the field type to decimal
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// Date sets the field type to date
func (b *FieldRuleBuilder) Date() *FieldRuleBuilder {
	b.rule.Type = TypeDate
	return b
}

// Min sets the minimum numeric value
func (b *FieldRuleBuilder) Min(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

// Max sets the maximum numeric value
func (b *FieldRuleBuilder) Max(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MaxValue = &v
	return b
}

// MaxLength sets the maximum string length
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLen = n
	return b
}

// Build returns the finished rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// ValidateRow checks a row against its rules, adding every violation to the
// collection. It never stops at the first problem.
func ValidateRow(row *Row, rules []FieldRule, errors *ErrorCollection) {
	for _, rule := range rules {
		value := row.Get(rule.Column)

		if value == "" {
			if rule.Required {
				errors.Add(NewRowError(row.SheetName, row.LineNumber, rule.Column, ErrCodeRequiredField,
					fmt.Sprintf("field %q is required", rule.Column)))
			}
			continue
		}

		switch rule.Type {
		case TypeString:
			if rule.MaxLen > 0 && len(value) > rule.MaxLen {
				errors.Add(NewRowError(row.SheetName, row.LineNumber, rule.Column, ErrCodeValidation,
					fmt.Sprintf("length must be at most %d", rule.MaxLen)))
			}
		case TypeInt:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				errors.Add(NewRowError(row.SheetName, row.LineNumber, rule.Column, ErrCodeInvalidType, "expected integer"))
				continue
			}
			checkRange(row, rule, decimal.NewFromInt(n), errors)
		case TypeDecimal:
			dec, err := decimal.NewFromString(value)
			if err != nil {
				errors.Add(NewRowError(row.SheetName, row.LineNumber, rule.Column, ErrCodeInvalidType, "expected decimal"))
				continue
			}
			checkRange(row, rule, dec, errors)
		case TypeDate:
			if _, err := ParseDate(value); err != nil {
				errors.Add(NewRowError(row.SheetName, row.LineNumber, rule.Column, ErrCodeInvalidType, "expected date"))
			}
		}
	}
}

func checkRange(row *Row, rule FieldRule, value decimal.Decimal, errors *ErrorCollection) {
	if rule.MinValue != nil && value.LessThan(*rule.MinValue) {
		errors.Add(NewRowError(row.SheetName, row.LineNumber, rule.Column, ErrCodeInvalidRange,
			fmt.Sprintf("value must be at least %s", rule.MinValue.String())))
	}
	if rule.MaxValue != nil && value.GreaterThan(*rule.MaxValue) {
		errors.Add(NewRowError(row.SheetName, row.LineNumber, rule.Column, ErrCodeInvalidRange,
			fmt.Sprintf("value must be at most %s", rule.MaxValue.String())))
	}
}
