package model

// UIType is the logical column type of a field, independent of how the
// value is physically stored.
//
// The set is closed: AllUITypes lists every value and the field handler
// dispatch table must cover each one.
type UIType string

const (
	UITypeID               UIType = "ID"
	UITypeSingleLineText   UIType = "SingleLineText"
	UITypeLongText         UIType = "LongText"
	UITypeEmail            UIType = "Email"
	UITypeURL              UIType = "URL"
	UITypePhoneNumber      UIType = "PhoneNumber"
	UITypeNumber           UIType = "Number"
	UITypeDecimal          UIType = "Decimal"
	UITypeCurrency         UIType = "Currency"
	UITypePercent          UIType = "Percent"
	UITypeRating           UIType = "Rating"
	UITypeCheckbox         UIType = "Checkbox"
	UITypeSingleSelect     UIType = "SingleSelect"
	UITypeMultiSelect      UIType = "MultiSelect"
	UITypeDate             UIType = "Date"
	UITypeDateTime         UIType = "DateTime"
	UITypeCreatedTime      UIType = "CreatedTime"
	UITypeLastModifiedTime UIType = "LastModifiedTime"
)

var allUITypes = []UIType{
	UITypeID,
	UITypeSingleLineText,
	UITypeLongText,
	UITypeEmail,
	UITypeURL,
	UITypePhoneNumber,
	UITypeNumber,
	UITypeDecimal,
	UITypeCurrency,
	UITypePercent,
	UITypeRating,
	UITypeCheckbox,
	UITypeSingleSelect,
	UITypeMultiSelect,
	UITypeDate,
	UITypeDateTime,
	UITypeCreatedTime,
	UITypeLastModifiedTime,
}

// AllUITypes returns every logical column type in declaration order.
// The returned slice is a copy.
func AllUITypes() []UIType {
	out := make([]UIType, len(allUITypes))
	copy(out, allUITypes)
	return out
}

// ParseUIType converts a type tag to a UIType.
// Returns false for tags outside the closed set.
func ParseUIType(s string) (UIType, bool) {
	for _, t := range allUITypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// IsDateLike reports whether values of this type are calendar dates or
// instants, i.e. whether date sub-operators apply.
func (t UIType) IsDateLike() bool {
	switch t {
	case UITypeDate, UITypeDateTime, UITypeCreatedTime, UITypeLastModifiedTime:
		return true
	}
	return false
}

// IsNumeric reports whether the type stores a number.
func (t UIType) IsNumeric() bool {
	switch t {
	case UITypeID, UITypeNumber, UITypeDecimal, UITypeCurrency, UITypePercent, UITypeRating:
		return true
	}
	return false
}

// IsSystemTime reports whether the value is maintained by the system
// (CreatedTime, LastModifiedTime) rather than entered by users.
func (t UIType) IsSystemTime() bool {
	return t == UITypeCreatedTime || t == UITypeLastModifiedTime
}
