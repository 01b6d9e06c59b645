package filterir

// Op is a comparison operator of the filter DSL.
type Op string

const (
	OpEq         Op = "eq"
	OpNeq        Op = "neq"
	OpLike       Op = "like"
	OpNlike      Op = "nlike"
	OpIn         Op = "in"
	OpGt         Op = "gt"
	OpLt         Op = "lt"
	OpGte        Op = "gte"
	OpLte        Op = "lte"
	OpBtw        Op = "btw"
	OpNbtw       Op = "nbtw"
	OpBlank      Op = "blank"
	OpNotBlank   Op = "notblank"
	OpNull       Op = "null"
	OpNotNull    Op = "notnull"
	OpEmpty      Op = "empty"
	OpNotEmpty   Op = "notempty"
	OpChecked    Op = "checked"
	OpNotChecked Op = "notchecked"
	OpAllOf      Op = "allof"
	OpAnyOf      Op = "anyof"
	OpNAllOf     Op = "nallof"
	OpNAnyOf     Op = "nanyof"
	OpIsWithin   Op = "isWithin"
)

var allOps = []Op{
	OpEq, OpNeq, OpLike, OpNlike, OpIn, OpGt, OpLt, OpGte, OpLte, OpBtw, OpNbtw,
	OpBlank, OpNotBlank, OpNull, OpNotNull, OpEmpty, OpNotEmpty, OpChecked,
	OpNotChecked, OpAllOf, OpAnyOf, OpNAllOf, OpNAnyOf, OpIsWithin,
}

// aliases accepted in filter text and rows.
var opAliases = map[string]Op{
	"is":     OpEq,
	"isnot":  OpNeq,
	"ge":     OpGte,
	"le":     OpLte,
	"isnull": OpNull,
}

// ParseOp converts an operator token to an Op.
func ParseOp(s string) (Op, bool) {
	for _, op := range allOps {
		if string(op) == s {
			return op, true
		}
	}
	if op, ok := opAliases[s]; ok {
		return op, true
	}
	return "", false
}

// AllOps returns every operator of the DSL.
func AllOps() []Op {
	out := make([]Op, len(allOps))
	copy(out, allOps)
	return out
}

// TakesNoValue reports whether the operator is written without operands.
func (o Op) TakesNoValue() bool {
	switch o {
	case OpBlank, OpNotBlank, OpNull, OpNotNull, OpEmpty, OpNotEmpty, OpChecked, OpNotChecked:
		return true
	}
	return false
}

// IsDateAware reports whether the operator takes a date sub-operator when
// applied to a date-like column.
func (o Op) IsDateAware() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpIsWithin:
		return true
	}
	return false
}

// SubOp is a date sub-operator qualifying a date-aware comparison.
type SubOp string

const (
	SubOpToday            SubOp = "today"
	SubOpTomorrow         SubOp = "tomorrow"
	SubOpYesterday        SubOp = "yesterday"
	SubOpOneWeekAgo       SubOp = "oneWeekAgo"
	SubOpOneWeekFromNow   SubOp = "oneWeekFromNow"
	SubOpOneMonthAgo      SubOp = "oneMonthAgo"
	SubOpOneMonthFromNow  SubOp = "oneMonthFromNow"
	SubOpDaysAgo          SubOp = "daysAgo"
	SubOpDaysFromNow      SubOp = "daysFromNow"
	SubOpExactDate        SubOp = "exactDate"
	SubOpPastWeek         SubOp = "pastWeek"
	SubOpPastMonth        SubOp = "pastMonth"
	SubOpPastYear         SubOp = "pastYear"
	SubOpNextWeek         SubOp = "nextWeek"
	SubOpNextMonth        SubOp = "nextMonth"
	SubOpNextYear         SubOp = "nextYear"
	SubOpPastNumberOfDays SubOp = "pastNumberOfDays"
	SubOpNextNumberOfDays SubOp = "nextNumberOfDays"
)

var allSubOps = []SubOp{
	SubOpToday, SubOpTomorrow, SubOpYesterday, SubOpOneWeekAgo, SubOpOneWeekFromNow,
	SubOpOneMonthAgo, SubOpOneMonthFromNow, SubOpDaysAgo, SubOpDaysFromNow,
	SubOpExactDate, SubOpPastWeek, SubOpPastMonth, SubOpPastYear, SubOpNextWeek,
	SubOpNextMonth, SubOpNextYear, SubOpPastNumberOfDays, SubOpNextNumberOfDays,
}

// ParseSubOp converts a sub-operator token to a SubOp.
func ParseSubOp(s string) (SubOp, bool) {
	for _, sub := range allSubOps {
		if string(sub) == s {
			return sub, true
		}
	}
	return "", false
}

// AllSubOps returns every date sub-operator.
func AllSubOps() []SubOp {
	out := make([]SubOp, len(allSubOps))
	copy(out, allSubOps)
	return out
}

// IsWindow reports whether the sub-operator describes a two-boundary range
// (used with isWithin).
func (s SubOp) IsWindow() bool {
	switch s {
	case SubOpPastWeek, SubOpPastMonth, SubOpPastYear,
		SubOpNextWeek, SubOpNextMonth, SubOpNextYear,
		SubOpPastNumberOfDays, SubOpNextNumberOfDays:
		return true
	}
	return false
}

// IsPoint reports whether the sub-operator resolves to a single anchor day
// (used with eq, neq, gt, gte, lt, lte).
func (s SubOp) IsPoint() bool {
	_, known := ParseSubOp(string(s))
	return known && !s.IsWindow()
}

// NeedsNumber reports whether the sub-operator takes a day count.
func (s SubOp) NeedsNumber() bool {
	switch s {
	case SubOpDaysAgo, SubOpDaysFromNow, SubOpPastNumberOfDays, SubOpNextNumberOfDays:
		return true
	}
	return false
}

// NeedsDate reports whether the sub-operator takes a literal date.
func (s SubOp) NeedsDate() bool {
	return s == SubOpExactDate
}

// TakesArg reports whether the sub-operator takes an operand at all.
func (s SubOp) TakesArg() bool {
	return s.NeedsNumber() || s.NeedsDate()
}

// Logical joins the children of a Group.
type Logical string

const (
	LogicalAnd Logical = "and"
	LogicalOr  Logical = "or"
)
