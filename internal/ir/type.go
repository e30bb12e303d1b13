package ir

// PrimKind identifies the host representation of a primitive value.
type PrimKind int

const (
	KindNull PrimKind = iota
	KindBoolean
	KindChar
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindUnit
	KindArray
)

func (k PrimKind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindChar:
		return "Char"
	case KindByte:
		return "Byte"
	case KindShort:
		return "Short"
	case KindInt:
		return "Int"
	case KindLong:
		return "Long"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindString:
		return "String"
	case KindUnit:
		return "Unit"
	case KindArray:
		return "Array"
	}
	return "?"
}

// IsNumeric reports whether values of this kind participate in arithmetic
// promotion.
func (k PrimKind) IsNumeric() bool {
	switch k {
	case KindByte, KindShort, KindInt, KindLong, KindFloat, KindDouble, KindChar:
		return true
	}
	return false
}

// PromoteKind returns the kind numeric arithmetic runs at for a pair of
// operand kinds: the most precise of the two, but never narrower than Int
// (Byte, Short and Char operands land on Int).
func PromoteKind(a, b PrimKind) PrimKind {
	rank := func(k PrimKind) int {
		switch k {
		case KindByte:
			return 1
		case KindShort:
			return 2
		case KindChar, KindInt:
			return 3
		case KindLong:
			return 4
		case KindFloat:
			return 5
		case KindDouble:
			return 6
		}
		return 0
	}
	ra, rb := rank(a), rank(b)
	if rb > ra {
		ra = rb
	}
	switch ra {
	case 1, 2, 3:
		return KindInt
	case 4:
		return KindLong
	case 5:
		return KindFloat
	case 6:
		return KindDouble
	}
	return KindInt
}

// Type is a resolved type reference: a class plus nullability. Element is set
// only for array types.
type Type struct {
	Class    *Class
	Nullable bool
	Element  *Type
}

// TypeOf returns the non-nullable type backed by class.
func TypeOf(class *Class) *Type {
	return &Type{Class: class}
}

// NullableOf returns the nullable type backed by class.
func NullableOf(class *Class) *Type {
	return &Type{Class: class, Nullable: true}
}

// ArrayOf returns an array type over elem, backed by the array class of the
// builtin fragment that owns elem.
func ArrayOf(array *Class, elem *Type) *Type {
	return &Type{Class: array, Element: elem}
}

func (t *Type) Name() string {
	if t == nil || t.Class == nil {
		return "?"
	}
	if t.Element != nil {
		return t.Class.Name + "<" + t.Element.Name() + ">"
	}
	return t.Class.Name
}

// Kind returns the primitive kind of the type's class, or KindNull for
// reference types without one.
func (t *Type) Kind() PrimKind {
	if t == nil || t.Class == nil {
		return KindNull
	}
	return t.Class.Prim
}
