package config

// Default evaluation bounds. Both exist to terminate pathological inputs,
// not to harden the evaluator against adversarial IR.
const (
	DefaultMaxCommands   = 500_000
	DefaultMaxStackDepth = 10_000
)

// IRDocFileExt is the extension of serialized IR documents accepted by the CLI.
const IRDocFileExt = ".ir.yaml"

// Well-known fully-qualified names of the builtin module fragment.
const (
	LangPackage = "lang"

	AnyFQName       = "lang.Any"
	UnitFQName      = "lang.Unit"
	NothingFQName   = "lang.Nothing"
	StringFQName    = "lang.String"
	ThrowableFQName = "lang.Throwable"
	EnumFQName      = "lang.Enum"
	ArrayFQName     = "lang.Array"
	RegexFQName     = "lang.text.Regex"

	IntRangeFQName  = "lang.ranges.IntRange"
	LongRangeFQName = "lang.ranges.LongRange"
	CharRangeFQName = "lang.ranges.CharRange"
)

// Simple names of the recognized exception classes.
const (
	ThrowableName            = "Throwable"
	ArithmeticExcName        = "ArithmeticException"
	ClassCastExcName         = "ClassCastException"
	NullPointerExcName       = "NullPointerException"
	IllegalArgumentExcName   = "IllegalArgumentException"
	NoSuchElementExcName     = "NoSuchElementException"
	IndexOutOfBoundsExcName  = "IndexOutOfBoundsException"
	StackOverflowErrorName   = "StackOverflowError"
	UnsupportedOperationName = "UnsupportedOperationException"
)

// Names injected by the evaluator into enum super-constructor calls.
const (
	EnumNameField    = "name"
	EnumOrdinalField = "ordinal"
)
