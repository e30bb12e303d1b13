package ir

import "testing"

// TestSubtypeRelation walks the super chain and interfaces.
func TestSubtypeRelation(t *testing.T) {
	b := NewBuiltins()

	if !b.Arithmetic.IsSubclassOf(b.Throwable) {
		t.Fatal("ArithmeticException must subtype Throwable")
	}
	if !b.Arithmetic.IsSubclassOf(b.Any) {
		t.Fatal("ArithmeticException must subtype Any")
	}
	if b.Throwable.IsSubclassOf(b.Arithmetic) {
		t.Fatal("Throwable must not subtype its subclass")
	}
	if b.Int.IsSubclassOf(b.Long) {
		t.Fatal("Int and Long are unrelated")
	}

	iface := &Class{Name: "Marker", Kind: InterfaceDecl}
	impl := &Class{Name: "Impl", Super: b.Any, Interfaces: []*Class{iface}}
	if !impl.IsSubclassOf(iface) {
		t.Fatal("interface implementation must subtype the interface")
	}
}

// TestPromoteKind picks the most precise operand width, with sub-int
// operands landing on Int.
func TestPromoteKind(t *testing.T) {
	cases := []struct {
		a, b, want PrimKind
	}{
		{KindByte, KindByte, KindInt},
		{KindShort, KindInt, KindInt},
		{KindInt, KindLong, KindLong},
		{KindLong, KindFloat, KindFloat},
		{KindInt, KindDouble, KindDouble},
		{KindChar, KindInt, KindInt},
	}
	for _, tc := range cases {
		if got := PromoteKind(tc.a, tc.b); got != tc.want {
			t.Errorf("PromoteKind(%s, %s) = %s, want %s", tc.a, tc.b, got, tc.want)
		}
	}
}

// TestExceptionClassFallback resolves recognized names and falls back to
// Throwable for the rest.
func TestExceptionClassFallback(t *testing.T) {
	b := NewBuiltins()
	if c := b.ExceptionClass("ArithmeticException"); c != b.Arithmetic {
		t.Fatalf("ArithmeticException resolved to %v", c)
	}
	if c := b.ExceptionClass("SomethingNovel"); c != b.Throwable {
		t.Fatalf("unknown exception name resolved to %v, want Throwable", c)
	}
	// Non-throwable classes must not leak in by name.
	if c := b.ExceptionClass("Int"); c != b.Throwable {
		t.Fatalf("Int resolved as an exception class: %v", c)
	}
}

// TestFunctionIfaceCaching returns one class per arity.
func TestFunctionIfaceCaching(t *testing.T) {
	b := NewBuiltins()
	one := b.FunctionIface(2)
	two := b.FunctionIface(2)
	if one != two {
		t.Fatal("functional interface classes must be cached per arity")
	}
	if got := len(one.FindFunction("invoke").Params); got != 2 {
		t.Fatalf("invoke arity = %d, want 2", got)
	}
}

// TestOverrideResolution finds the most-derived concrete implementation.
func TestOverrideResolution(t *testing.T) {
	b := NewBuiltins()
	base := NewClass(b, "main", "Base", "Main.lang")
	mid := NewClass(b, "main", "Mid", "Main.lang")
	mid.Super = base
	leaf := NewClass(b, "main", "Leaf", "Main.lang")
	leaf.Super = mid

	root := AddMethod(base, "id", TypeOf(b.Int))
	root.Abstract = true
	midImpl := AddMethod(mid, "id", TypeOf(b.Int))
	midImpl.Overridden = []*Function{root}
	midImpl.Body = &Block{}

	if got := leaf.Override(root); got != midImpl {
		t.Fatalf("Override resolved %v, want the mid implementation", got)
	}

	leafImpl := AddMethod(leaf, "id", TypeOf(b.Int))
	leafImpl.Overridden = []*Function{midImpl}
	leafImpl.Body = &Block{}
	if got := leaf.Override(root); got != leafImpl {
		t.Fatalf("Override must prefer the most-derived implementation")
	}
}

// TestResolveFakeOverride walks to the nearest real body.
func TestResolveFakeOverride(t *testing.T) {
	b := NewBuiltins()
	base := NewClass(b, "main", "Base", "Main.lang")
	withBody := AddMethod(base, "f", TypeOf(b.Int))
	withBody.Body = &Block{}

	fake := &Function{Name: "f", Overridden: []*Function{withBody}}
	if got := fake.ResolveFakeOverride(); got != withBody {
		t.Fatalf("fake override resolved %v, want the base body", got)
	}
	if got := withBody.ResolveFakeOverride(); got != withBody {
		t.Fatal("a real implementation resolves to itself")
	}
}
