package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CRJFisher/ariadne/internal/index"
)

func def(file, name string, kind index.DefKind, row int) index.Definition {
	start := index.Point{Row: row}
	return index.Definition{
		Symbol: index.MakeSymbolID(file, kind, name, start),
		Name:   name,
		Kind:   kind,
		File:   file,
		Range:  index.Range{Start: start, End: index.Point{Row: row, Col: 10}},
	}
}

// =============================================================================
// Definitions
// =============================================================================

func TestDefinitions_UpdateAndLookup(t *testing.T) {
	t.Parallel()
	r := NewDefinitions()
	a := def("a.js", "foo", index.DefFunction, 1)
	b := def("a.js", "bar", index.DefClass, 5)
	r.UpdateFile("a.js", []index.Definition{a, b})

	require.NotNil(t, r.Get(a.Symbol))
	assert.Equal(t, "foo", r.Get(a.Symbol).Name)
	assert.Len(t, r.ByFile("a.js"), 2)

	byName := r.ByFileName("a.js", "bar")
	require.Len(t, byName, 1)
	assert.Equal(t, b.Symbol, byName[0].Symbol)
	assert.Equal(t, 2, r.Count())
}

func TestDefinitions_UpdateIsFullReplace(t *testing.T) {
	t.Parallel()
	r := NewDefinitions()
	old := def("a.js", "foo", index.DefFunction, 1)
	r.UpdateFile("a.js", []index.Definition{old})

	fresh := def("a.js", "baz", index.DefFunction, 2)
	r.UpdateFile("a.js", []index.Definition{fresh})

	assert.Nil(t, r.Get(old.Symbol), "previous entries must be removed wholesale")
	assert.Empty(t, r.ByFileName("a.js", "foo"))
	require.NotNil(t, r.Get(fresh.Symbol))
	assert.Equal(t, 1, r.Count())
}

func TestDefinitions_RemoveFileLeavesOtherFiles(t *testing.T) {
	t.Parallel()
	r := NewDefinitions()
	a := def("a.js", "foo", index.DefFunction, 1)
	b := def("b.js", "foo", index.DefFunction, 1)
	r.UpdateFile("a.js", []index.Definition{a})
	r.UpdateFile("b.js", []index.Definition{b})

	r.RemoveFile("a.js")

	assert.Nil(t, r.Get(a.Symbol))
	assert.NotNil(t, r.Get(b.Symbol))
	assert.Len(t, r.ByFileName("b.js", "foo"), 1)
}

func TestDefinitions_DeterministicIdentifiers(t *testing.T) {
	t.Parallel()
	// Re-indexing identical content must reproduce identical symbol IDs.
	first := def("a.js", "foo", index.DefFunction, 3)
	second := def("a.js", "foo", index.DefFunction, 3)
	assert.Equal(t, first.Symbol, second.Symbol)

	moved := def("a.js", "foo", index.DefFunction, 4)
	assert.NotEqual(t, first.Symbol, moved.Symbol)
}

func TestDefinitions_AllIsSorted(t *testing.T) {
	t.Parallel()
	r := NewDefinitions()
	r.UpdateFile("b.js", []index.Definition{def("b.js", "x", index.DefFunction, 1)})
	r.UpdateFile("a.js", []index.Definition{def("a.js", "y", index.DefFunction, 1)})

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a.js", all[0].File)
	assert.Equal(t, "b.js", all[1].File)
}

// =============================================================================
// Scopes
// =============================================================================

func TestScopes_UpdateReplaceRemove(t *testing.T) {
	t.Parallel()
	r := NewScopes()
	tree := index.NewScopeTree("a.js", index.Range{End: index.Point{Row: 100}})
	r.UpdateFile("a.js", tree)

	require.NotNil(t, r.Tree("a.js"))
	assert.NotNil(t, r.Scope("a.js", tree.Root))

	replacement := index.NewScopeTree("a.js", index.Range{End: index.Point{Row: 50}})
	r.UpdateFile("a.js", replacement)
	assert.Same(t, replacement, r.Tree("a.js"))

	r.RemoveFile("a.js")
	assert.Nil(t, r.Tree("a.js"))
	assert.Equal(t, 0, r.Count())
}

func TestScopes_MalformedTreeIsDropped(t *testing.T) {
	t.Parallel()
	r := NewScopes()
	tree := index.NewScopeTree("a.js", index.Range{End: index.Point{Row: 100}})
	// Child span escaping the root violates nesting; the tree must not be
	// installed.
	tree.AddScope(index.ScopeFunction, index.Range{End: index.Point{Row: 500}}, tree.Root)

	r.UpdateFile("a.js", tree)
	assert.Nil(t, r.Tree("a.js"))
}

// =============================================================================
// Exports
// =============================================================================

func TestExports_LookupAndReplace(t *testing.T) {
	t.Parallel()
	r := NewExports()
	sym := index.MakeSymbolID("a.js", index.DefFunction, "foo", index.Point{Row: 1})
	r.UpdateFile("a.js", []index.Export{{Name: "foo", Symbol: sym}})

	e, ok := r.Lookup("a.js", "foo")
	require.True(t, ok)
	assert.Equal(t, sym, e.Symbol)

	r.UpdateFile("a.js", []index.Export{{Name: "bar", Symbol: sym}})
	_, ok = r.Lookup("a.js", "foo")
	assert.False(t, ok, "replaced table must drop old names")
	assert.Equal(t, []string{"bar"}, r.Names("a.js"))

	r.RemoveFile("a.js")
	assert.Empty(t, r.Names("a.js"))
}

func TestExports_ReExportEntry(t *testing.T) {
	t.Parallel()
	r := NewExports()
	r.UpdateFile("barrel.js", []index.Export{{Name: "helper", ReExportSource: "./impl", ReExportName: "helper"}})

	e, ok := r.Lookup("barrel.js", "helper")
	require.True(t, ok)
	assert.Empty(t, e.Symbol)
	assert.Equal(t, "./impl", e.ReExportSource)
}

// =============================================================================
// Types
// =============================================================================

func typeInfo(file, name string, members map[string]index.SymbolID, extends ...string) index.TypeInfo {
	return index.TypeInfo{
		Symbol:  index.MakeSymbolID(file, index.DefClass, name, index.Point{Row: 1}),
		Name:    name,
		File:    file,
		Members: members,
		Extends: extends,
	}
}

func TestTypes_MemberLookupDirect(t *testing.T) {
	t.Parallel()
	r := NewTypes()
	barkSym := index.MakeSymbolID("a.py", index.DefMethod, "bark", index.Point{Row: 3})
	dog := typeInfo("a.py", "Dog", map[string]index.SymbolID{"bark": barkSym})
	r.UpdateFile("a.py", []index.TypeInfo{dog}, nil)

	got, ok := r.LookupMember(dog.Symbol, "bark", nil)
	require.True(t, ok)
	assert.Equal(t, barkSym, got)

	_, ok = r.LookupMember(dog.Symbol, "meow", nil)
	assert.False(t, ok)
}

func TestTypes_MemberLookupAncestorChain(t *testing.T) {
	t.Parallel()
	r := NewTypes()
	speakBase := index.MakeSymbolID("a.py", index.DefMethod, "speak", index.Point{Row: 2})
	speakDog := index.MakeSymbolID("a.py", index.DefMethod, "speak", index.Point{Row: 8})

	animal := typeInfo("a.py", "Animal", map[string]index.SymbolID{"speak": speakBase})
	dog := typeInfo("a.py", "Dog", map[string]index.SymbolID{"speak": speakDog}, "Animal")
	puppy := typeInfo("a.py", "Puppy", map[string]index.SymbolID{}, "Dog")
	r.UpdateFile("a.py", []index.TypeInfo{animal, dog, puppy}, nil)

	// Nearest-defining ancestor wins: Puppy inherits Dog's override.
	got, ok := r.LookupMember(puppy.Symbol, "speak", nil)
	require.True(t, ok)
	assert.Equal(t, speakDog, got)

	got, ok = r.LookupMember(dog.Symbol, "speak", nil)
	require.True(t, ok)
	assert.Equal(t, speakDog, got)
}

func TestTypes_MemberLookupInheritanceCycle(t *testing.T) {
	t.Parallel()
	r := NewTypes()
	a := typeInfo("x.py", "A", map[string]index.SymbolID{}, "B")
	b := typeInfo("x.py", "B", map[string]index.SymbolID{}, "A")
	r.UpdateFile("x.py", []index.TypeInfo{a, b}, nil)

	// Malformed inheritance cycle must terminate, not hang.
	_, ok := r.LookupMember(a.Symbol, "anything", nil)
	assert.False(t, ok)
}

func TestTypes_MemberLookupCrossFileAncestor(t *testing.T) {
	t.Parallel()
	r := NewTypes()
	speak := index.MakeSymbolID("base.py", index.DefMethod, "speak", index.Point{Row: 2})
	base := typeInfo("base.py", "Animal", map[string]index.SymbolID{"speak": speak})
	dog := typeInfo("dog.py", "Dog", map[string]index.SymbolID{}, "Animal")
	r.UpdateFile("base.py", []index.TypeInfo{base}, nil)
	r.UpdateFile("dog.py", []index.TypeInfo{dog}, nil)

	resolveAncestor := func(fromFile, name string) (index.SymbolID, bool) {
		if fromFile == "dog.py" && name == "Animal" {
			return base.Symbol, true
		}
		return "", false
	}

	got, ok := r.LookupMember(dog.Symbol, "speak", resolveAncestor)
	require.True(t, ok)
	assert.Equal(t, speak, got)
}

func TestTypes_BindingsReplacedWithFile(t *testing.T) {
	t.Parallel()
	r := NewTypes()
	sym := index.MakeSymbolID("a.js", index.DefConst, "d", index.Point{Row: 4})
	r.UpdateFile("a.js", nil, []index.TypeBinding{{Symbol: sym, TypeName: "Dog"}})

	name, ok := r.BindingType(sym)
	require.True(t, ok)
	assert.Equal(t, "Dog", name)

	ctx := NewContext(r)
	name, ok = ctx.TypeOf(sym)
	require.True(t, ok)
	assert.Equal(t, "Dog", name)

	r.UpdateFile("a.js", nil, nil)
	_, ok = r.BindingType(sym)
	assert.False(t, ok)
}
