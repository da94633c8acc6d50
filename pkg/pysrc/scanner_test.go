package pysrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasicStructure(t *testing.T) {
	src := "import os\nclass A:\n    def m(self):\n        pass\n"

	s, err := Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, s.Imports, 1)
	assert.Equal(t, "os", s.Imports[0].Module)
	assert.Equal(t, "os", s.Imports[0].Root)
	assert.Equal(t, 1, s.Imports[0].Line)

	require.Len(t, s.Classes, 1)
	assert.Equal(t, "A", s.Classes[0].Name)
	assert.Equal(t, 2, s.Classes[0].Line)
	require.Len(t, s.Classes[0].Methods, 1)
	assert.Equal(t, "m", s.Classes[0].Methods[0].Name)
	assert.Equal(t, 3, s.Classes[0].Methods[0].Line)
	assert.Empty(t, s.Functions)
}

func TestParseImports(t *testing.T) {
	src := `import os
import redis as r, json
from pathlib import Path
from app.services.client import auth
from . import helpers
from ..common import util
`
	s, err := Parse([]byte(src))
	require.NoError(t, err)

	var modules, roots []string
	for _, imp := range s.Imports {
		modules = append(modules, imp.Module)
		roots = append(roots, imp.Root)
	}
	assert.Equal(t, []string{"os", "redis", "json", "pathlib", "app.services.client", ".", "..common"}, modules)
	assert.Equal(t, []string{"os", "redis", "json", "pathlib", "app", "", "common"}, roots)
}

func TestParseDecoratorsAndAsync(t *testing.T) {
	src := `@router.get("/orders")
async def list_orders():
    pass


@dataclass
class OrderService(BaseService):
    @staticmethod
    def create(self):
        pass

    async def cancel(self):
        pass
`
	s, err := Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, s.Functions, 1)
	assert.Equal(t, "list_orders", s.Functions[0].Name)
	assert.Equal(t, []string{"get"}, s.Functions[0].Decorators)

	require.Len(t, s.Classes, 1)
	cls := s.Classes[0]
	assert.Equal(t, []string{"dataclass"}, cls.Decorators)
	assert.Equal(t, []string{"BaseService"}, cls.Bases)
	require.Len(t, cls.Methods, 2)
	assert.Equal(t, "create", cls.Methods[0].Name)
	assert.Equal(t, []string{"staticmethod"}, cls.Methods[0].Decorators)
	assert.Equal(t, "cancel", cls.Methods[1].Name)
}

func TestParseBaseClasses(t *testing.T) {
	src := `class Order(Base, Generic[T], metaclass=ABCMeta):
    pass

class Wide(
    BaseOne,
    mixins.BaseTwo,
):
    pass

class Plain:
    pass

class Empty():
    pass
`
	s, err := Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, s.Classes, 4)
	assert.Equal(t, []string{"Base", "Generic"}, s.Classes[0].Bases)
	assert.Equal(t, []string{"BaseOne", "BaseTwo"}, s.Classes[1].Bases)
	assert.Empty(t, s.Classes[2].Bases)
	assert.Empty(t, s.Classes[3].Bases)
}

func TestParseClosuresAreNotFunctions(t *testing.T) {
	src := `def make_factory():
    def inner():
        pass
    return inner
`
	s, err := Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, s.Functions, 1)
	assert.Equal(t, "make_factory", s.Functions[0].Name)
}

func TestParseDedentClosesClassScope(t *testing.T) {
	src := `class A:
    def m(self):
        pass

if True:
    def standalone():
        pass
`
	s, err := Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, s.Classes, 1)
	require.Len(t, s.Classes[0].Methods, 1)
	assert.Equal(t, "m", s.Classes[0].Methods[0].Name)
	// standalone lives under an if block: neither a method nor module-level
	assert.Empty(t, s.Functions)
}

func TestParseMethodNameCollision(t *testing.T) {
	src := `class A:
    def run(self):
        pass

def run():
    pass
`
	s, err := Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, s.Functions, 1)
	assert.Equal(t, "run", s.Functions[0].Name)
	require.Len(t, s.Classes[0].Methods, 1)
	assert.Equal(t, "run", s.Classes[0].Methods[0].Name)
}

func TestParseStringsAndCommentsIgnored(t *testing.T) {
	src := `def f():
    """doc
    import fake
    class Phantom:
    """
    x = "import other"  # import nothing
    return x
`
	s, err := Parse([]byte(src))
	require.NoError(t, err)

	assert.Empty(t, s.Imports)
	assert.Empty(t, s.Classes)
	require.Len(t, s.Functions, 1)
}

func TestParseSanitizedLines(t *testing.T) {
	src := `client = Redis(host="localhost", port=6379)  # singleton
name = f"order {x}"
`
	s, err := Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, s.Lines, 2)
	assert.Equal(t, 1, s.Lines[0].Number)
	assert.Contains(t, s.Lines[0].Text, `Redis(host=""`)
	assert.NotContains(t, s.Lines[0].Text, "localhost")
	assert.NotContains(t, s.Lines[0].Text, "singleton")
	assert.Equal(t, `name = f""`, s.Lines[1].Text)
}

func TestParseUnterminatedTripleQuote(t *testing.T) {
	_, err := Parse([]byte("x = 1\ny = \"\"\"abc\n"))

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
}

func TestParseBinaryInput(t *testing.T) {
	_, err := Parse([]byte("abc\x00def"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)

	_, err = Parse([]byte{0xff, 0xfe, 0x01})
	require.ErrorAs(t, err, &perr)
}

func TestParseNestedClass(t *testing.T) {
	src := `class Outer:
    class Inner:
        def inner_method(self):
            pass

    def outer_method(self):
        pass
`
	s, err := Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, s.Classes, 2)
	assert.Equal(t, "Outer", s.Classes[0].Name)
	assert.Equal(t, "Inner", s.Classes[1].Name)
	require.Len(t, s.Classes[1].Methods, 1)
	assert.Equal(t, "inner_method", s.Classes[1].Methods[0].Name)
	require.Len(t, s.Classes[0].Methods, 1)
	assert.Equal(t, "outer_method", s.Classes[0].Methods[0].Name)
}

func TestParseCRLF(t *testing.T) {
	s, err := Parse([]byte("import os\r\nclass A:\r\n    pass\r\n"))
	require.NoError(t, err)

	require.Len(t, s.Imports, 1)
	require.Len(t, s.Classes, 1)
}
