package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/testutil"
)

func TestTaskParsing_PrimitiveAndContainerFields(t *testing.T) {
	task, err := testutil.RunTaskParsingTest(t, `
		title: str
		count: int
		ratio: float
		done: bool
		tags: List[str]
		hint: Optional[str]
	`)
	require.NoError(t, err)
	require.Len(t, task.Fields, 6)

	require.Equal(t, ir.FieldDef{Name: "title", Type: "string", Required: true}, task.Fields[0])
	require.Equal(t, ir.FieldDef{Name: "count", Type: "integer", Required: true}, task.Fields[1])
	require.Equal(t, ir.FieldDef{Name: "ratio", Type: "float", Required: true}, task.Fields[2])
	require.Equal(t, ir.FieldDef{Name: "done", Type: "boolean", Required: true}, task.Fields[3])
	require.Equal(t, ir.FieldDef{Name: "tags", Type: "string", IsList: true, Required: true}, task.Fields[4])
	require.Equal(t, ir.FieldDef{Name: "hint", Type: "string", Required: false}, task.Fields[5])
}

func TestTaskParsing_FieldDescriptions(t *testing.T) {
	task, err := testutil.RunTaskParsingTest(t, `
		query: str = Field(..., description="Search query.")
		limit: Optional[int] = Field(None, description="Maximum hits.")
	`)
	require.NoError(t, err)
	require.Len(t, task.Fields, 2)

	require.Equal(t, "Search query.", task.Fields[0].Description)
	require.True(t, task.Fields[0].Required)
	require.Equal(t, "Maximum hits.", task.Fields[1].Description)
	require.False(t, task.Fields[1].Required)
}

func TestTaskParsing_LiteralFields(t *testing.T) {
	task, err := testutil.RunTaskParsingTest(t, `
		speed: Literal["fast", "slow", 3]
	`)
	require.NoError(t, err)
	require.Len(t, task.Fields, 1)

	field := task.Fields[0]
	require.Equal(t, ir.TypeLiteral, field.Type)
	require.Equal(t, []string{"fast", "slow", "3"}, field.LiteralValues)
}

func TestTaskParsing_UnknownAnnotationKeptVerbatim(t *testing.T) {
	task, err := testutil.RunTaskParsingTest(t, `
		table: dict[str, int]
	`)
	require.NoError(t, err)
	require.Len(t, task.Fields, 1)
	require.Equal(t, "dict[str, int]", task.Fields[0].Type)
}

func TestTaskParsing_TaskReferenceField(t *testing.T) {
	// A field may reference another task class; the name passes through
	// as the type so edges can resolve against it later.
	task, err := testutil.RunTaskParsingTest(t, `
		survey: Optional[Survey]
	`)
	require.NoError(t, err)
	require.Len(t, task.Fields, 1)
	require.Equal(t, "Survey", task.Fields[0].Type)
	require.False(t, task.Fields[0].Required)
}
