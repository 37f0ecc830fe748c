package parser

import (
	"testing"

	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleMatchWhereReturn(t *testing.T) {
	stmt, errs := Parse(`MATCH (p:Person) WHERE p.age > 30 RETURN p.name`)
	require.Empty(t, errs)
	require.NotNil(t, stmt.Match)
	require.Len(t, stmt.Match.Patterns, 1)
	require.Equal(t, "p", stmt.Match.Patterns[0].Start.Variable)
	require.Equal(t, []string{"Person"}, stmt.Match.Patterns[0].Start.Labels)

	require.NotNil(t, stmt.Where)
	cmp, ok := stmt.Where.Cond.(ast.Comparison)
	require.True(t, ok)
	require.Equal(t, ast.OpGt, cmp.Op)

	require.NotNil(t, stmt.Return)
	require.Len(t, stmt.Return.Items, 1)
	prop, ok := stmt.Return.Items[0].Expr.(ast.Property)
	require.True(t, ok)
	require.Equal(t, "name", prop.Name)
}

func TestParseCommaSeparatedPatternsCartesian(t *testing.T) {
	stmt, errs := Parse(`MATCH (a:Person), (b:Person) RETURN a`)
	require.Empty(t, errs)
	require.Len(t, stmt.Match.Patterns, 2)
}

func TestParseVariableLengthRelationship(t *testing.T) {
	stmt, errs := Parse(`MATCH (a)-[r:KNOWS*1..3]->(b) RETURN a`)
	require.Empty(t, errs)
	seg := stmt.Match.Patterns[0].Segments[0]
	require.Equal(t, "r", seg.Rel.Variable)
	require.Equal(t, "KNOWS", seg.Rel.RelType)
	require.EqualValues(t, 1, seg.Rel.MinHops)
	require.NotNil(t, seg.Rel.MaxHops)
	require.EqualValues(t, 3, *seg.Rel.MaxHops)
	require.True(t, seg.Rel.IsVariableLength())
}

func TestParseUnboundedVariableLength(t *testing.T) {
	stmt, errs := Parse(`MATCH (a)-[:LIKES*]->(b) RETURN a`)
	require.Empty(t, errs)
	seg := stmt.Match.Patterns[0].Segments[0]
	require.EqualValues(t, 1, seg.Rel.MinHops)
	require.Nil(t, seg.Rel.MaxHops)
}

func TestParseDirections(t *testing.T) {
	stmt, errs := Parse(`MATCH (a)<-[:LIKES]-(b)-[:KNOWS]-(c) RETURN a`)
	require.Empty(t, errs)
	segs := stmt.Match.Patterns[0].Segments
	require.Equal(t, ast.DirIn, segs[0].Rel.Direction)
	require.Equal(t, ast.DirBoth, segs[1].Rel.Direction)
}

func TestParseCreateTripleWithInlineDeclarations(t *testing.T) {
	stmt, errs := Parse(`CREATE (a:Person {name: "Alice"})-[:KNOWS]->(b:Person {name: "Bob"})`)
	require.Empty(t, errs)
	require.Len(t, stmt.Create.Items, 3)
	require.Equal(t, ast.CreateNodeItem, stmt.Create.Items[0].Kind)
	require.Equal(t, ast.CreateNodeItem, stmt.Create.Items[1].Kind)
	require.Equal(t, ast.CreateRelItem, stmt.Create.Items[2].Kind)
	require.Equal(t, stmt.Create.Items[0].Node.Variable, stmt.Create.Items[2].From)
	require.Equal(t, stmt.Create.Items[1].Node.Variable, stmt.Create.Items[2].To)
}

func TestParseCreateTripleReferencingBoundVariables(t *testing.T) {
	stmt, errs := Parse(`MATCH (a:Person), (b:Person) CREATE (a)-[:KNOWS]->(b)`)
	require.Empty(t, errs)
	require.Len(t, stmt.Create.Items, 1)
	require.Equal(t, "a", stmt.Create.Items[0].From)
	require.Equal(t, "b", stmt.Create.Items[0].To)
}

func TestParseSetAndDetachDelete(t *testing.T) {
	stmt, errs := Parse(`MATCH (a) SET a.visited = true DETACH DELETE a`)
	require.Empty(t, errs)
	require.Len(t, stmt.Set.Settings, 1)
	require.Equal(t, "a", stmt.Set.Settings[0].Target)
	require.Equal(t, "visited", stmt.Set.Settings[0].Property)
	require.NotNil(t, stmt.Delete)
	require.True(t, stmt.Delete.Detach)
	require.Equal(t, []string{"a"}, stmt.Delete.Vars)
}

func TestParseDetachWithoutDeleteIsAnError(t *testing.T) {
	_, errs := Parse(`MATCH (a) DETACH RETURN a`)
	require.NotEmpty(t, errs)
}

func TestParseLogicalPrecedence(t *testing.T) {
	// AND binds tighter than OR: "a OR b AND c" == "a OR (b AND c)".
	stmt, errs := Parse(`MATCH (n) WHERE n.a = 1 OR n.b = 2 AND n.c = 3 RETURN n`)
	require.Empty(t, errs)
	top, ok := stmt.Where.Cond.(ast.Logical)
	require.True(t, ok)
	require.Equal(t, ast.OpOr, top.Op)
	_, rightIsAnd := top.Operands[1].(ast.Logical)
	require.True(t, rightIsAnd)
}

func TestParseNotExistsIsExistsNode(t *testing.T) {
	stmt, errs := Parse(`MATCH (a) WHERE NOT EXISTS((a)-[:BLOCKED]->(:User)) RETURN a`)
	require.Empty(t, errs)
	ex, ok := stmt.Where.Cond.(ast.Exists)
	require.True(t, ok)
	require.False(t, ex.Positive)
}

func TestParseGenericNotIsLogicalWrapper(t *testing.T) {
	stmt, errs := Parse(`MATCH (a) WHERE NOT a.active = true RETURN a`)
	require.Empty(t, errs)
	logical, ok := stmt.Where.Cond.(ast.Logical)
	require.True(t, ok)
	require.Equal(t, ast.OpNot, logical.Op)
}

func TestParseIsNullSuffix(t *testing.T) {
	stmt, errs := Parse(`MATCH (a) WHERE a.deletedAt IS NOT NULL RETURN a`)
	require.Empty(t, errs)
	cmp, ok := stmt.Where.Cond.(ast.Comparison)
	require.True(t, ok)
	require.Equal(t, ast.OpIsNotNull, cmp.Op)
	require.Nil(t, cmp.Right)
}

func TestParseStartsWithEndsWithContains(t *testing.T) {
	stmt, errs := Parse(`MATCH (a) WHERE a.name STARTS WITH "A" AND a.name ENDS WITH "e" AND a.tags CONTAINS "x" RETURN a`)
	require.Empty(t, errs)
	require.NotNil(t, stmt.Where)
}

func TestParseMultiLabelIsRejected(t *testing.T) {
	_, errs := Parse(`MATCH (a:Person:Employee) RETURN a`)
	require.NotEmpty(t, errs)
}

func TestParseErrorRecoveryKeepsLaterClauses(t *testing.T) {
	// A malformed MATCH clause should not prevent a well-formed RETURN
	// later in the same statement from being parsed.
	stmt, errs := Parse(`MATCH (a ]] broken RETURN a`)
	require.NotEmpty(t, errs)
	require.NotNil(t, stmt.Return)
	require.Len(t, stmt.Return.Items, 1)
}

func TestParseDuplicateClauseIsAnError(t *testing.T) {
	_, errs := Parse(`MATCH (a) RETURN a RETURN a`)
	require.NotEmpty(t, errs)
}
