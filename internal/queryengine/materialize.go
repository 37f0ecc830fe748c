package queryengine

import (
	"github.com/corvidgraph/cyql/internal/action"
	"github.com/corvidgraph/cyql/internal/ast"
)

// materializeActions turns a parsed statement's mutation clauses into one
// action per item: one CreateNode per CREATE node item, one
// CreateRelationship per CREATE rel item, one SetProperty per SET
// setting, one Delete per DELETE variable — in document order (CREATE,
// then SET, then DELETE).
func materializeActions(stmt *ast.Statement) []action.Action {
	var actions []action.Action

	if stmt.Create != nil {
		for _, item := range stmt.Create.Items {
			switch item.Kind {
			case ast.CreateNodeItem:
				actions = append(actions, &action.CreateNode{
					Variable:   item.Node.Variable,
					Labels:     item.Node.Labels,
					Properties: item.Node.Properties,
				})
			case ast.CreateRelItem:
				actions = append(actions, &action.CreateRelationship{
					FromVar:    item.From,
					ToVar:      item.To,
					RelType:    item.Rel.RelType,
					Properties: item.Rel.Properties,
					Variable:   item.Rel.Variable,
				})
			}
		}
	}

	if stmt.Set != nil {
		for _, s := range stmt.Set.Settings {
			actions = append(actions, &action.SetProperty{
				TargetVar: s.Target,
				Property:  s.Property,
				Value:     s.Value,
			})
		}
	}

	if stmt.Delete != nil {
		for _, v := range stmt.Delete.Vars {
			actions = append(actions, &action.Delete{Variable: v, Detach: stmt.Delete.Detach})
		}
	}

	return actions
}
