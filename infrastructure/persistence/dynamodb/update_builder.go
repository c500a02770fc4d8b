package dynamodb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"teamchat/domain/keys"
)

// updateExpression is a hand-built update statement with its placeholders.
// expression.UpdateBuilder only names whole paths and cannot express the
// per-level placeholders nested updates need.
type updateExpression struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
}

type updateBuilder struct {
	clauses     strings.Builder
	names       map[string]string
	placeholder map[string]string
	values      map[string]types.AttributeValue
}

func newUpdateBuilder() *updateBuilder {
	return &updateBuilder{
		names:       make(map[string]string),
		placeholder: make(map[string]string),
		values:      make(map[string]types.AttributeValue),
	}
}

// nameRef returns the placeholder for an attribute name, reusing it when the
// same name appears at several levels.
func (b *updateBuilder) nameRef(name string) string {
	if ref, ok := b.placeholder[name]; ok {
		return ref
	}
	ref := fmt.Sprintf("#p%d", len(b.placeholder))
	b.placeholder[name] = ref
	b.names[ref] = name
	return ref
}

func (b *updateBuilder) valueRef(av types.AttributeValue) string {
	ref := fmt.Sprintf(":v%d", len(b.values))
	b.values[ref] = av
	return ref
}

func (b *updateBuilder) pathRef(path []string) string {
	refs := make([]string, len(path))
	for i, name := range path {
		refs[i] = b.nameRef(name)
	}
	return strings.Join(refs, ".")
}

// set flattens value under path: nested maps recurse, everything else is a leaf.
func (b *updateBuilder) set(path []string, value any) error {
	if nested, ok := value.(map[string]any); ok && len(nested) > 0 {
		for _, name := range sortedKeys(nested) {
			if err := b.set(append(append([]string{}, path...), name), nested[name]); err != nil {
				return err
			}
		}
		return nil
	}

	av, err := attributevalue.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", strings.Join(path, "."), err)
	}
	fmt.Fprintf(&b.clauses, "%s = %s, ", b.pathRef(path), b.valueRef(av))
	return nil
}

func (b *updateBuilder) build(action string) updateExpression {
	clauses := strings.TrimSuffix(b.clauses.String(), ", ")
	return updateExpression{
		Expression: action + " " + clauses,
		Names:      b.names,
		Values:     b.values,
	}
}

// buildSetExpression turns {a: 2, b: {c: "x"}} into "SET #p0 = :v0, #p1.#p2 = :v1".
// Only leaves are written so sibling attributes of nested maps survive.
func buildSetExpression(updates map[string]any) (updateExpression, error) {
	if len(updates) == 0 {
		return updateExpression{}, fmt.Errorf("no attributes to update")
	}

	b := newUpdateBuilder()
	for _, name := range sortedKeys(updates) {
		if name == keys.AttrPK || name == keys.AttrSK {
			return updateExpression{}, fmt.Errorf("primary key attribute %s is immutable", name)
		}
		if err := b.set([]string{name}, updates[name]); err != nil {
			return updateExpression{}, err
		}
	}
	return b.build("SET"), nil
}

// buildSetDeltaExpression emits "ADD path :v0" or "DELETE path :v0" for a string set.
func buildSetDeltaExpression(action, path string, members []string) (updateExpression, error) {
	if path == "" {
		return updateExpression{}, fmt.Errorf("set path is empty")
	}
	if len(members) == 0 {
		return updateExpression{}, fmt.Errorf("no members for %s on %s", action, path)
	}

	b := newUpdateBuilder()
	ref := b.valueRef(&types.AttributeValueMemberSS{Value: members})
	fmt.Fprintf(&b.clauses, "%s %s", b.pathRef(strings.Split(path, ".")), ref)
	return b.build(action), nil
}

// requireExisting adds the condition that turns an upsert into an update of an existing record.
func (e updateExpression) requireExisting() *string {
	e.Names["#pk"] = keys.AttrPK
	return aws.String("attribute_exists(#pk)")
}

func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
