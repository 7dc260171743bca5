package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/fmgen/compiler/load"
)

func customersLayout() *load.Layout {
	return &load.Layout{
		Name: "Customers",
		Fields: []load.Field{
			{Name: "id", Kind: load.KindNumber},
			{Name: "name", Kind: load.KindText},
			{Name: "status", Kind: load.KindValueList, Values: []string{"Open", "Closed"}},
			{Name: "priority", Kind: load.KindValueList, Values: []string{"1", ""}},
			{Name: "region", Kind: load.KindValueList, Values: []string{}},
		},
		Relations: []load.Relation{
			{Name: "Notes", Fields: []load.Field{{Name: "Notes::body", Kind: load.KindText}}},
			{Name: "Orders", Fields: []load.Field{
				{Name: "Orders::total", Kind: load.KindNumber},
				{Name: "Orders::state", Kind: load.KindValueList, Values: []string{"Open", "Closed"}},
			}},
		},
		ValueLists: []load.ValueList{
			{Name: "Status", Values: []string{"Open", "Closed"}},
			{Name: "Priority", Values: []string{"1", ""}},
			{Name: "Unused", Values: []string{}},
		},
	}
}

func declNames(decls []Decl) []string {
	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.DeclName())
	}
	return names
}

func TestPlanSchema(t *testing.T) {
	plan, err := PlanSchema(BuildSchemaArgs{SchemaName: "Customer", Layout: customersLayout()}, NewNamespace())
	require.NoError(t, err)

	assert.Equal(t, "customer.go", plan.File)
	assert.Equal(t, Symbols{
		Schema:           "Customer",
		Type:             "TCustomer",
		Validator:        "ZCustomer",
		Parse:            "ParseCustomer",
		Portals:          "TCustomerPortals",
		PortalsValidator: "ZCustomerPortals",
		PortalsParse:     "ParseCustomerPortals",
	}, plan.Symbols)

	// Relations, then value lists, then the main object and the aggregate.
	assert.Equal(t, []string{
		"TCustomerNotes",
		"TCustomerOrdersState",
		"TCustomerOrders",
		"TVLCustomerStatus",
		"TVLCustomerPriority",
		"TCustomerStatus",
		"TCustomerPriority",
		"TCustomer",
		"TCustomerPortals",
	}, declNames(plan.Decls))

	t.Run("ValueLists", func(t *testing.T) {
		status := plan.Decls[3].(*LiteralUnion)
		assert.Equal(t, "ZVLCustomerStatus", status.Validator)
		assert.Equal(t, "TVLCustomerStatusValues", status.ValuesFunc)
		assert.Equal(t, []string{"TVLCustomerStatusOpen", "TVLCustomerStatusClosed"}, status.Consts)
		assert.False(t, status.Catch)

		priority := plan.Decls[4].(*LiteralUnion)
		assert.Equal(t, []string{"TVLCustomerPriorityX1", "TVLCustomerPriorityEmpty"}, priority.Consts)
		assert.True(t, priority.Catch)
	})

	t.Run("Fields", func(t *testing.T) {
		main := plan.Decls[7].(*ObjectWithValidator)
		assert.Equal(t, "Customers", main.Object)
		require.Len(t, main.Props, 5)
		assert.Equal(t, Prop{Name: "ID", Remote: "id", Kind: RuleNumerish}, main.Props[0])
		assert.Equal(t, Prop{Name: "Name", Remote: "name", Kind: RuleString}, main.Props[1])
		assert.Equal(t, Prop{
			Name: "Status", Remote: "status", Kind: RuleEnum,
			Type: "TCustomerStatus", Values: []string{"Open", "Closed"}, Elem: "ZVLCustomerStatus",
		}, main.Props[2])
		assert.True(t, main.Props[3].Catch)
		assert.Equal(t, RuleString, main.Props[4].Kind)

		alias := plan.Decls[1].(*TypeAlias)
		assert.Equal(t, "TVLCustomerStatus", alias.Target)
	})

	t.Run("Aggregate", func(t *testing.T) {
		agg := plan.Decls[8].(*Aggregate)
		assert.Equal(t, []Prop{
			{Name: "Notes", Remote: "Notes", Kind: RuleList, Type: "TCustomerNotes", Elem: "ZCustomerNotes"},
			{Name: "Orders", Remote: "Orders", Kind: RuleList, Type: "TCustomerOrders", Elem: "ZCustomerOrders"},
		}, agg.Props)
	})

	t.Run("Warnings", func(t *testing.T) {
		require.Len(t, plan.Warnings, 1)
		assert.Equal(t, "region", plan.Warnings[0].Field)
	})
}

func TestPlanSchemaStrictNumbers(t *testing.T) {
	layout := &load.Layout{Name: "Invoices", Fields: []load.Field{{Name: "amount", Kind: load.KindNumber}}}
	plan, err := PlanSchema(BuildSchemaArgs{SchemaName: "Invoice", Layout: layout, StrictNumbers: true}, NewNamespace())
	require.NoError(t, err)
	assert.False(t, plan.Symbols.HasPortals())
	assert.Equal(t, []string{"TInvoice"}, declNames(plan.Decls))
	assert.Equal(t, RuleStrictNumber, plan.Decls[0].(*ObjectWithValidator).Props[0].Kind)
}

func TestPlanSchemaFieldEnum(t *testing.T) {
	// allowEmpty widens the field beyond its list, so the field gets its own union.
	layout := &load.Layout{
		Name:       "Tasks",
		Fields:     []load.Field{{Name: "state", Kind: load.KindValueList, Values: []string{"Open", ""}}},
		ValueLists: []load.ValueList{{Name: "State", Values: []string{"Open"}}},
	}
	plan, err := PlanSchema(BuildSchemaArgs{SchemaName: "Task", Layout: layout}, NewNamespace())
	require.NoError(t, err)
	assert.Equal(t, []string{"TVLTaskState", "TTaskState", "TTask"}, declNames(plan.Decls))
	union := plan.Decls[1].(*LiteralUnion)
	assert.True(t, union.Catch)
	assert.Equal(t, "ZTaskState", union.Validator)
}

func TestPlanSchemaSharedNamespace(t *testing.T) {
	ns := NewNamespace()
	layout := &load.Layout{Name: "Contacts", Fields: []load.Field{{Name: "name"}}}
	first, err := PlanSchema(BuildSchemaArgs{SchemaName: "Contact", Layout: layout}, ns)
	require.NoError(t, err)
	second, err := PlanSchema(BuildSchemaArgs{SchemaName: "contact", Layout: layout}, ns)
	require.NoError(t, err)
	assert.Equal(t, "TContact", first.Symbols.Type)
	assert.Equal(t, "TContact2", second.Symbols.Type)
	assert.Equal(t, "ParseContact2", second.Symbols.Parse)
}

func TestPlanSchemaErrors(t *testing.T) {
	_, err := PlanSchema(BuildSchemaArgs{SchemaName: "X"}, NewNamespace())
	assert.True(t, IsGenerationError(err))
	_, err = PlanSchema(BuildSchemaArgs{Layout: &load.Layout{Name: "L"}}, NewNamespace())
	assert.True(t, IsGenerationError(err))
}

func TestPlanSchemaRelationNames(t *testing.T) {
	layout := &load.Layout{
		Name: "People",
		Fields: []load.Field{
			{Name: "Name, Last"},
			{Name: "Name"},
			{Name: "-"},
		},
		Relations: []load.Relation{{Name: "Pets", Fields: []load.Field{
			{Name: "Pets::name"},
			{Name: "Owners::name"},
			{Name: "Pets::"},
		}}},
	}
	plan, err := PlanSchema(BuildSchemaArgs{SchemaName: "Person", Layout: layout}, NewNamespace())
	require.NoError(t, err)

	pets := plan.Decls[0].(*ObjectWithValidator)
	assert.Equal(t, "Pets", pets.Object)
	var names []string
	for _, p := range pets.Props {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Name", "OwnersName", "Pets"}, names)

	require.Len(t, plan.Warnings, 1)
	assert.Equal(t, "Name, Last", plan.Warnings[0].Field)
	assert.True(t, IsEmissionError(plan.Warnings[0]))
}
