package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnake(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Username", "username"},
		{"FullName", "full_name"},
		{"HTTPCode", "http_code"},
		{"UserID", "user_id"},
		{"XMLParser", "xml_parser"},
		{"A", "a"},
		{"", ""},
		{"PHBOrg", "phb_org"},
		{"UserIDs", "user_ids"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, snake(tt.input))
		})
	}
}

func TestPascal(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"user_info", "UserInfo"},
		{"user_id", "UserID"},
		{"full-admin", "FullAdmin"},
		{"a_b", "AB"},
		{"api_url", "APIURL"},
		{"Orders::total", "OrdersTotal"},
		{"first name", "FirstName"},
		{"Name (Full)", "NameFull"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, pascal(tt.input))
		})
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"customers", "Customers"},
		{"2024 sales", "X2024Sales"},
		{"", "X"},
		{"::", "X"},
		{"Café", "Caf"},
		{"Contact_ID", "ContactID"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Identifier(tt.input))
		})
	}
}

func TestValueIdent(t *testing.T) {
	assert.Equal(t, "Empty", valueIdent(""))
	assert.Equal(t, "InProgress", valueIdent("in progress"))
	assert.Equal(t, "X1", valueIdent("1"))
	assert.Equal(t, "Open", valueIdent("Open"))
}

func TestPackageName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Customers", "customers"},
		{"Sales Orders", "salesorders"},
		{"type", "typepkg"},
		{"2024", "x2024"},
		{"", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, PackageName(tt.input))
		})
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Customers", "customers.go"},
		{"SalesOrders", "sales_orders.go"},
		{"orders_test", "orders_test_schema.go"},
		{"Build Windows", "build_windows_schema.go"},
		{"linux", "linux.go"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FileName(tt.input))
		})
	}
}

func TestNamespace(t *testing.T) {
	ns := NewNamespace()
	assert.Equal(t, "TCustomer", ns.Take("TCustomer"))
	assert.Equal(t, "TCustomer2", ns.Take("TCustomer"))
	assert.Equal(t, "TCustomer3", ns.Take("TCustomer"))
	assert.True(t, ns.Has("TCustomer2"))
	assert.False(t, ns.Has("TOrder"))
}

func TestJSONTag(t *testing.T) {
	tests := []struct {
		input string
		tag   string
		ok    bool
	}{
		{"name", "name", true},
		{"Orders::total", "Orders::total", true},
		{"Name (Full)", "Name (Full)", true},
		{"Größe", "Größe", true},
		{"-", "-,", true},
		{"Name, Last", "-", false},
		{`Say "hi"`, "-", false},
		{`a\b`, "-", false},
		{"", "-", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tag, ok := JSONTag(tt.input)
			assert.Equal(t, tt.tag, tag)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
