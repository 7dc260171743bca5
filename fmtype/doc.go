// Package fmtype provides the runtime validators used by generated layout
// schemas: rule combinators checking FileMaker field data, and the value
// types FileMaker's loosely typed fields decode into.
//
// A generated schema declares an Object of rules and a struct whose field
// types follow from those rules:
//
//	var ZCustomer = fmtype.NewObject("Customer",
//		fmtype.Field("name", fmtype.String()),
//		fmtype.Field("age", fmtype.NumberOrText()),
//	)
//
// Object.Decode checks a record's field data and fills the struct.
package fmtype
