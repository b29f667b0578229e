package engine

// generated with gopkg.in/reform.v1

import (
	"fmt"
	"strings"

	"gopkg.in/reform.v1"
	"gopkg.in/reform.v1/parse"
)

type paymentOrderTableType struct {
	s parse.StructInfo
	z []interface{}
}

// Schema returns a schema name in SQL database ("portal").
func (v *paymentOrderTableType) Schema() string {
	return v.s.SQLSchema
}

// Name returns a view or table name in SQL database ("payment_orders").
func (v *paymentOrderTableType) Name() string {
	return v.s.SQLName
}

// Columns returns a new slice of column names for that view or table in SQL database.
func (v *paymentOrderTableType) Columns() []string {
	return []string{"order_id", "member_id", "year", "month", "amount", "currency", "created_at"}
}

// NewStruct makes a new struct for that view or table.
func (v *paymentOrderTableType) NewStruct() reform.Struct {
	return new(PaymentOrder)
}

// NewRecord makes a new record for that table.
func (v *paymentOrderTableType) NewRecord() reform.Record {
	return new(PaymentOrder)
}

// PKColumnIndex returns an index of primary key column for that table in SQL database.
func (v *paymentOrderTableType) PKColumnIndex() uint {
	return uint(v.s.PKFieldIndex)
}

// PaymentOrderTable represents payment_orders view or table in SQL database.
var PaymentOrderTable = &paymentOrderTableType{
	s: parse.StructInfo{Type: "PaymentOrder", SQLSchema: "portal", SQLName: "payment_orders", Fields: []parse.FieldInfo{{Name: "OrderID", PKType: "string", Column: "order_id"}, {Name: "MemberID", PKType: "", Column: "member_id"}, {Name: "Year", PKType: "", Column: "year"}, {Name: "Month", PKType: "", Column: "month"}, {Name: "Amount", PKType: "", Column: "amount"}, {Name: "Currency", PKType: "", Column: "currency"}, {Name: "CreatedAt", PKType: "", Column: "created_at"}}, PKFieldIndex: 0},
	z: new(PaymentOrder).Values(),
}

// String returns a string representation of this struct or record.
func (s PaymentOrder) String() string {
	res := make([]string, 7)
	res[0] = "OrderID: " + reform.Inspect(s.OrderID, true)
	res[1] = "MemberID: " + reform.Inspect(s.MemberID, true)
	res[2] = "Year: " + reform.Inspect(s.Year, true)
	res[3] = "Month: " + reform.Inspect(s.Month, true)
	res[4] = "Amount: " + reform.Inspect(s.Amount, true)
	res[5] = "Currency: " + reform.Inspect(s.Currency, true)
	res[6] = "CreatedAt: " + reform.Inspect(s.CreatedAt, true)
	return strings.Join(res, ", ")
}

// Values returns a slice of struct or record field values.
// Returned interface{} values are never untyped nils.
func (s *PaymentOrder) Values() []interface{} {
	return []interface{}{
		s.OrderID,
		s.MemberID,
		s.Year,
		s.Month,
		s.Amount,
		s.Currency,
		s.CreatedAt,
	}
}

// Pointers returns a slice of pointers to struct or record fields.
// Returned interface{} values are never untyped nils.
func (s *PaymentOrder) Pointers() []interface{} {
	return []interface{}{
		&s.OrderID,
		&s.MemberID,
		&s.Year,
		&s.Month,
		&s.Amount,
		&s.Currency,
		&s.CreatedAt,
	}
}

// View returns View object for that struct.
func (s *PaymentOrder) View() reform.View {
	return PaymentOrderTable
}

// Table returns Table object for that record.
func (s *PaymentOrder) Table() reform.Table {
	return PaymentOrderTable
}

// PKValue returns a value of primary key for that record.
// Returned interface{} value is never untyped nil.
func (s *PaymentOrder) PKValue() interface{} {
	return s.OrderID
}

// PKPointer returns a pointer to primary key field for that record.
// Returned interface{} value is never untyped nil.
func (s *PaymentOrder) PKPointer() interface{} {
	return &s.OrderID
}

// HasPK returns true if record has non-zero primary key set, false otherwise.
func (s *PaymentOrder) HasPK() bool {
	return s.OrderID != PaymentOrderTable.z[PaymentOrderTable.s.PKFieldIndex]
}

// SetPK sets record primary key.
func (s *PaymentOrder) SetPK(pk interface{}) {
	if str, ok := pk.(string); ok {
		s.OrderID = str
	}
}

// check interfaces
var (
	_ reform.View   = PaymentOrderTable
	_ reform.Struct = new(PaymentOrder)
	_ reform.Table  = PaymentOrderTable
	_ reform.Record = new(PaymentOrder)
	_ fmt.Stringer  = new(PaymentOrder)
)

func init() {
	parse.AssertUpToDate(&PaymentOrderTable.s, new(PaymentOrder))
}
