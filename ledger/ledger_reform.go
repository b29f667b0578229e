package ledger

// generated with gopkg.in/reform.v1

import (
	"fmt"
	"strings"

	"gopkg.in/reform.v1"
	"gopkg.in/reform.v1/parse"
)

type paymentRecordTableType struct {
	s parse.StructInfo
	z []interface{}
}

// Schema returns a schema name in SQL database ("portal").
func (v *paymentRecordTableType) Schema() string {
	return v.s.SQLSchema
}

// Name returns a view or table name in SQL database ("monthly_payments").
func (v *paymentRecordTableType) Name() string {
	return v.s.SQLName
}

// Columns returns a new slice of column names for that view or table in SQL database.
func (v *paymentRecordTableType) Columns() []string {
	return []string{"record_id", "member_id", "year", "month", "amount", "payment_id", "method", "verified_at"}
}

// NewStruct makes a new struct for that view or table.
func (v *paymentRecordTableType) NewStruct() reform.Struct {
	return new(PaymentRecord)
}

// NewRecord makes a new record for that table.
func (v *paymentRecordTableType) NewRecord() reform.Record {
	return new(PaymentRecord)
}

// PKColumnIndex returns an index of primary key column for that table in SQL database.
func (v *paymentRecordTableType) PKColumnIndex() uint {
	return uint(v.s.PKFieldIndex)
}

// PaymentRecordTable represents monthly_payments view or table in SQL database.
var PaymentRecordTable = &paymentRecordTableType{
	s: parse.StructInfo{Type: "PaymentRecord", SQLSchema: "portal", SQLName: "monthly_payments", Fields: []parse.FieldInfo{{Name: "RecordID", PKType: "string", Column: "record_id"}, {Name: "MemberID", PKType: "", Column: "member_id"}, {Name: "Year", PKType: "", Column: "year"}, {Name: "Month", PKType: "", Column: "month"}, {Name: "Amount", PKType: "", Column: "amount"}, {Name: "PaymentID", PKType: "", Column: "payment_id"}, {Name: "Method", PKType: "", Column: "method"}, {Name: "VerifiedAt", PKType: "", Column: "verified_at"}}, PKFieldIndex: 0},
	z: new(PaymentRecord).Values(),
}

// String returns a string representation of this struct or record.
func (s PaymentRecord) String() string {
	res := make([]string, 8)
	res[0] = "RecordID: " + reform.Inspect(s.RecordID, true)
	res[1] = "MemberID: " + reform.Inspect(s.MemberID, true)
	res[2] = "Year: " + reform.Inspect(s.Year, true)
	res[3] = "Month: " + reform.Inspect(s.Month, true)
	res[4] = "Amount: " + reform.Inspect(s.Amount, true)
	res[5] = "PaymentID: " + reform.Inspect(s.PaymentID, true)
	res[6] = "Method: " + reform.Inspect(s.Method, true)
	res[7] = "VerifiedAt: " + reform.Inspect(s.VerifiedAt, true)
	return strings.Join(res, ", ")
}

// Values returns a slice of struct or record field values.
// Returned interface{} values are never untyped nils.
func (s *PaymentRecord) Values() []interface{} {
	return []interface{}{
		s.RecordID,
		s.MemberID,
		s.Year,
		s.Month,
		s.Amount,
		s.PaymentID,
		s.Method,
		s.VerifiedAt,
	}
}

// Pointers returns a slice of pointers to struct or record fields.
// Returned interface{} values are never untyped nils.
func (s *PaymentRecord) Pointers() []interface{} {
	return []interface{}{
		&s.RecordID,
		&s.MemberID,
		&s.Year,
		&s.Month,
		&s.Amount,
		&s.PaymentID,
		&s.Method,
		&s.VerifiedAt,
	}
}

// View returns View object for that struct.
func (s *PaymentRecord) View() reform.View {
	return PaymentRecordTable
}

// Table returns Table object for that record.
func (s *PaymentRecord) Table() reform.Table {
	return PaymentRecordTable
}

// PKValue returns a value of primary key for that record.
// Returned interface{} value is never untyped nil.
func (s *PaymentRecord) PKValue() interface{} {
	return s.RecordID
}

// PKPointer returns a pointer to primary key field for that record.
// Returned interface{} value is never untyped nil.
func (s *PaymentRecord) PKPointer() interface{} {
	return &s.RecordID
}

// HasPK returns true if record has non-zero primary key set, false otherwise.
func (s *PaymentRecord) HasPK() bool {
	return s.RecordID != PaymentRecordTable.z[PaymentRecordTable.s.PKFieldIndex]
}

// SetPK sets record primary key.
func (s *PaymentRecord) SetPK(pk interface{}) {
	if str, ok := pk.(string); ok {
		s.RecordID = str
	}
}

// check interfaces
var (
	_ reform.View   = PaymentRecordTable
	_ reform.Struct = new(PaymentRecord)
	_ reform.Table  = PaymentRecordTable
	_ reform.Record = new(PaymentRecord)
	_ fmt.Stringer  = new(PaymentRecord)
)

func init() {
	parse.AssertUpToDate(&PaymentRecordTable.s, new(PaymentRecord))
}
