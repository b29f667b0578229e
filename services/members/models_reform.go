package members

// generated with gopkg.in/reform.v1

import (
	"fmt"
	"strings"

	"gopkg.in/reform.v1"
	"gopkg.in/reform.v1/parse"
)

type userTableType struct {
	s parse.StructInfo
	z []interface{}
}

// Schema returns a schema name in SQL database ("portal").
func (v *userTableType) Schema() string {
	return v.s.SQLSchema
}

// Name returns a view or table name in SQL database ("users").
func (v *userTableType) Name() string {
	return v.s.SQLName
}

// Columns returns a new slice of column names for that view or table in SQL database.
func (v *userTableType) Columns() []string {
	return []string{"user_id", "full_name", "email", "phone", "password_hash", "is_approved", "role", "created_at"}
}

// NewStruct makes a new struct for that view or table.
func (v *userTableType) NewStruct() reform.Struct {
	return new(User)
}

// NewRecord makes a new record for that table.
func (v *userTableType) NewRecord() reform.Record {
	return new(User)
}

// PKColumnIndex returns an index of primary key column for that table in SQL database.
func (v *userTableType) PKColumnIndex() uint {
	return uint(v.s.PKFieldIndex)
}

// UserTable represents users view or table in SQL database.
var UserTable = &userTableType{
	s: parse.StructInfo{Type: "User", SQLSchema: "portal", SQLName: "users", Fields: []parse.FieldInfo{{Name: "UserID", PKType: "string", Column: "user_id"}, {Name: "FullName", PKType: "", Column: "full_name"}, {Name: "Email", PKType: "", Column: "email"}, {Name: "Phone", PKType: "", Column: "phone"}, {Name: "PasswordHash", PKType: "", Column: "password_hash"}, {Name: "IsApproved", PKType: "", Column: "is_approved"}, {Name: "Role", PKType: "", Column: "role"}, {Name: "CreatedAt", PKType: "", Column: "created_at"}}, PKFieldIndex: 0},
	z: new(User).Values(),
}

// String returns a string representation of this struct or record.
func (s User) String() string {
	res := make([]string, 8)
	res[0] = "UserID: " + reform.Inspect(s.UserID, true)
	res[1] = "FullName: " + reform.Inspect(s.FullName, true)
	res[2] = "Email: " + reform.Inspect(s.Email, true)
	res[3] = "Phone: " + reform.Inspect(s.Phone, true)
	res[4] = "PasswordHash: " + reform.Inspect(s.PasswordHash, true)
	res[5] = "IsApproved: " + reform.Inspect(s.IsApproved, true)
	res[6] = "Role: " + reform.Inspect(s.Role, true)
	res[7] = "CreatedAt: " + reform.Inspect(s.CreatedAt, true)
	return strings.Join(res, ", ")
}

// Values returns a slice of struct or record field values.
// Returned interface{} values are never untyped nils.
func (s *User) Values() []interface{} {
	return []interface{}{
		s.UserID,
		s.FullName,
		s.Email,
		s.Phone,
		s.PasswordHash,
		s.IsApproved,
		s.Role,
		s.CreatedAt,
	}
}

// Pointers returns a slice of pointers to struct or record fields.
// Returned interface{} values are never untyped nils.
func (s *User) Pointers() []interface{} {
	return []interface{}{
		&s.UserID,
		&s.FullName,
		&s.Email,
		&s.Phone,
		&s.PasswordHash,
		&s.IsApproved,
		&s.Role,
		&s.CreatedAt,
	}
}

// View returns View object for that struct.
func (s *User) View() reform.View {
	return UserTable
}

// Table returns Table object for that record.
func (s *User) Table() reform.Table {
	return UserTable
}

// PKValue returns a value of primary key for that record.
// Returned interface{} value is never untyped nil.
func (s *User) PKValue() interface{} {
	return s.UserID
}

// PKPointer returns a pointer to primary key field for that record.
// Returned interface{} value is never untyped nil.
func (s *User) PKPointer() interface{} {
	return &s.UserID
}

// HasPK returns true if record has non-zero primary key set, false otherwise.
func (s *User) HasPK() bool {
	return s.UserID != UserTable.z[UserTable.s.PKFieldIndex]
}

// SetPK sets record primary key.
func (s *User) SetPK(pk interface{}) {
	if str, ok := pk.(string); ok {
		s.UserID = str
	}
}

// check interfaces
var (
	_ reform.View   = UserTable
	_ reform.Struct = new(User)
	_ reform.Table  = UserTable
	_ reform.Record = new(User)
	_ fmt.Stringer  = new(User)
)

func init() {
	parse.AssertUpToDate(&UserTable.s, new(User))
}
