package members

import (
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolationMapping(t *testing.T) {
	assert.Equal(t, ErrEmailTaken, uniqueViolation(&pq.Error{Code: "23505", Constraint: "users_email_key"}))
	assert.Equal(t, ErrPhoneTaken, uniqueViolation(&pq.Error{Code: "23505", Constraint: "users_phone_key"}))
	// wrapped driver errors still map
	assert.Equal(t, ErrEmailTaken, uniqueViolation(errors.Wrap(&pq.Error{Code: "23505", Constraint: "users_email_key"}, "Failed create user.")))

	assert.Nil(t, uniqueViolation(&pq.Error{Code: "23505", Constraint: "users_pkey"}))
	assert.Nil(t, uniqueViolation(&pq.Error{Code: "23503", Constraint: "users_email_key"}))
	assert.Nil(t, uniqueViolation(errors.New("connection refused")))
}
