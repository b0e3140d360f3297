package supabase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"meme-gallery-backend/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want error
	}{
		{`(42P01) relation "public.photos" does not exist`, models.ErrRelationMissing},
		{`(PGRST205) Could not find the table 'public.comments' in the schema cache`, models.ErrRelationMissing},
		{`(23503) insert or update on table "comments" violates foreign key constraint`, models.ErrInvalidReference},
		{`(22P02) invalid input syntax for type uuid: "nope"`, models.ErrNotFound},
	}
	for _, tt := range tests {
		err := classify("query", errors.New(tt.msg))
		assert.ErrorIs(t, err, tt.want, tt.msg)
	}

	err := classify("query", errors.New("connection reset"))
	assert.False(t, errors.Is(err, models.ErrNotFound))
	assert.Contains(t, err.Error(), "failed to query")
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Equal(t, "x", nullable("x"))
}

func TestValidUUIDs(t *testing.T) {
	ids := []string{
		"0b6f3c9e-8d1f-4a57-9a43-2f3e5d7c1b20",
		"not-a-uuid",
		"",
		"p1",
		"7d3c0a4e-1f2b-4c5d-8e9f-a0b1c2d3e4f5",
	}

	assert.Equal(t, []string{
		"0b6f3c9e-8d1f-4a57-9a43-2f3e5d7c1b20",
		"7d3c0a4e-1f2b-4c5d-8e9f-a0b1c2d3e4f5",
	}, validUUIDs(ids))
	assert.Empty(t, validUUIDs([]string{"nope"}))
}
