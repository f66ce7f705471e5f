package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "bistro/internal/errors"
	"bistro/internal/model"
)

func TestCartService_Add(t *testing.T) {
	repo := new(MockCartRepository)
	id := primitive.NewObjectID()
	line := &model.CartLine{Email: "a@x.io", MenuID: primitive.NewObjectID(), Name: "Soup", Price: mustMoney(t, "4.5")}
	repo.On("Create", mock.Anything, line).Return(id, nil)

	svc := NewCartService(repo)
	got, err := svc.Add(context.Background(), line)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = svc.Add(context.Background(), &model.CartLine{Price: mustMoney(t, "-2")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestCartService_Remove(t *testing.T) {
	id := primitive.NewObjectID()
	repo := new(MockCartRepository)
	repo.On("Delete", mock.Anything, id).Return(int64(1), nil)

	svc := NewCartService(repo)
	n, err := svc.Remove(context.Background(), id.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Remove(context.Background(), "abc")
	assert.ErrorIs(t, err, apperrors.ErrMalformedIdentifier)
}

func TestCartService_ListByEmail(t *testing.T) {
	repo := new(MockCartRepository)
	repo.On("ListByEmail", mock.Anything, "a@x.io").Return([]model.CartLine{}, nil)

	lines, err := NewCartService(repo).ListByEmail(context.Background(), "a@x.io")
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}
