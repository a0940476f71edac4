package matching

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestService_Learn(t *testing.T) {
	type args struct {
		pattern  string
		category string
	}

	type testCase struct {
		name        string
		args        args
		wantPattern string
		wantErr     error
	}

	tests := []testCase{
		{name: "Normalizes", args: args{pattern: "  NETFLIX.com ", category: " Entertainment "}, wantPattern: "netflix.com"},
		{name: "EmptyPattern", args: args{pattern: " ", category: "Food"}, wantErr: ErrEmptyRule},
		{name: "EmptyCategory", args: args{pattern: "uber", category: ""}, wantErr: ErrEmptyRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := NewMockRepository(ctrl)
			userID := uuid.New()

			if tt.wantErr == nil {
				repo.EXPECT().SaveRule(gomock.Any(), userID, tt.wantPattern, "Entertainment").Return(nil)
			}

			err := NewService(repo).Learn(context.Background(), userID, tt.args.pattern, tt.args.category)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestService_Suggest(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	userID := uuid.New()

	repo.EXPECT().FindCategory(gomock.Any(), userID, "Uber trip").Return("Transport", nil)

	svc := NewService(repo)

	got, err := svc.Suggest(context.Background(), userID, " Uber trip ")
	require.NoError(t, err)
	assert.Equal(t, "Transport", got)

	got, err = svc.Suggest(context.Background(), userID, "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}
