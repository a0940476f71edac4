package importer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smritirangarajan/spenderella/internal/importer"
)

var defaultLimits = importer.Limits{MaxFileSize: 5 << 20, MaxRows: 5000}

const fullCSVHeader = "Title,Amount,Type,Date,Category,Method,Notes\n"

func csvRows(n int, row func(i int) string) string {
	var b strings.Builder
	b.WriteString(fullCSVHeader)

	for i := range n {
		b.WriteString(row(i))
		b.WriteString("\n")
	}

	return b.String()
}

func goodRow(i int) string {
	return fmt.Sprintf("Item %d,$%d.00,expense,2024-01-%02d,Food,card,", i, i+1, i%28+1)
}

func upload(t *testing.T, s *importer.Session, content string) {
	t.Helper()
	require.NoError(t, s.Upload("test.csv", strings.NewReader(content), int64(len(content))))
}

func mapAll(t *testing.T, s *importer.Session) {
	t.Helper()

	for column, f := range map[string]importer.Field{
		"Title":    importer.FieldTitle,
		"Amount":   importer.FieldAmount,
		"Type":     importer.FieldType,
		"Date":     importer.FieldDate,
		"Category": importer.FieldCategory,
		"Method":   importer.FieldPaymentMethod,
		"Notes":    importer.FieldDescription,
	} {
		require.NoError(t, s.Assign(column, f))
	}

	require.NoError(t, s.SubmitMapping())
}

func TestSession_HappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creator := importer.NewMockBulkCreator(ctrl)
	s := importer.NewSession(defaultLimits, nil)

	upload(t, s, csvRows(3, goodRow))
	assert.Equal(t, importer.StateAwaitingMapping, s.State())

	mapAll(t, s)
	assert.Equal(t, importer.StateAwaitingConfirmation, s.State())

	creator.EXPECT().
		CreateBatch(gomock.Any(), gomock.Len(3)).
		DoAndReturn(func(_ context.Context, records []importer.Record) (int, error) {
			assert.Equal(t, "Item 0", records[0].Title)
			assert.Equal(t, int64(100), records[0].Cents())

			return len(records), nil
		})

	n, err := s.Confirm(context.Background(), creator)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, importer.StateDone, s.State())
	assert.Equal(t, 3, s.Snapshot().Imported)

	require.NoError(t, s.Reset())

	snap := s.Snapshot()
	assert.Equal(t, importer.StateAwaitingFile, snap.State)
	assert.Empty(t, snap.Columns)
	assert.Zero(t, snap.RowCount)
	assert.Nil(t, snap.Mapping)
}

func TestSession_OneInvalidRowPersistsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creator := importer.NewMockBulkCreator(ctrl)
	creator.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).Times(0)

	content := csvRows(10, func(i int) string {
		if i == 6 {
			return "Broken,not-a-number,expense,2024-01-07,Food,card,"
		}

		return goodRow(i)
	})

	s := importer.NewSession(defaultLimits, nil)
	upload(t, s, content)
	mapAll(t, s)

	_, err := s.Confirm(context.Background(), creator)

	var verr *importer.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []importer.RowError{
		{Row: 7, Messages: []string{"amount: Amount must be a number"}},
	}, verr.Rows)
	assert.Equal(t, importer.StateAwaitingConfirmation, s.State())
	assert.Equal(t, verr.Rows, s.Snapshot().RowErrors)
}

func TestSession_IncompleteMappingBlocksConfirmation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creator := importer.NewMockBulkCreator(ctrl)
	creator.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).Times(0)

	content := "Date,Desc,Amt\n2024-01-01,Coffee,3.50\n2024-01-02,Lunch,12.00\n2024-01-03,Taxi,20.00\n"

	s := importer.NewSession(defaultLimits, nil)
	upload(t, s, content)
	assert.Equal(t, 3, s.Snapshot().RowCount)

	require.NoError(t, s.Assign("Date", importer.FieldDate))
	require.NoError(t, s.Assign("Desc", importer.FieldTitle))
	require.NoError(t, s.Assign("Amt", importer.FieldAmount))

	err := s.SubmitMapping()

	var merr *importer.MappingError
	require.ErrorAs(t, err, &merr)
	assert.Empty(t, merr.Conflicts)
	assert.Equal(t, []importer.Field{
		importer.FieldType,
		importer.FieldCategory,
		importer.FieldPaymentMethod,
	}, merr.Missing)
	assert.Equal(t, importer.StateAwaitingMapping, s.State())

	_, err = s.Confirm(context.Background(), creator)
	assert.ErrorIs(t, err, importer.ErrIllegalTransition)
}

func TestSession_DuplicateFieldBlocksSubmit(t *testing.T) {
	s := importer.NewSession(defaultLimits, nil)
	upload(t, s, csvRows(1, goodRow))
	mapAllButNotSubmit(t, s)
	require.NoError(t, s.Assign("Notes", importer.FieldTitle))

	err := s.SubmitMapping()

	var merr *importer.MappingError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, []importer.ColumnError{{Column: "Notes", Message: "Field already mapped"}}, merr.Conflicts)
	assert.Equal(t, importer.StateAwaitingMapping, s.State())

	snap := s.Snapshot()
	assert.Equal(t, merr.Conflicts, snap.Conflicts)
}

func mapAllButNotSubmit(t *testing.T, s *importer.Session) {
	t.Helper()

	for column, f := range map[string]importer.Field{
		"Title":    importer.FieldTitle,
		"Amount":   importer.FieldAmount,
		"Type":     importer.FieldType,
		"Date":     importer.FieldDate,
		"Category": importer.FieldCategory,
		"Method":   importer.FieldPaymentMethod,
	} {
		require.NoError(t, s.Assign(column, f))
	}
}

func TestSession_RowLimit(t *testing.T) {
	s := importer.NewSession(defaultLimits, nil)

	content := csvRows(5001, goodRow)
	err := s.Upload("big.csv", strings.NewReader(content), int64(len(content)))

	var lerr *importer.LimitError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, importer.LimitRows, lerr.Kind)
	assert.Equal(t, int64(5000), lerr.Limit)
	assert.Equal(t, int64(5001), lerr.Actual)
	assert.Contains(t, err.Error(), "5000")

	snap := s.Snapshot()
	assert.Equal(t, importer.StateAwaitingFile, snap.State)
	assert.Zero(t, snap.RowCount)
	assert.Empty(t, snap.Columns)
}

func TestSession_RowLimitBoundary(t *testing.T) {
	s := importer.NewSession(defaultLimits, nil)
	upload(t, s, csvRows(5000, goodRow))
	assert.Equal(t, 5000, s.Snapshot().RowCount)
}

func TestSession_FileSizeLimit(t *testing.T) {
	type testCase struct {
		name     string
		declared func(content string) int64
	}

	tests := []testCase{
		{name: "DeclaredSize", declared: func(c string) int64 { return int64(len(c)) }},
		{name: "UnknownSize", declared: func(string) int64 { return -1 }},
		{name: "UnderstatedSize", declared: func(string) int64 { return 10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := importer.NewSession(importer.Limits{MaxFileSize: 1024, MaxRows: 5000}, nil)
			content := csvRows(100, goodRow)
			require.Greater(t, len(content), 1024)

			err := s.Upload("big.csv", strings.NewReader(content), tt.declared(content))

			var lerr *importer.LimitError
			require.ErrorAs(t, err, &lerr)
			assert.Equal(t, importer.LimitFileSize, lerr.Kind)
			assert.Equal(t, importer.StateAwaitingFile, s.State())
		})
	}
}

func TestSession_MalformedFile(t *testing.T) {
	tests := map[string]string{
		"Empty":           "",
		"HeaderOnly":      "Title,Amount\n",
		"RaggedRow":       "Title,Amount\nCoffee,3.50,extra\n",
		"UnclosedQuote":   "Title,Amount\n\"Coffee,3.50\n",
		"DuplicateHeader": "Title,Title\na,b\n",
		"BlankHeader":     "Title,\na,b\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			s := importer.NewSession(defaultLimits, nil)

			err := s.Upload("bad.csv", strings.NewReader(content), int64(len(content)))
			assert.ErrorIs(t, err, importer.ErrMalformedFile)
			assert.Equal(t, importer.StateAwaitingFile, s.State())
			assert.Zero(t, s.Snapshot().RowCount)
		})
	}
}

func TestSession_PersistFailureIsRetryable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creator := importer.NewMockBulkCreator(ctrl)
	s := importer.NewSession(defaultLimits, nil)
	upload(t, s, csvRows(2, goodRow))
	mapAll(t, s)

	gomock.InOrder(
		creator.EXPECT().CreateBatch(gomock.Any(), gomock.Len(2)).Return(0, errors.New("database unavailable")),
		creator.EXPECT().CreateBatch(gomock.Any(), gomock.Len(2)).Return(2, nil),
	)

	_, err := s.Confirm(context.Background(), creator)

	var perr *importer.PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "database unavailable", perr.Error())
	assert.Equal(t, importer.StateAwaitingConfirmation, s.State())
	assert.Equal(t, "database unavailable", s.Snapshot().LastError)

	n, err := s.Confirm(context.Background(), creator)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, importer.StateDone, s.State())
}

func TestSession_EditMappingRecoversRowErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creator := importer.NewMockBulkCreator(ctrl)
	s := importer.NewSession(defaultLimits, nil)

	content := "Kind,Label,Total,When,Group,Via\nexpense,Tea,2.00,2024-02-01,Food,cash\n"
	upload(t, s, content)

	for column, f := range map[string]importer.Field{
		"Kind":  importer.FieldTitle,
		"Label": importer.FieldType,
		"Total": importer.FieldAmount,
		"When":  importer.FieldDate,
		"Group": importer.FieldCategory,
		"Via":   importer.FieldPaymentMethod,
	} {
		require.NoError(t, s.Assign(column, f))
	}

	require.NoError(t, s.SubmitMapping())

	_, err := s.Confirm(context.Background(), creator)

	var verr *importer.ValidationError
	require.ErrorAs(t, err, &verr)

	require.NoError(t, s.EditMapping())
	assert.Equal(t, importer.StateAwaitingMapping, s.State())
	require.NoError(t, s.Assign("Kind", importer.FieldType))
	require.NoError(t, s.Assign("Label", importer.FieldTitle))
	require.NoError(t, s.SubmitMapping())

	creator.EXPECT().CreateBatch(gomock.Any(), gomock.Len(1)).Return(1, nil)

	n, err := s.Confirm(context.Background(), creator)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSession_CancelDuringImportDiscardsResult(t *testing.T) {
	s := importer.NewSession(defaultLimits, nil)
	upload(t, s, csvRows(1, goodRow))
	mapAll(t, s)

	started := make(chan struct{})
	release := make(chan struct{})

	creator := importer.BulkCreatorFunc(func(_ context.Context, records []importer.Record) (int, error) {
		close(started)
		<-release

		return len(records), nil
	})

	type result struct {
		n   int
		err error
	}

	done := make(chan result)

	go func() {
		n, err := s.Confirm(context.Background(), creator)
		done <- result{n, err}
	}()

	<-started
	assert.Equal(t, importer.StateImporting, s.State())
	require.NoError(t, s.Cancel())
	close(release)

	got := <-done
	assert.ErrorIs(t, got.err, importer.ErrCancelled)
	assert.Zero(t, got.n)

	snap := s.Snapshot()
	assert.Equal(t, importer.StateAwaitingFile, snap.State)
	assert.Zero(t, snap.Imported)
}

func TestSession_CancelClearsFromAnyNonTerminalState(t *testing.T) {
	s := importer.NewSession(defaultLimits, nil)
	require.NoError(t, s.Cancel())

	upload(t, s, csvRows(1, goodRow))
	require.NoError(t, s.Cancel())
	assert.Empty(t, s.Snapshot().Columns)

	upload(t, s, csvRows(1, goodRow))
	mapAll(t, s)
	require.NoError(t, s.Cancel())
	assert.Equal(t, importer.StateAwaitingFile, s.State())
}

func TestSession_UploadRequiresAwaitingFile(t *testing.T) {
	s := importer.NewSession(defaultLimits, nil)
	upload(t, s, csvRows(1, goodRow))

	content := csvRows(1, goodRow)
	err := s.Upload("again.csv", strings.NewReader(content), int64(len(content)))
	assert.ErrorIs(t, err, importer.ErrIllegalTransition)
}

func TestSession_SuggestThenSubmit(t *testing.T) {
	s := importer.NewSession(defaultLimits, nil)
	upload(t, s, "Date,Title,Amount,Type,Category,Payment Method\n2024-01-01,Coffee,3.50,expense,Food,card\n")

	require.NoError(t, s.Suggest())
	assert.Empty(t, s.Snapshot().Missing)
	assert.NoError(t, s.SubmitMapping())
}

func TestSessions_OnePerUser(t *testing.T) {
	reg := importer.NewSessions(defaultLimits, time.Minute)

	a := reg.Get("alice")
	assert.Same(t, a, reg.Get("alice"))
	assert.NotSame(t, a, reg.Get("bob"))

	reg.Drop("alice")
	assert.NotSame(t, a, reg.Get("alice"))
}

func TestSession_AssignAllIsAllOrNothing(t *testing.T) {
	s := importer.NewSession(defaultLimits, nil)
	upload(t, s, csvRows(1, goodRow))

	err := s.AssignAll(map[string]importer.Field{
		"Amount": importer.FieldAmount,
		"Title":  importer.FieldTitle,
		"Zzz":    importer.FieldDate,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Zzz")

	snap := s.Snapshot()
	assert.Equal(t, importer.FieldSkip, snap.Mapping["Amount"])
	assert.Equal(t, importer.FieldSkip, snap.Mapping["Title"])

	require.NoError(t, s.AssignAll(map[string]importer.Field{
		"Amount": importer.FieldAmount,
		"Title":  importer.FieldTitle,
	}))

	snap = s.Snapshot()
	assert.Equal(t, importer.FieldAmount, snap.Mapping["Amount"])
	assert.Equal(t, importer.FieldTitle, snap.Mapping["Title"])
}
