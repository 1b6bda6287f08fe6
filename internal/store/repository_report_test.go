// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Pooler Authors

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/models"
)

func newMockReportRepository(t *testing.T) (ReportRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewReportRepository(&DB{DB: db, logger: logger.Nop()}, logger.Nop())
	return repo, mock
}

func reportRows(reports ...models.Report) *sqlmock.Rows {
	rows := sqlmock.NewRows(reportColumns)
	for _, r := range reports {
		rows.AddRow(
			r.ID, r.Lat, r.Lng, string(r.Severity), r.LocationType, r.Notes,
			r.NotifyMunicipality, r.Timestamp.UTC().Format(time.RFC3339Nano),
			r.ReportedBy, string(r.Status), r.Confirmations, r.CleanupRequested,
		)
	}
	return rows
}

func TestReportRepository_GetAllReports(t *testing.T) {
	repo, mock := newMockReportRepository(t)

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	want := []models.Report{
		{ID: "r1", Lat: 52.37, Lng: 4.89, Severity: models.SeverityHigh, Status: models.StatusActive, Timestamp: ts},
		{ID: "r2", Severity: models.SeverityLow, Status: models.StatusCleaned, Timestamp: ts.Add(-time.Hour)},
	}

	mock.ExpectQuery("SELECT (.+) FROM reports ORDER BY timestamp DESC").
		WillReturnRows(reportRows(want...))

	got, err := repo.GetAllReports(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, models.SeverityHigh, got[0].Severity)
	assert.True(t, got[0].Timestamp.Equal(ts))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_GetReport_Found(t *testing.T) {
	repo, mock := newMockReportRepository(t)

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	want := models.Report{ID: "r1", Severity: models.SeverityMedium, Status: models.StatusActive, Timestamp: ts}

	mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = ?").
		WithArgs("r1").
		WillReturnRows(reportRows(want))

	got, err := repo.GetReport(context.Background(), "r1")

	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_GetReport_NotFound(t *testing.T) {
	repo, mock := newMockReportRepository(t)

	mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = ?").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(reportColumns))

	_, err := repo.GetReport(context.Background(), "ghost")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestReportRepository_SaveReports_UpsertsInOneTransaction(t *testing.T) {
	repo, mock := newMockReportRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reports").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reports").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SaveReports(context.Background(),
		models.Report{ID: "r1", Timestamp: time.Now()},
		models.Report{ID: "r2", Timestamp: time.Now()},
	)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_SaveReports_RollsBackOnError(t *testing.T) {
	repo, mock := newMockReportRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reports").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.SaveReports(context.Background(), models.Report{ID: "r1", Timestamp: time.Now()})

	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_SaveReports_EmptyBatchIsNoOp(t *testing.T) {
	repo, mock := newMockReportRepository(t)

	require.NoError(t, repo.SaveReports(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
