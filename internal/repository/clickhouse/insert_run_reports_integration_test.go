package clickhouse

import (
	"time"

	"github.com/golang/mock/gomock"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
)

func (s *RepositorySuite) TestInsertRunReportsAndMaxReportedEndHeight() {
	now := time.Now().UTC().Truncate(time.Second)
	reports := []model.RunReport{
		{
			Network:        model.Mainnet,
			StartHeight:    0,
			EndHeight:      500_000,
			Verified:       1_200_000_000,
			ScriptFalse:    2,
			MissingPrevout: 10,
			ElapsedSeconds: 3_600,
			StartedAt:      now.Add(-time.Hour),
			FinishedAt:     now,
		},
		{
			Network:        model.Mainnet,
			StartHeight:    500_000,
			EndHeight:      800_000,
			Verified:       900_000_000,
			ScriptErrors:   1,
			ElapsedSeconds: 7_200,
			StartedAt:      now,
			FinishedAt:     now.Add(2 * time.Hour),
		},
	}

	s.metrics.EXPECT().
		Observe("insert_run_reports", model.Mainnet, nil, gomock.AssignableToTypeOf(time.Time{}))
	s.metrics.EXPECT().
		Observe("max_reported_end_height", model.Mainnet, nil, gomock.AssignableToTypeOf(time.Time{})).
		Times(2)
	s.metrics.EXPECT().
		Observe("max_reported_end_height", model.Regtest, nil, gomock.AssignableToTypeOf(time.Time{}))

	// No reports yet.
	height, err := s.repo.MaxReportedEndHeight(s.testCtx, model.Mainnet)
	s.Require().NoError(err)
	s.Require().Zero(height)

	s.Require().NoError(s.repo.InsertRunReports(s.testCtx, reports))
	s.Require().EqualValues(2, s.countRows("run_reports"))

	height, err = s.repo.MaxReportedEndHeight(s.testCtx, model.Mainnet)
	s.Require().NoError(err)
	s.Require().EqualValues(800_000, height)

	// Other networks stay unaffected.
	height, err = s.repo.MaxReportedEndHeight(s.testCtx, model.Regtest)
	s.Require().NoError(err)
	s.Require().Zero(height)
}
