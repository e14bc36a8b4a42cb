package clickhouse

import (
	"time"

	"github.com/golang/mock/gomock"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
)

func (s *RepositorySuite) TestInsertScriptFailures() {
	now := time.Now().UTC().Truncate(time.Second)
	failures := []model.ScriptFailure{
		{
			Network:     model.Mainnet,
			Height:      170,
			TxHash:      "f4184fc596403b9d638783cf57adfe4c75c605f6356fbc91338530e9831e9e16",
			TxIndex:     1,
			InputIndex:  0,
			ScriptClass: "pubkey",
			Detail:      "false stack entry at end of script execution",
			TxHex:       "01000000",
			RecordedAt:  now,
		},
		{
			Network:     model.Mainnet,
			Height:      481_900,
			TxHash:      "aaaa4fc596403b9d638783cf57adfe4c75c605f6356fbc91338530e9831e9e16",
			TxIndex:     12,
			InputIndex:  3,
			ScriptClass: "witness_v0_keyhash",
			Detail:      "signature not empty on failed checksig",
			TxHex:       "02000000",
			RecordedAt:  now,
		},
	}

	s.metrics.EXPECT().
		Observe("insert_script_failures", model.Mainnet, nil, gomock.AssignableToTypeOf(time.Time{}))

	s.Require().NoError(s.repo.InsertScriptFailures(s.testCtx, failures))
	s.Require().EqualValues(2, s.countRows("script_failures"))

	rows, err := s.repo.conn.Query(s.testCtx,
		"SELECT tx_hash, script_class FROM script_failures WHERE height = ?", uint32(170))
	s.Require().NoError(err)
	defer func() {
		s.Require().NoError(rows.Close())
	}()

	s.Require().True(rows.Next())
	var txHash, class string
	s.Require().NoError(rows.Scan(&txHash, &class))
	s.Require().Equal(failures[0].TxHash, txHash)
	s.Require().Equal("pubkey", class)
}
