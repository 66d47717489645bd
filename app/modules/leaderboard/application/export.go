package leaderboardservice

import (
	"bytes"
	"fmt"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/domain"
	"github.com/xuri/excelize/v2"
)

const leaderboardSheet = "Leaderboard"

var leaderboardHeader = []any{"Rank", "Username", "Games Played", "Distinct Game Types", "Total Reward"}

// BuildLeaderboardWorkbook writes ranked rows to a single-sheet XLSX file.
// A non-zero epochEnd is noted below the table.
func BuildLeaderboardWorkbook(rows []leaderboarddomain.LeaderboardRow, epochEnd time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), leaderboardSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(leaderboardSheet, "A1", &leaderboardHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return nil, err
		}
		cells := []any{row.Rank, row.DisplayName, row.GamesPlayed, row.DistinctGameTypesPlayed, row.CumulativeReward}
		if err := f.SetSheetRow(leaderboardSheet, axis, &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", idx+1, err)
		}
	}

	if !epochEnd.IsZero() {
		axis, err := excelize.CoordinatesToCellName(1, len(rows)+3)
		if err != nil {
			return nil, err
		}
		note := []any{"Epoch ends", epochEnd.UTC().Format(time.RFC3339)}
		if err := f.SetSheetRow(leaderboardSheet, axis, &note); err != nil {
			return nil, fmt.Errorf("write epoch note: %w", err)
		}
	}

	if err := f.SetColWidth(leaderboardSheet, "B", "B", 24); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
