package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/bet-tracker/internal/domain"
)

func bet(day int, amount, odds string, outcome domain.BetOutcome) domain.Bet {
	return domain.Bet{
		ID:      amount + "-" + string(outcome),
		Date:    time.Date(2025, 6, day, 12, 0, 0, 0, time.UTC),
		Type:    domain.TypeWinner,
		Amount:  decimal.RequireFromString(amount),
		Odds:    decimal.RequireFromString(odds),
		Outcome: outcome,
	}
}

func TestSummarizeEmptyCollection(t *testing.T) {
	s := Summarize(nil)

	// sem divisão por zero nem NaN: tudo zera
	assert.Zero(t, s.TotalBets)
	assert.Zero(t, s.WinRate)
	assert.Equal(t, "0", s.AvgStake.String())
	assert.Equal(t, "0", s.BiggestWin.String())
	assert.Equal(t, "0", s.BiggestLoss.String())
	assert.Equal(t, "0", s.TotalProfit.String())
}

func TestSummarizeCountsAndRates(t *testing.T) {
	bets := []domain.Bet{
		bet(1, "20", "2", domain.OutcomeWon),     // profit +20
		bet(2, "10", "3", domain.OutcomeLost),    // profit -10
		bet(3, "30", "1.5", domain.OutcomeDraw),  // profit 0
		bet(4, "40", "2", domain.OutcomePending), // profit 0
	}

	s := Summarize(bets)

	assert.Equal(t, 4, s.TotalBets)
	assert.Equal(t, 1, s.Won)
	assert.Equal(t, 1, s.Lost)
	assert.Equal(t, 1, s.Draw)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, "10", s.TotalProfit.String())
	assert.InDelta(t, 25.0, s.WinRate, 0.001)
	assert.Equal(t, "25", s.AvgStake.String())
	assert.Equal(t, "20", s.BiggestWin.String())
	assert.Equal(t, "-10", s.BiggestLoss.String())
}

func TestBiggestWinFloorsAtZero(t *testing.T) {
	// só apostas perdedoras: o maior ganho continua 0, não o "menos pior"
	bets := []domain.Bet{
		bet(1, "10", "2", domain.OutcomeLost),
		bet(2, "5", "2", domain.OutcomeLost),
	}

	s := Summarize(bets)

	assert.Equal(t, "0", s.BiggestWin.String())
	assert.Equal(t, "-10", s.BiggestLoss.String())
}

func TestProfitSeriesCollapsesSameDay(t *testing.T) {
	bets := []domain.Bet{
		bet(2, "10", "2", domain.OutcomeWon),  // dia 2: +10
		bet(1, "20", "2", domain.OutcomeLost), // dia 1: -20
		bet(2, "5", "3", domain.OutcomeWon),   // dia 2: +10 de novo
	}

	series := ProfitSeries(bets)

	require.Len(t, series, 2)
	assert.Equal(t, "2025-06-01", series[0].Day)
	assert.Equal(t, "-20", series[0].Cumulative.String())
	assert.Equal(t, "2025-06-02", series[1].Day)
	// -20 +10 +10: só o valor final do dia entra
	assert.Equal(t, "0", series[1].Cumulative.String())
}

func TestProfitSeriesEmpty(t *testing.T) {
	assert.Empty(t, ProfitSeries(nil))
}

func TestProfitPointsIsRestartable(t *testing.T) {
	bets := []domain.Bet{
		bet(1, "10", "2", domain.OutcomeWon),
		bet(2, "10", "2", domain.OutcomeLost),
	}

	seq := ProfitPoints(bets)

	// duas passadas completas sobre a mesma sequência
	for range 2 {
		var days []string
		for p := range seq {
			days = append(days, p.Day)
		}
		assert.Equal(t, []string{"2025-06-01", "2025-06-02"}, days)
	}

	// parada no meio não quebra a próxima iteração
	for p := range seq {
		_ = p
		break
	}
	count := 0
	for range seq {
		count++
	}
	assert.Equal(t, 2, count)
}
