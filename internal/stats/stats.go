package stats

import (
	"iter"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/radieske/bet-tracker/internal/domain"
)

// Summary agrega a coleção de apostas para o dashboard. Tudo é recomputado
// na leitura; não existe estado incremental.
type Summary struct {
	TotalBets    int
	Won          int
	Lost         int
	Draw         int
	Pending      int
	TotalProfit  decimal.Decimal
	WinRate      float64 // percentual, 0 quando não há apostas
	AvgStake     decimal.Decimal
	BiggestWin   decimal.Decimal // nunca negativo
	BiggestLoss  decimal.Decimal // nunca positivo
	FavoriteBets int
}

func Summarize(bets []domain.Bet) Summary {
	s := Summary{
		TotalProfit: decimal.Zero,
		AvgStake:    decimal.Zero,
		BiggestWin:  decimal.Zero,
		BiggestLoss: decimal.Zero,
	}

	totalStake := decimal.Zero
	for _, b := range bets {
		s.TotalBets++
		switch b.Outcome {
		case domain.OutcomeWon:
			s.Won++
		case domain.OutcomeLost:
			s.Lost++
		case domain.OutcomeDraw:
			s.Draw++
		case domain.OutcomePending:
			s.Pending++
		}
		if b.Favorite {
			s.FavoriteBets++
		}

		profit := b.Profit()
		s.TotalProfit = s.TotalProfit.Add(profit)
		totalStake = totalStake.Add(b.Amount)

		if profit.GreaterThan(s.BiggestWin) {
			s.BiggestWin = profit
		}
		if profit.LessThan(s.BiggestLoss) {
			s.BiggestLoss = profit
		}
	}

	if s.TotalBets > 0 {
		s.WinRate = float64(s.Won) / float64(s.TotalBets) * 100
		s.AvgStake = totalStake.Div(decimal.NewFromInt(int64(s.TotalBets))).Round(2)
	}

	return s
}

// ProfitPoint é um ponto da série de lucro acumulado: um por dia-calendário,
// com o último valor acumulado daquele dia.
type ProfitPoint struct {
	Day        string // "2006-01-02"
	Cumulative decimal.Decimal
}

// ProfitSeries ordena as apostas por data crescente, acumula o lucro e colapsa
// múltiplas entradas do mesmo dia no valor final do dia.
func ProfitSeries(bets []domain.Bet) []ProfitPoint {
	sorted := make([]domain.Bet, len(bets))
	copy(sorted, bets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var points []ProfitPoint
	cumulative := decimal.Zero
	for _, b := range sorted {
		cumulative = cumulative.Add(b.Profit())
		day := b.Date.Format("2006-01-02")
		if n := len(points); n > 0 && points[n-1].Day == day {
			points[n-1].Cumulative = cumulative
			continue
		}
		points = append(points, ProfitPoint{Day: day, Cumulative: cumulative})
	}

	return points
}

// ProfitPoints é a mesma série como sequência preguiçosa e reiniciável,
// pra consumo incremental (gráficos, export).
func ProfitPoints(bets []domain.Bet) iter.Seq[ProfitPoint] {
	return func(yield func(ProfitPoint) bool) {
		for _, p := range ProfitSeries(bets) {
			if !yield(p) {
				return
			}
		}
	}
}
