package journal

import (
	"bytes"
	"strconv"
	"text/template"
	"time"
)

type orgRun struct {
	RunRecord
	Records []TradeRecord
}

var runOrgFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"window": func(n int) string {
		if n <= 0 {
			return "unbounded"
		}
		return strconv.Itoa(n)
	},
	"exit": func(p *int) string {
		if p == nil {
			return "-"
		}
		return strconv.Itoa(*p)
	},
}

var runOrgTemplate = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// FormatRunOrg renders run and its trades as an Org-mode entry.
func FormatRunOrg(run RunRecord, trades []TradeRecord) (string, error) {
	var buf bytes.Buffer
	if err := runOrgTemplate.Execute(&buf, orgRun{RunRecord: run, Records: trades}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const RunOrgTemplate = `* BACKTEST: {{.Strategy}} {{if .Mode}}{{.Mode}}{{else}}(imported){{end}} seed {{.Seed}}
:PROPERTIES:
:RUN_ID:      {{.RunID}}
:STRATEGY:    {{.Strategy}}
:MODE:        {{if .Mode}}{{.Mode}}{{else}}(imported){{end}}
:SEED:        {{.Seed}}
:CANDLES:     {{.NumCandles}}
:TRADES:      {{.Trades}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:OPEN:        {{.Open}}
:WIN_RATE:    {{printf "%.2f" .WinRate}}
:NET_POINTS:  {{printf "%.2f" .NetPoints}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Market
| Setting    | Value |
|------------+-------|
| Price Min  | {{printf "%.2f" .PriceMin}} |
| Price Max  | {{printf "%.2f" .PriceMax}} |
| Volatility | {{printf "%.2f" .Volatility}} |

** Strategy Parameters
| Parameter     | Value |
|---------------+-------|
| Lookback      | {{.Lookback}} |
| R:R           | {{printf "%.2f" .RiskReward}} |
| Stop Buffer   | {{printf "%.2f" .StopBuffer}} |
| Retest Window | {{window .RetestWindow}} |

** Performance Summary
- Win Rate:   *{{printf "%.2f" .WinRate}}%*
- Net Points: *{{printf "%.2f" .NetPoints}}*
- Avg R:      *{{printf "%.2f" .AvgR}}*

** Trades
| # | Side | Entry | Price | Stop | Target | Exit | Exit Price | Result |
|---+------+-------+-------+------+--------+------+------------+--------|
{{- range .Records}}
| {{.Seq}} | {{.Side}} | {{.EntryIndex}} | {{printf "%.2f" .EntryPrice}} | {{printf "%.2f" .StopLoss}} | {{printf "%.2f" .TakeProfit}} | {{exit .ExitIndex}} | {{if .ExitIndex}}{{printf "%.2f" .ExitPrice}}{{else}}-{{end}} | {{.Result}} |
{{- end}}
`
